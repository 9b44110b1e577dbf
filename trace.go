package hello

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "impractical.co/hello"

// tracer follows whatever provider is registered with otel.SetTracerProvider,
// even one registered after this package is initialized.
var tracer = otel.Tracer(instrumentationName)

const (
	attrPageKey  = attribute.Key("hello.page.key")
	attrPageType = attribute.Key("hello.page.type")
	attrNameSet  = attribute.Key("hello.name.set")
)

func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

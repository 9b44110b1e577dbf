package cli

import (
	"bytes"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

func newRenderCommand(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the page to stdout or a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := a.context(cmd.Context(), "render")
			doc := a.renderer().RenderEnv(ctx, a.env)

			if out == "" {
				if _, err := doc.WriteTo(cmd.OutOrStdout()); err != nil {
					return fmt.Errorf("write page: %w", err)
				}
				return nil
			}
			// readers of out never see a half-written page
			if err := atomic.WriteFile(out, bytes.NewReader(doc.Bytes())); err != nil {
				return fmt.Errorf("write page to %s: %w", out, err)
			}
			a.log.Info("wrote page", "path", out, "bytes", doc.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "file to write the page to instead of stdout")
	return cmd
}

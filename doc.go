// Package hello renders a decorated "hello world" page that shows a single
// configured name, and provides the small html/template rendering core the
// page is built from.
//
// The page is produced by a PageRenderer. Give it a DisplayConfig, usually
// loaded from the NAME environment variable with LoadDisplayConfig, and it
// returns a MarkupDocument containing the fixed decorative markup with the
// text "NAME=<name>" substituted in. An empty name is not an error; it simply
// renders as "NAME=".
//
// The rendering core is organized around Components and Pages. A Component is
// some piece of the HTML document that you want included in the page's
// output: the backdrop of glowing orbs, the name badge, the status indicator.
// A Page is a Component that gets rendered itself rather than being included
// in another Component. GreetingPage is the only Page this package ships,
// besides the ErrorPage rendered when something goes wrong.
//
// Each server or process should have a Site, which acts as a singleton and
// provides the fs.FS containing the templates that Components are using. A
// Site will also be available at render time, as .Site, so it can hold
// configuration data used across all pages, like the document title.
//
// To render a page, pass it to the Render function. The page itself will be
// made available as .Page within the template, and the Site will be
// available as .Site. CSS and JavaScript that Components embed or link to are
// collected, deduplicated, and made available as .CSS, .HeaderJS, and
// .FooterJS.
package hello

// Package templates renders the HTML fragments served by the web host.
//
// Components are plain templ.Component values built with templ.ComponentFunc,
// so they compose with any templ-generated markup and render through the
// same Render(ctx, w) contract.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// ErrorAlert renders a dismissable error box with an action hint and a
// support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><p class="alert-message">%s</p>`,
			templ.EscapeString(message))
		if err != nil {
			return err
		}
		if action != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-action">%s</p>`, templ.EscapeString(action)); err != nil {
				return err
			}
		}
		if code != "" {
			if _, err := fmt.Fprintf(w, `<p class="alert-code">Error code: %s</p>`, templ.EscapeString(code)); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `</div>`)
		return err
	})
}

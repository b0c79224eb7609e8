package shared

import (
	"context"
	"io"

	"github.com/a-h/templ"
	twmerge "github.com/Oudwins/tailwind-merge-go"
)

// Flash types
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-off message shown at the top of a page.
type Flash struct {
	Type    string
	Message string
}

var flashStyles = map[string]string{
	FlashSuccess: "border-green-200 bg-green-50 text-green-800",
	FlashError:   "border-red-200 bg-red-50 text-red-800",
	FlashInfo:    "border-blue-200 bg-blue-50 text-blue-800",
}

// FlashMessage renders f, or nothing when f is nil.
func FlashMessage(f *Flash) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if f == nil || f.Message == "" {
			return nil
		}
		role := "status"
		if f.Type == FlashError {
			role = "alert"
		}
		return NewHTML(w).
			Raw(`<div`).
			Attr("role", role).
			Attr("class", twmerge.Merge("rounded-md border px-4 py-3 text-sm", flashStyles[f.Type])).
			Raw(`>`).Text(f.Message).Raw(`</div>`).
			Err()
	})
}

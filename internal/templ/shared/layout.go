package shared

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const (
	htmxSrc     = "https://unpkg.com/htmx.org@2.0.4"
	tailwindSrc = "https://cdn.tailwindcss.com"
)

// htmxConfig swaps 422 and 429 responses so inline errors reach the page.
const htmxConfig = `{"responseHandling":[` +
	`{"code":"204","swap":false},` +
	`{"code":"[23]..","swap":true},` +
	`{"code":"422","swap":true},` +
	`{"code":"429","swap":true,"error":true},` +
	`{"code":"[45]..","swap":false,"error":true}]}`

// Layout renders the HTML document shell around body.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return NewHTML(w).
			Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`).
			Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`).
			Raw(`<meta name="htmx-config"`).Attr("content", htmxConfig).Raw(`>`).
			Raw(`<title>`).Text(title + " | RackMate").Raw(`</title>`).
			Raw(`<script`).Attr("src", htmxSrc).Raw(`></script>`).
			Raw(`<script`).Attr("src", tailwindSrc).Raw(`></script>`).
			Raw(`</head><body class="min-h-screen bg-gray-50 text-gray-900 antialiased">`).
			Render(ctx, body).
			Raw(`</body></html>`).
			Err()
	})
}

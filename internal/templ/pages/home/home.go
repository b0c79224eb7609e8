// Package home renders the landing page the sign-up form returns to.
package home

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/DukeRupert/rackmate/internal/templ/components/ui"
	"github.com/DukeRupert/rackmate/internal/templ/shared"
)

// PageData contains data for the landing page.
type PageData struct {
	Flash      *shared.Flash
	SignUpPath string
}

// Page renders the landing page.
func Page(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return shared.NewHTML(w).
			Raw(`<main class="mx-auto flex min-h-screen max-w-md flex-col justify-center space-y-6 px-4">`).
			Render(ctx, shared.FlashMessage(data.Flash)).
			Raw(`<h1 class="text-3xl font-bold tracking-tight">RackMate</h1>`).
			Raw(`<p class="text-gray-600">Track every server, switch and patch panel in your racks.</p>`).
			Raw(`<a`).Attr("href", data.SignUpPath).Attr("class", ui.ButtonClass(ui.ButtonPrimary, "w-full")).
			Raw(`>Create an account</a></main>`).
			Err()
	})
	return shared.Layout("Welcome", body)
}

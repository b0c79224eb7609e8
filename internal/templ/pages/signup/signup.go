// Package signup renders the sign-up page and its form fragment.
package signup

import (
	"context"
	"io"

	"github.com/a-h/templ"

	form "github.com/DukeRupert/rackmate/internal/signup"
	"github.com/DukeRupert/rackmate/internal/templ/components/ui"
	"github.com/DukeRupert/rackmate/internal/templ/shared"
)

// Routes the form posts to.
const (
	SubmitPath = "/signup"
	TogglePath = "/signup/toggle"
	BackPath   = "/signup/back"
)

// FormElementID is the id of the swappable form root.
const FormElementID = "signup-form"

// FlashElementID is the form-level message area. Out-of-band responses
// such as rate limiting target it.
const FlashElementID = "signup-flash"

// Page renders the full sign-up document.
func Page(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return shared.NewHTML(w).
			Raw(`<main class="flex min-h-screen items-center justify-center px-4 py-12">`).
			Raw(`<div class="w-full max-w-md space-y-6 rounded-xl bg-white p-8 shadow">`).
			Render(ctx, shared.FlashMessage(data.Flash)).
			Render(ctx, Form(data.Form, data.CSRFToken)).
			Raw(`</div></main>`).
			Err()
	})
	return shared.Layout("Sign up", body)
}

// Form renders the swappable form fragment.
func Form(data FormData, csrfToken string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := shared.NewHTML(w)

		h.Raw(`<form`).
			Attr("id", FormElementID).
			Attr("method", "post").
			Attr("action", SubmitPath).
			Attr("hx-post", SubmitPath).
			Attr("hx-target", "this").
			Attr("hx-swap", "outerHTML").
			Attr("hx-disabled-elt", "find button[type='submit']").
			Attr("class", "space-y-5").
			Raw(`>`)

		hidden(h, "csrf_token", csrfToken)
		hidden(h, "form_id", data.ID)
		hidden(h, form.VisibilityParam(form.Password), flag(data.ShowPassword))
		hidden(h, form.VisibilityParam(form.ConfirmPassword), flag(data.ShowConfirmPassword))

		// Header with back arrow
		h.Raw(`<div class="flex items-center gap-2">`)
		backButton(h, "Go back", ui.ButtonClass(ui.ButtonGhost, "-ml-2"), func() {
			h.Render(ctx, ui.Icon(ui.IconArrowLeft))
		})
		h.Raw(`<h1 class="text-2xl font-bold tracking-tight">Join RackMate</h1></div>`)

		h.Raw(`<div`).Attr("id", FlashElementID).Attr("aria-live", "polite").Raw(`>`)
		if data.Message != "" && data.MessageField == "" {
			errorText(h, "form-error", data.Message)
		}
		h.Raw(`</div>`)

		textInput(ctx, h, data, inputSpec{form.FullName, "Full Name", "Enter your full name", "text", "name", ui.IconUser}, data.Name)
		textInput(ctx, h, data, inputSpec{form.Email, "Email", "Enter your email", "email", "email", ui.IconEnvelope}, data.Email)
		secretInput(ctx, h, data, inputSpec{form.Password, "Password", "Create a password", "", "new-password", ui.IconLock}, "password", data.Password, data.ShowPassword)
		secretInput(ctx, h, data, inputSpec{form.ConfirmPassword, "Confirm Password", "Confirm your password", "", "new-password", ui.IconLock}, "confirm password", data.ConfirmPassword, data.ShowConfirmPassword)

		h.Raw(`<button type="submit"`).
			Attr("class", ui.ButtonClass(ui.ButtonPrimary, "w-full")).
			Raw(`>Create Account</button>`)

		h.Raw(`<p class="text-center text-sm text-gray-600">Already have an account? `)
		backButton(h, "", "font-semibold text-indigo-600 hover:text-indigo-500", func() {
			h.Text("Sign in here")
		})
		h.Raw(`</p></form>`)

		return h.Err()
	})
}

// Success renders the panel that replaces the form after a sign-up is accepted.
func Success(data SuccessData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return shared.NewHTML(w).
			Raw(`<div`).Attr("id", FormElementID).Attr("role", "status").Attr("class", "space-y-4 text-center").Raw(`>`).
			Render(ctx, ui.Icon(ui.IconCheck, "mx-auto h-12 w-12 text-green-600")).
			Raw(`<h1 class="text-2xl font-bold tracking-tight">Welcome, `).Text(data.DisplayName).Raw(`!</h1>`).
			Raw(`<p class="text-sm text-gray-600">Your account for `).
			Raw(`<span class="font-medium">`).Text(data.Email).Raw(`</span> has been created.</p>`).
			Raw(`<a`).Attr("href", data.ContinueURL).Attr("class", ui.ButtonClass(ui.ButtonPrimary, "w-full")).
			Raw(`>Continue to sign in</a></div>`).
			Err()
	})
}

func hidden(h *shared.HTML, name, value string) {
	h.Raw(`<input type="hidden"`).Attr("name", name).Attr("value", value).Raw(`>`)
}

func pressed(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return ""
}

// backButton posts the current values to the back endpoint without
// triggering browser validation.
func backButton(h *shared.HTML, ariaLabel, class string, content func()) {
	h.Raw(`<button type="submit" formnovalidate`).
		Attr("formaction", BackPath).
		Attr("hx-post", BackPath).
		Attr("class", class)
	if ariaLabel != "" {
		h.Attr("aria-label", ariaLabel)
	}
	h.Raw(`>`)
	content()
	h.Raw(`</button>`)
}

// fieldMessage returns the message to show under a field, if any.
func fieldMessage(data FormData, name string) string {
	if msg := data.FieldErrors[name]; msg != "" {
		return msg
	}
	if data.MessageField == name {
		return data.Message
	}
	return ""
}

func errorText(h *shared.HTML, id, msg string) {
	h.Raw(`<p`).Attr("id", id).Attr("role", "alert").Attr("class", "mt-1 text-sm text-red-600").Raw(`>`).
		Text(msg).
		Raw(`</p>`)
}

func label(h *shared.HTML, name, text string) {
	h.Raw(`<label`).Attr("for", name).Attr("class", "block text-sm font-semibold text-gray-700").Raw(`>`).
		Text(text).
		Raw(`</label>`)
}

// inputSpec describes the static parts of one input.
type inputSpec struct {
	field        form.Field
	label        string
	placeholder  string
	inputType    string
	autocomplete string
	icon         string
}

// openInput writes the label, the leading icon and an unterminated <input
// tag so callers can append the class attribute.
func openInput(ctx context.Context, h *shared.HTML, spec inputSpec, inputType, value, msg string) {
	name := spec.field.Name()

	label(h, name, spec.label)
	h.Raw(`<div class="relative mt-1">`).
		Render(ctx, ui.Icon(spec.icon, "pointer-events-none absolute left-3 top-1/2 -translate-y-1/2 text-gray-400"))

	h.Raw(`<input`).
		Attr("id", name).
		Attr("name", name).
		Attr("type", inputType).
		Attr("autocomplete", spec.autocomplete).
		Attr("placeholder", spec.placeholder).
		Attr("value", value).
		Raw(" required")
	if msg != "" {
		h.Attr("aria-invalid", "true").Attr("aria-describedby", name+"-error")
	}
}

func textInput(ctx context.Context, h *shared.HTML, data FormData, spec inputSpec, value string) {
	name := spec.field.Name()
	msg := fieldMessage(data, name)

	h.Raw(`<div>`)
	openInput(ctx, h, spec, spec.inputType, value, msg)
	h.Attr("class", ui.InputClass(msg != "", "pl-10")).Raw(`></div>`)
	if msg != "" {
		errorText(h, name+"-error", msg)
	}
	h.Raw(`</div>`)
}

// secretInput renders a password input with its visibility toggle. what is
// the noun used in the toggle's accessible label.
func secretInput(ctx context.Context, h *shared.HTML, data FormData, spec inputSpec, what, value string, visible bool) {
	name := spec.field.Name()
	msg := fieldMessage(data, name)

	inputType, toggleLabel, icon := "password", "Show "+what, ui.IconEye
	if visible {
		inputType, toggleLabel, icon = "text", "Hide "+what, ui.IconEyeSlash
	}

	h.Raw(`<div>`)
	openInput(ctx, h, spec, inputType, value, msg)
	h.Attr("class", ui.InputClass(msg != "", "pl-10 pr-10")).Raw(`>`)

	h.Raw(`<button type="submit" formnovalidate name="field"`).
		Attr("value", name).
		Attr("formaction", TogglePath).
		Attr("hx-post", TogglePath).
		Attr("aria-label", toggleLabel).
		Attr("aria-pressed", pressed(visible)).
		Attr("aria-controls", name).
		Attr("class", "absolute inset-y-0 right-0 flex items-center px-3 text-gray-400 hover:text-gray-600").
		Raw(`>`).
		Render(ctx, ui.Icon(icon)).
		Raw(`</button></div>`)

	if msg != "" {
		errorText(h, name+"-error", msg)
	}
	h.Raw(`</div>`)
}

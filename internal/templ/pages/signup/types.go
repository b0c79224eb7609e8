package signup

import "github.com/DukeRupert/rackmate/internal/templ/shared"

// PageData contains data for the full sign-up page.
type PageData struct {
	Form      FormData
	CSRFToken string
	Flash     *shared.Flash
}

// FormData holds everything the form fragment needs to re-render a form
// instance, including the secret values so a round trip never loses input.
type FormData struct {
	ID                  string
	Name                string
	Email               string
	Password            string
	ConfirmPassword     string
	ShowPassword        bool
	ShowConfirmPassword bool
	FieldErrors         map[string]string // keyed by input name
	Message             string            // form-level or field-adjacent message
	MessageField        string            // input name the Message sits under; "" for form-level
}

// SuccessData contains data for the panel shown after a successful sign-up.
type SuccessData struct {
	DisplayName string
	Email       string
	ContinueURL string
}

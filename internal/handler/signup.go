package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DukeRupert/rackmate/internal/csrf"
	"github.com/DukeRupert/rackmate/internal/domain"
	"github.com/DukeRupert/rackmate/internal/metrics"
	"github.com/DukeRupert/rackmate/internal/signup"
	signuppages "github.com/DukeRupert/rackmate/internal/templ/pages/signup"
)

const opToggle = "handler.signup_toggle"

// SignUpHandler serves the sign-up form. Every request mounts a fresh
// signup.Form from the posted values, applies one event and renders it.
type SignUpHandler struct {
	submitter signup.Submitter
	backURL   string
	isSecure  bool
	logger    *slog.Logger
}

// NewSignUpHandler creates a new SignUpHandler. backURL is where the back
// arrow and "Sign in here" lead.
func NewSignUpHandler(submitter signup.Submitter, backURL string, isSecure bool, logger *slog.Logger) *SignUpHandler {
	return &SignUpHandler{
		submitter: submitter,
		backURL:   backURL,
		isSecure:  isSecure,
		logger:    logger,
	}
}

// RegisterRoutes registers sign-up routes. protect guards every POST;
// limitSubmit applies only to the submit action, after the CSRF check, so
// forged posts never spend a client's budget.
//
//	GET  /signup         - render a fresh form
//	POST /signup         - submit
//	POST /signup/toggle  - show or hide one password field
//	POST /signup/back    - leave the sign-up flow
func (h *SignUpHandler) RegisterRoutes(
	mux *http.ServeMux,
	protect func(http.Handler) http.Handler,
	limitSubmit func(http.Handler) http.Handler,
) {
	mux.HandleFunc("GET /signup", h.ShowSignUp)
	mux.Handle("POST /signup", protect(limitSubmit(http.HandlerFunc(h.SignUp))))
	mux.Handle("POST /signup/toggle", protect(http.HandlerFunc(h.Toggle)))
	mux.Handle("POST /signup/back", protect(http.HandlerFunc(h.Back)))
}

// =============================================================================
// GET /signup
// =============================================================================

// ShowSignUp renders an empty form with both passwords masked.
func (h *SignUpHandler) ShowSignUp(w http.ResponseWriter, r *http.Request) {
	f := h.newForm(w, r, uuid.NewString())
	h.logger.DebugContext(r.Context(), "signup form mounted", "form_id", f.ID())
	h.render(w, r, f, http.StatusOK)
}

// =============================================================================
// POST /signup
// =============================================================================

// SignUp runs the form's submit action.
//
// htmx requests receive the form fragment with inline errors (422) or the
// success panel (200). Plain form posts receive the full page with errors
// or a redirect to the back URL.
func (h *SignUpHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	f, ok := h.mount(w, r)
	if !ok {
		return
	}

	outcome := f.Submit(r.Context())
	metrics.SignupSubmissions.WithLabelValues(outcome.String()).Inc()

	if outcome != signup.OutcomeSubmitted {
		h.logger.InfoContext(r.Context(), "signup not accepted",
			"form_id", f.ID(),
			"outcome", outcome.String(),
		)
		h.render(w, r, f, http.StatusUnprocessableEntity)
		return
	}

	req, _ := f.Request()
	h.logger.InfoContext(r.Context(), "signup accepted", "form_id", f.ID(), "email", req.Email)

	continueURL := withQuery(h.backURL, "registered", "1")
	if !isHTMX(r) {
		http.Redirect(w, r, continueURL, http.StatusSeeOther)
		return
	}

	h.write(w, r, http.StatusOK, signuppages.Success(signuppages.SuccessData{
		DisplayName: displayName(req.FullName),
		Email:       req.Email,
		ContinueURL: continueURL,
	}))
}

// =============================================================================
// POST /signup/toggle
// =============================================================================

// Toggle flips the visibility of the password field named by the "field"
// value and re-renders the form with every value intact.
func (h *SignUpHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	f, ok := h.mount(w, r)
	if !ok {
		return
	}

	field, ok := signup.ParseField(r.PostFormValue("field"))
	if !ok || !field.IsSecret() {
		ErrorResponse(w, r, h.logger, domain.Invalid(opToggle, "Unknown password field"))
		return
	}

	f.ToggleVisibility(field)
	metrics.SignupVisibilityToggles.WithLabelValues(field.Name()).Inc()

	h.render(w, r, f, http.StatusOK)
}

// =============================================================================
// POST /signup/back
// =============================================================================

// Back asks the form to leave the flow. The form's OnBack callback writes
// the redirect.
func (h *SignUpHandler) Back(w http.ResponseWriter, r *http.Request) {
	f, ok := h.mount(w, r)
	if !ok {
		return
	}

	metrics.SignupBackNavigations.Inc()
	f.GoBack()
}

// =============================================================================
// Helpers
// =============================================================================

// newForm creates a form whose OnBack redirects to the back URL.
func (h *SignUpHandler) newForm(w http.ResponseWriter, r *http.Request, id string) *signup.Form {
	return signup.New(signup.Options{
		ID: id,
		OnBack: func() {
			h.logger.InfoContext(r.Context(), "signup abandoned", "form_id", id)
			redirect(w, r, h.backURL)
		},
		Submitter: h.submitter,
		Logger:    h.logger,
	})
}

// mount re-creates the posted form instance. The posted form_id is kept
// only when it is a well-formed UUID.
func (h *SignUpHandler) mount(w http.ResponseWriter, r *http.Request) (*signup.Form, bool) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Wrap(err, domain.EINVALID, "handler.signup_mount", "Could not read the submitted form"))
		return nil, false
	}

	id := r.PostFormValue("form_id")
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	f := h.newForm(w, r, id)
	f.Load(r.PostForm)
	return f, true
}

// render writes the form fragment for htmx and the full page otherwise.
func (h *SignUpHandler) render(w http.ResponseWriter, r *http.Request, f *signup.Form, status int) {
	token, err := csrf.EnsureToken(w, r, h.isSecure)
	if err != nil {
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	data := formData(f)
	if isHTMX(r) {
		h.write(w, r, status, signuppages.Form(data, token))
		return
	}
	h.write(w, r, status, signuppages.Page(signuppages.PageData{
		Form:      data,
		CSRFToken: token,
	}))
}

// write renders c to a buffer first so a failed render never leaves a
// half-written response.
func (h *SignUpHandler) write(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// displayName normalizes spacing and capitalizes each word of name.
// Casers are stateful, so each call gets its own.
func displayName(name string) string {
	return cases.Title(language.Und, cases.NoLower).String(strings.Join(strings.Fields(name), " "))
}

// formData converts a form's state into template data.
func formData(f *signup.Form) signuppages.FormData {
	data := signuppages.FormData{
		ID:                  f.ID(),
		Name:                f.Value(signup.FullName),
		Email:               f.Value(signup.Email),
		Password:            f.Value(signup.Password),
		ConfirmPassword:     f.Value(signup.ConfirmPassword),
		ShowPassword:        f.Visible(signup.Password),
		ShowConfirmPassword: f.Visible(signup.ConfirmPassword),
		FieldErrors:         make(map[string]string),
		Message:             f.ErrorMessage(),
	}

	for _, field := range signup.Fields() {
		if msg := f.FieldError(field); msg != "" {
			data.FieldErrors[field.Name()] = msg
		}
	}
	if near, ok := f.ErrorNear(); ok {
		data.MessageField = near.Name()
	}
	return data
}

// redirect navigates the browser, through HX-Redirect for htmx requests.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// withQuery adds key=value to the query of a relative URL.
func withQuery(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

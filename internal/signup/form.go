// Package signup implements the credential collection form: four text
// inputs, two independent password visibility toggles, a submit action
// and a back navigation signal.
//
// A Form is a plain state container. It is not safe for concurrent use;
// every request mounts its own instance.
package signup

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/DukeRupert/rackmate/internal/domain"
)

// MismatchMessage is shown next to the confirm field when the two
// passwords differ.
const MismatchMessage = "Passwords don't match!"

const rejectedFieldsMessage = "Please correct the highlighted fields and try again."

// Submitter is the identity service that creates the account.
type Submitter interface {
	SignUp(ctx context.Context, req domain.SignUpRequest) error
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, req domain.SignUpRequest) error

func (f SubmitterFunc) SignUp(ctx context.Context, req domain.SignUpRequest) error {
	return f(ctx, req)
}

// Outcome is the result of one submit attempt.
type Outcome int

const (
	// OutcomeInvalid: a required field is empty or the email is malformed.
	OutcomeInvalid Outcome = iota
	// OutcomeMismatch: password and confirmation differ.
	OutcomeMismatch
	// OutcomeRejected: the identity service refused the request.
	OutcomeRejected
	// OutcomeSubmitted: the identity service accepted the request.
	OutcomeSubmitted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeMismatch:
		return "mismatch"
	case OutcomeRejected:
		return "rejected"
	case OutcomeSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Options configures a Form.
type Options struct {
	// ID correlates log lines of one rendered form instance.
	ID string

	// OnBack is called when the user asks to leave the sign-up flow.
	// Required.
	OnBack func()

	// Submitter receives the SignUpRequest once local checks pass.
	Submitter Submitter

	Logger *slog.Logger
}

// Form holds the transient state of one rendered sign-up form.
type Form struct {
	id        string
	onBack    func()
	submitter Submitter
	logger    *slog.Logger

	values          [fieldCount]string
	passwordVisible bool
	confirmVisible  bool

	errorMessage string
	errorNear    Field
	hasErrorNear bool
	fieldErrors  map[Field]string

	request *domain.SignUpRequest
}

// New creates an empty form with both password fields masked.
func New(opts Options) *Form {
	if opts.OnBack == nil {
		panic("signup: OnBack callback is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("form_id", opts.ID)

	submitter := opts.Submitter
	if submitter == nil {
		submitter = SubmitterFunc(func(ctx context.Context, req domain.SignUpRequest) error {
			logger.InfoContext(ctx, "signup attempt", "name", req.FullName, "email", req.Email)
			return nil
		})
	}

	return &Form{
		id:          opts.ID,
		onBack:      opts.OnBack,
		submitter:   submitter,
		logger:      logger,
		fieldErrors: make(map[Field]string),
	}
}

// ID returns the instance identifier passed in Options.
func (f *Form) ID() string {
	return f.id
}

// UpdateField sets the text of a field exactly as typed. Validation is
// deferred to Submit.
func (f *Form) UpdateField(field Field, value string) {
	if field < 0 || field >= fieldCount {
		return
	}
	f.values[field] = value
}

// Value returns the current text of a field.
func (f *Form) Value(field Field) string {
	if field < 0 || field >= fieldCount {
		return ""
	}
	return f.values[field]
}

// ToggleVisibility flips the masked/plain state of one password field.
// The other field is never affected. Non-password fields are ignored.
func (f *Form) ToggleVisibility(which Field) {
	switch which {
	case Password:
		f.passwordVisible = !f.passwordVisible
	case ConfirmPassword:
		f.confirmVisible = !f.confirmVisible
	}
}

// Visible reports whether a password field renders as plain text.
func (f *Form) Visible(which Field) bool {
	switch which {
	case Password:
		return f.passwordVisible
	case ConfirmPassword:
		return f.confirmVisible
	default:
		return true
	}
}

// Load re-mounts the form from values posted back by the browser.
func (f *Form) Load(values url.Values) {
	for _, field := range Fields() {
		f.UpdateField(field, values.Get(field.Name()))
	}
	f.passwordVisible = values.Get(VisibilityParam(Password)) == "1"
	f.confirmVisible = values.Get(VisibilityParam(ConfirmPassword)) == "1"
}

// Submit runs the local checks and, when they pass, hands a SignUpRequest
// to the Submitter. Entered values are never cleared.
func (f *Form) Submit(ctx context.Context) Outcome {
	f.clearErrors()
	f.request = nil

	missing := checkRequired(credentials{
		FullName:        f.values[FullName],
		Email:           f.values[Email],
		Password:        f.values[Password],
		ConfirmPassword: f.values[ConfirmPassword],
	})
	if len(missing) > 0 {
		f.fieldErrors = missing
		f.logger.DebugContext(ctx, "signup blocked by required fields", "fields", len(missing))
		return OutcomeInvalid
	}

	if f.values[Password] != f.values[ConfirmPassword] {
		f.setError(MismatchMessage, ConfirmPassword, true)
		f.logger.DebugContext(ctx, "signup blocked by password mismatch")
		return OutcomeMismatch
	}

	req := domain.SignUpRequest{
		FullName: f.values[FullName],
		Email:    f.values[Email],
		Password: f.values[Password],
	}
	f.request = &req

	if err := f.submitter.SignUp(ctx, req); err != nil {
		f.applySubmitError(ctx, err)
		return OutcomeRejected
	}

	return OutcomeSubmitted
}

// GoBack signals the parent that the user wants to leave the flow.
func (f *Form) GoBack() {
	f.onBack()
}

// Request returns the SignUpRequest produced by the last Submit, if local
// checks passed.
func (f *Form) Request() (domain.SignUpRequest, bool) {
	if f.request == nil {
		return domain.SignUpRequest{}, false
	}
	return *f.request, true
}

// ErrorMessage returns the inline error for the form, or "" when none.
func (f *Form) ErrorMessage() string {
	return f.errorMessage
}

// ErrorNear returns the field the error message should be rendered next to.
// ok is false for form-level errors.
func (f *Form) ErrorNear() (field Field, ok bool) {
	return f.errorNear, f.hasErrorNear
}

// FieldError returns the inline message for one field, or "".
func (f *Form) FieldError(field Field) string {
	return f.fieldErrors[field]
}

// HasErrors reports whether anything needs to be shown to the user.
func (f *Form) HasErrors() bool {
	return f.errorMessage != "" || len(f.fieldErrors) > 0
}

func (f *Form) setError(message string, near Field, hasNear bool) {
	f.errorMessage = message
	f.errorNear = near
	f.hasErrorNear = hasNear
}

func (f *Form) clearErrors() {
	f.setError("", 0, false)
	f.fieldErrors = make(map[Field]string)
}

func (f *Form) applySubmitError(ctx context.Context, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		for name, msg := range ve.Fields {
			if field, ok := ParseField(name); ok {
				f.fieldErrors[field] = msg
			}
		}
		f.setError(rejectedFieldsMessage, 0, false)
		f.logger.InfoContext(ctx, "signup rejected by identity service", "fields", len(ve.Fields))
		return
	}

	switch code := domain.ErrorCode(err); code {
	case domain.ECONFLICT:
		f.fieldErrors[Email] = domain.ErrorMessage(err)
		f.logger.InfoContext(ctx, "signup rejected: identifier exists")
	case domain.EINVALID, domain.EUNAVAIL:
		f.setError(domain.ErrorMessage(err), 0, false)
		f.logger.WarnContext(ctx, "signup rejected", "code", code, "error", err)
	default:
		f.setError(domain.ErrorMessage(err), 0, false)
		f.logger.ErrorContext(ctx, "signup failed", "error", err)
	}
}

package signup

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// credentials mirrors the browser's native constraints on the form:
// every input carries `required`, the email input is `type="email"`.
type credentials struct {
	FullName        string `validate:"required"`
	Email           string `validate:"required,html_email"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required"`
}

// htmlEmail is the WHATWG "valid e-mail address" production, the check
// browsers run for type="email". It is looser than RFC 5322.
var htmlEmail = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("html_email", func(fl validator.FieldLevel) bool {
		return htmlEmail.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
	return v
}

var structFields = map[string]Field{
	"FullName":        FullName,
	"Email":           Email,
	"Password":        Password,
	"ConfirmPassword": ConfirmPassword,
}

var requiredMessages = map[Field]string{
	FullName:        "Please enter your full name",
	Email:           "Please enter your email",
	Password:        "Please create a password",
	ConfirmPassword: "Please confirm your password",
}

// checkRequired returns one message per failing field, or nil when the
// form would pass native validation.
func checkRequired(c credentials) map[Field]string {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError only happens on programmer error.
		panic(err)
	}

	out := make(map[Field]string, len(verrs))
	for _, fe := range verrs {
		field, ok := structFields[fe.StructField()]
		if !ok {
			continue
		}
		switch fe.Tag() {
		case "required":
			out[field] = requiredMessages[field]
		case "html_email":
			out[field] = "Please enter a valid email address"
		default:
			out[field] = "This field is invalid"
		}
	}
	return out
}

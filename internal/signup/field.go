package signup

// Field identifies one of the four text inputs of the sign-up form.
type Field int

const (
	FullName Field = iota
	Email
	Password
	ConfirmPassword

	fieldCount
)

// Form field names as posted by the browser.
var fieldNames = [fieldCount]string{
	FullName:        "name",
	Email:           "email",
	Password:        "password",
	ConfirmPassword: "confirm_password",
}

// Fields returns the text fields in display order.
func Fields() []Field {
	return []Field{FullName, Email, Password, ConfirmPassword}
}

// Name returns the HTML form name of the field.
func (f Field) Name() string {
	if f < 0 || f >= fieldCount {
		return ""
	}
	return fieldNames[f]
}

func (f Field) String() string {
	return f.Name()
}

// IsSecret reports whether the field holds a password and can be masked.
func (f Field) IsSecret() bool {
	return f == Password || f == ConfirmPassword
}

// ParseField maps a form field name back to its Field.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// VisibilityParam is the hidden form input that carries the show/hide state
// of a password field between requests.
func VisibilityParam(f Field) string {
	switch f {
	case Password:
		return "show_password"
	case ConfirmPassword:
		return "show_confirm_password"
	default:
		return ""
	}
}

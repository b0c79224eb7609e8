package domain

// SignUpRequest is the value handed to the identity service once the form
// passes its local checks. It exists only for the duration of one submit.
type SignUpRequest struct {
	FullName string
	Email    string
	Password string
}

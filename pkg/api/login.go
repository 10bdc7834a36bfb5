package api

import "net/mail"

// ValidateLogin checks a LoginRequest: email must be a string holding a
// bare address, password must be a string. Wrong credentials are not a
// validation concern and pass through.
func ValidateLogin(req *LoginRequest) (email, password string, apiErr *APIError) {
	var errs []FieldError

	e, ok := req.Email.(string)
	if !ok || !isEmail(e) {
		errs = append(errs, FieldError{Field: "email", Message: "email must be an email"})
	}

	p, ok := req.Password.(string)
	if !ok {
		errs = append(errs, FieldError{Field: "password", Message: "password must be a string"})
	}

	if len(errs) > 0 {
		return "", "", NewValidationError(errs...)
	}
	return e, p, nil
}

// isEmail reports whether s is a bare address without display name.
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

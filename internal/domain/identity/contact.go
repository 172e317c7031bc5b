package identity

// ValidateContact requires at least one of email or mobile. It must run
// before any store write.
func ValidateContact(email, mobile string) error {
	if NormalizeContact(email) == "" && NormalizeContact(mobile) == "" {
		return &ValidationError{Err: ErrMissingContact}
	}

	return nil
}

// ValidateCreate checks a create request before it reaches a store.
func ValidateCreate(req CreateRequest) error {
	if !req.UserType.Valid() {
		return &ValidationError{Err: ErrInvalidUserType}
	}

	return ValidateContact(req.Email, req.Mobile)
}

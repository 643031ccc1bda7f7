package common

// RequireExists checks that a required field is non-empty.
func RequireExists(field, errMsg string) *CommandError {
	if field == "" {
		return NewInvalidArgument(errMsg)
	}
	return nil
}

// RequireNonNegative checks that a value is zero or greater.
func RequireNonNegative(value int, errMsg string) *CommandError {
	if value < 0 {
		return NewInvalidArgument(errMsg)
	}
	return nil
}

// RequireNonZero checks that a value is not zero.
func RequireNonZero(value int, errMsg string) *CommandError {
	if value == 0 {
		return NewInvalidArgument(errMsg)
	}
	return nil
}

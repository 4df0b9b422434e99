package serverutils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRequest runs struct tag validation. The error is handled by
// ErrorHandlerMiddleware, which turns it into a 400 with field messages.
func ValidateRequest(req any) error {
	return validate.Struct(req)
}

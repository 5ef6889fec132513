package services

import (
	"errors"
	"fmt"

	"storefront/internal/apperr"

	"github.com/go-playground/validator/v10"
)

// validationError converts the first validator failure into an apperr.ValidationError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.NewValidationError(fe.Namespace(), fmt.Sprintf("failed on the '%s' rule", fe.Tag()))
	}
	return apperr.NewValidationError("request", err.Error())
}

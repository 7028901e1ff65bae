package services

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/go-playground/validator/v10"
)

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// validationError reports the first failing field wrapped in common.ErrorValidation.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return fmt.Errorf("%w: %s is required", common.ErrorValidation, fe.Field())
		}
		return fmt.Errorf("%w: %s is invalid", common.ErrorValidation, fe.Field())
	}
	return fmt.Errorf("%w: %v", common.ErrorValidation, err)
}

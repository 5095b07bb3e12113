package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/sageexcel/internal/apperror"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the process-wide validator. It caches struct
// metadata, so one instance is shared by every request.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON name, which is what clients send.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateStruct turns the first failing rule into an AppError. A missing
// required value is MissingField; every other rule is a plain validation
// failure.
func validateStruct(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.ValidationFailed("", err.Error())
	}

	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperror.MissingField(field, fmt.Sprintf("%s is required", field))
	case "email":
		return apperror.ValidationFailed(field, fmt.Sprintf("%s must be a valid email address", field))
	case "max":
		unit := "characters"
		switch fe.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			unit = "items"
		case reflect.Int, reflect.Int64, reflect.Float64:
			return apperror.ValidationFailed(field, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		}
		return apperror.ValidationFailed(field, fmt.Sprintf("%s must be at most %s %s", field, fe.Param(), unit))
	case "oneof":
		return apperror.ValidationFailed(field, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
	default:
		return apperror.ValidationFailed(field, fmt.Sprintf("%s failed %q validation", field, fe.Tag()))
	}
}

package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/suteetoe/tenancy-service/internal/apperror"
	"github.com/suteetoe/tenancy-service/internal/model"
)

// RequestValidator adapts validator/v10 to echo.Validator
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator registers the domain tags: mobile, pincode,
// complaint_category, complaint_status and complaint_priority
func NewRequestValidator() *RequestValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return model.IsValidMobile(fl.Field().String())
	})
	_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return model.IsValidPincode(fl.Field().String())
	})
	_ = v.RegisterValidation("complaint_category", func(fl validator.FieldLevel) bool {
		return model.ComplaintCategory(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("complaint_status", func(fl validator.FieldLevel) bool {
		return model.ComplaintStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("complaint_priority", func(fl validator.FieldLevel) bool {
		return model.ComplaintPriority(fl.Field().String()).Valid()
	})

	return &RequestValidator{validate: v}
}

// Validate implements echo.Validator
func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// validationMessages maps "field.tag" to the message returned to clients
type validationMessages map[string]string

// toAppError turns a validation failure into a Validation error. Missing
// fields are reported before malformed ones.
func (m validationMessages) toAppError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.Validation("Invalid request data")
	}

	fe := fieldErrs[0]
	for _, candidate := range fieldErrs {
		if candidate.Tag() == "required" {
			fe = candidate
			break
		}
	}
	if message, ok := m[fe.Field()+"."+fe.Tag()]; ok {
		return apperror.Validation(message)
	}
	if message, ok := m[fe.Field()]; ok {
		return apperror.Validation(message)
	}
	return apperror.Validation(fmt.Sprintf("Invalid value for %s", fe.Field()))
}

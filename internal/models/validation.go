package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// В сообщениях используем имена полей из json-тегов.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Violation описывает одно нарушенное ограничение.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError содержит все нарушения, найденные при проверке, а не только первое.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// ValidateStruct проверяет структуру по validate-тегам.
// Нарушения возвращаются как *ValidationError.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{Violations: make([]Violation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Violations = append(verr.Violations, Violation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: violationMessage(fe),
		})
	}
	return verr
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field %s is a required field", fe.Field())
	case "min":
		return fmt.Sprintf("field %s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("field %s must be at most %s characters long", fe.Field(), fe.Param())
	case "alphanum":
		return fmt.Sprintf("field %s can contain only numbers and letters", fe.Field())
	case "uuid":
		return fmt.Sprintf("field %s can contain only uuid", fe.Field())
	default:
		return fmt.Sprintf("field %s is not a valid", fe.Field())
	}
}

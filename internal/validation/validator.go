// Package validation wraps go-playground/validator so forms bound by gin and
// rows coming from CSV imports are checked by the same tags and reported the
// same way.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "showpro/internal/errors"
	"showpro/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	useJSONNames(v)
	registerDate(v)
	return v
}

// registerDate validates models.Date as a time value, so an empty date fails "required"
func registerDate(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		d, ok := field.Interface().(models.Date)
		if !ok || d.IsZero() {
			return nil
		}
		return d.Time()
	}, models.Date{})
}

// useJSONNames makes field errors carry json names instead of Go field names
func useJSONNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// ConfigureGin настраивает валидатор gin на json-имена полей
func ConfigureGin() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		useJSONNames(v)
		registerDate(v)
	}
}

// Struct проверяет структуру по тегам binding/validate
func Struct(s any) error {
	return FromError(validate.Struct(s))
}

// Var проверяет одно значение; field попадает в текст ошибки
func Var(field string, value any, tag string) error {
	if tag == "" {
		return nil
	}
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperrors.Invalid(field, Message(fieldErrs[0]))
	}
	return apperrors.Invalid(field, err.Error())
}

// FromError переводит ошибки валидатора (в т.ч. из ShouldBindJSON) в ValidationError.
// Ошибки разбора JSON тоже становятся ошибками валидации тела запроса.
func FromError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		ve := apperrors.NewValidationError()
		for _, fe := range fieldErrs {
			ve.Add(fieldPath(fe), Message(fe))
		}
		return ve
	}

	if errors.Is(err, apperrors.ErrValidation) {
		return err
	}
	return apperrors.Invalid("body", err.Error())
}

// fieldPath отбрасывает имя корневой структуры: "Artist.email" -> "email"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Message - человекочитаемое сообщение для ошибки поля
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

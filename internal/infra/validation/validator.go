// Package validation checks command and query struct tags with
// go-playground/validator.
package validation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"staybook/internal/app/middleware"
	"staybook/internal/pkg/apperror"
)

var ErrFieldInvalid = apperror.Invalid("request.field_invalid", "%s is invalid (%s)")

type StructValidator struct {
	validate *validator.Validate
}

func New() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return &StructValidator{validate: v}
}

// Validate reports the first failing field. Messages that are not structs pass.
func (s *StructValidator) Validate(ctx context.Context, message any) error {
	if !isStruct(message) {
		return nil
	}
	err := s.validate.StructCtx(ctx, message)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		first := fields[0]
		return ErrFieldInvalid.With(first.Field(), rule(first))
	}
	return err
}

func rule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// fieldName renders IdempotencyKeyV as idempotencyKey to match the JSON body.
func fieldName(f reflect.StructField) string {
	if tag := strings.Split(f.Tag.Get("json"), ",")[0]; tag != "" && tag != "-" {
		return tag
	}
	name := strings.TrimSuffix(f.Name, "V")
	if name == "" {
		return f.Name
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

var _ middleware.Validator = (*StructValidator)(nil)

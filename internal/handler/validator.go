package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var phoneNoise = strings.NewReplacer(" ", "", "(", "", ")", "", "-", "")

// Validator is the echo.Validator behind c.Validate.  Field names in errors
// are the json names of the request body.
type Validator struct {
	v *validator.Validate
}

var _ echo.Validator = (*Validator)(nil)

// NewValidator registers the "phone" tag: 10 to 15 digits with an optional
// leading '+', ignoring spaces, parentheses and dashes.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		digits := strings.TrimPrefix(phoneNoise.Replace(fl.Field().String()), "+")
		return v.Var(digits, "number,min=10,max=15") == nil
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i any) error {
	return cv.v.Struct(i)
}

// validationMessage renders the first failed rule for the 400 body.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request body"
	}
	fe := ve[0]
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " is not a valid email"
	case "phone":
		return name + " must have 10 to 15 digits"
	case "datetime":
		return name + " must be a YYYY-MM-DD date"
	case "oneof":
		return name + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return name + " must be greater than " + fe.Param()
	case "gte":
		return name + " must be at least " + fe.Param()
	case "max":
		return name + " must be at most " + fe.Param() + " characters"
	}
	return name + " is not valid"
}

// normalizer trims and upper-cases a request body before its tags run.
type normalizer interface {
	normalize()
}

// bind decodes and validates a request body.  It returns the message for a
// 400 response, or "" when the body is good.
func bind(c echo.Context, body normalizer) string {
	if err := c.Bind(body); err != nil {
		return "invalid request body"
	}
	body.normalize()
	if err := c.Validate(body); err != nil {
		return validationMessage(err)
	}
	return ""
}

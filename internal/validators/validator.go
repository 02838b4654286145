package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomValidator adapts go-playground/validator to echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// NewValidator registers the json tag as field name and the objectid rule.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	return &CustomValidator{validate: v}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validate.Struct(i); err != nil {
		return errors.New(Message(err))
	}
	return nil
}

// Text checks a trimmed free-text field: required and at most max runes.
func (cv *CustomValidator) Text(field, value string, max int) error {
	if err := cv.validate.Var(value, "required"); err != nil {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return nil
}

// Message renders the first validation failure as a short sentence.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "objectid":
		return fmt.Sprintf("%s is not a valid id", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

package validator

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Characters that would break the pipe-delimited storage format at each nesting level.
const (
	lineDelimiters = "|\r\n"
	itemDelimiters = lineDelimiters + ";:"
	listDelimiters = lineDelimiters + ","
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("linesafe", excludesAny(lineDelimiters))
	_ = v.RegisterValidation("itemsafe", excludesAny(itemDelimiters))
	_ = v.RegisterValidation("listsafe", excludesAny(listDelimiters))
	_ = v.RegisterValidation("datefmt", layout("2006-01-02"))
	_ = v.RegisterValidation("timefmt", layout("15:04"))

	// Money fields are validated as their float value so numeric tags like gte apply.
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gt":
				errors[field] = field + " must be greater than " + e.Param()
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			case "oneof":
				errors[field] = field + " must be one of: " + e.Param()
			case "linesafe", "itemsafe", "listsafe":
				errors[field] = field + " contains a reserved delimiter character"
			case "datefmt":
				errors[field] = field + " must be a valid date in YYYY-MM-DD format"
			case "timefmt":
				errors[field] = field + " must be a valid time in HH:MM format"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}

func excludesAny(chars string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), chars)
	}
}

func layout(format string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != len(format) {
			return false
		}
		_, err := time.Parse(format, s)
		return err == nil
	}
}

func decimalValue(v reflect.Value) interface{} {
	d, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}

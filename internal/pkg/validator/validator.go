package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

var clockRe = regexp.MustCompile(`^\d{2}:\d{2}$`)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Role validation
	validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		role := fl.Field().String()
		validRoles := []string{"artist", "venue", "admin"}
		for _, r := range validRoles {
			if role == r {
				return true
			}
		}
		return false
	})

	// Wall-clock HH:MM, 00:00 .. 23:59
	validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		if !clockRe.MatchString(v) {
			return false
		}
		hh := int(v[0]-'0')*10 + int(v[1]-'0')
		mm := int(v[3]-'0')*10 + int(v[4]-'0')
		return hh < 24 && mm < 60
	})

	// Contract add-on tag validation
	validate.RegisterValidation("contract_tag", func(fl validator.FieldLevel) bool {
		tag := fl.Field().String()
		validTags := []string{"transport", "effects", "lodging", "meals", "equipment", "crew"}
		for _, t := range validTags {
			if tag == t {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "role":
			errors[field] = "Invalid role. Must be: artist or venue"
		case "clock":
			errors[field] = "Invalid time. Must be HH:MM (24-hour clock)"
		case "contract_tag":
			errors[field] = "Invalid tag. Must be: transport, effects, lodging, meals, equipment, or crew"
		case "oneof":
			errors[field] = "Invalid value. Must be one of: " + err.Param()
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

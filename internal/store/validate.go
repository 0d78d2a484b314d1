package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sells-group/vendor-intake/internal/model"
	"github.com/sells-group/vendor-intake/internal/patterns"
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		n := len(patterns.Digits(fl.Field().String()))
		return n >= minPhoneDigits && n <= maxPhoneDigits
	})
	return v
}

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every rule a vendor failed.
type ValidationError struct {
	Index  int          `json:"index"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + " " + f.Message
	}
	return "store: invalid vendor: " + strings.Join(msgs, "; ")
}

// ValidateVendor checks v against the persistence rules. It returns a
// *ValidationError or nil.
func ValidateVendor(v *model.Vendor) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: []FieldError{{Field: "vendor", Rule: "invalid", Message: err.Error()}}}
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: ruleMessage(fe),
		})
	}
	return out
}

func validateAll(vs []model.Vendor) error {
	for i := range vs {
		if err := ValidateVendor(&vs[i]); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Index = i
			}
			return err
		}
	}
	return nil
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "phone":
		return fmt.Sprintf("must contain %d to %d digits", minPhoneDigits, maxPhoneDigits)
	case "gte", "lte":
		return "must be between 0 and 1"
	default:
		return "failed " + fe.Tag()
	}
}

// Package inputval validates decoded request bodies using
// waffle/pantry/validate struct tags.
//
// Example:
//
//	type leadInput struct {
//	    CompanyName string `json:"companyName" validate:"required,max=200" label:"Company name"`
//	    Status      string `json:"status" validate:"leadstatus" label:"Status"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    jsonutil.BadRequest(w, res.First())
//	    return
//	}
package inputval

import (
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result holds validation failures in field order.
type Result struct {
	Errors []FieldError
}

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}

var (
	validator     *validate.Validator
	validatorOnce sync.Once
)

// stringRule adapts a string predicate to a rule func. Empty strings pass so
// the rule can sit on optional fields; pair with required when needed.
func stringRule(ok func(string) bool) func(any) bool {
	return func(value any) bool {
		s, isStr := value.(string)
		if !isStr {
			return false
		}
		if strings.TrimSpace(s) == "" {
			return true
		}
		return ok(s)
	}
}

func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		validator = validate.New(validate.WithStopOnFirstError())
		validator.RegisterRuleFunc("objectid", stringRule(IsValidObjectID), "objectid")
		validator.RegisterRuleFunc("httpurl", stringRule(IsValidHTTPURL), "httpurl")
		validator.RegisterRuleFunc("leadstatus", stringRule(models.IsValidLeadStatus), "leadstatus")
		validator.RegisterRuleFunc("eventstatus", stringRule(models.IsValidEventStatus), "eventstatus")
		validator.RegisterRuleFunc("pricetype", stringRule(models.IsValidPriceType), "pricetype")
		validator.RegisterRuleFunc("adminrole", stringRule(models.IsValidAdminRole), "adminrole")
	})
	return validator
}

// Validate checks s against its validate tags.
//
// Built-in rules come from pantry/validate (required, email, oneof, min, max).
// This package adds objectid, httpurl, leadstatus, eventstatus, pricetype and
// adminrole.
func Validate(s any) *Result {
	result := &Result{}

	err := getValidator().Struct(s)
	if err == nil {
		return result
	}

	labels := fieldLabels(s)
	if errs, ok := err.(validate.Errors); ok {
		for _, e := range errs {
			label := labels[e.Field]
			if label == "" {
				label = e.Field
			}
			result.Errors = append(result.Errors, FieldError{
				Field:   e.Field,
				Label:   label,
				Message: message(label, e.Rule, e.Param),
			})
		}
	}
	return result
}

// fieldLabels maps json field names (or Go names) to label tags.
func fieldLabels(s any) map[string]string {
	labels := make(map[string]string)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return labels
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		name := f.Name
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
			name = tag
		}
		if label := f.Tag.Get("label"); label != "" {
			labels[name] = label
		}
	}
	return labels
}

func message(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required"
	case "email":
		return "A valid email address is required"
	case "oneof":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "min":
		return label + " must be at least " + param + " characters"
	case "max":
		return label + " must be at most " + param + " characters"
	case "objectid":
		return label + " is not a valid ID"
	case "httpurl":
		return label + " must start with http:// or https://"
	case "leadstatus":
		return label + " must be one of: " + strings.Join(models.LeadStatuses(), ", ")
	case "eventstatus":
		return label + " must be one of: draft, published, cancelled, completed"
	case "pricetype":
		return label + " must be one of: fixed, variable, percentage"
	case "adminrole":
		return label + " must be admin or super_admin"
	default:
		return label + " is invalid"
	}
}

// IsValidHTTPURL reports whether s parses as an http or https URL.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidObjectID reports whether s is a 24-char ObjectID hex string.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

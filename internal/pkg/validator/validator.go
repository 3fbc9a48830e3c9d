package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	usernameExpr = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// messages maps "<field>.<tag>" to the text shown to the user.
var messages = map[string]string{
	"username.required":         "Username is required",
	"username.min":              "Username must be at least 3 characters",
	"username.username":         "Username can only contain letters, numbers and underscores",
	"password.required":         "Password is required",
	"password.min":              "Password must be at least 6 characters",
	"password_confirm.required": "Please confirm your password",
	"password_confirm.eqfield":  "Passwords do not match",
	"email.required":            "Email is required",
	"email.email":               "Please enter a valid email address",
	"name.required":             "Full name is required",
	"name.min":                  "Full name must be at least 3 characters",
	"age.required":              "Age is required",
	"age.min":                   "Please enter a valid age",
	"age.max":                   "Please enter a valid age",
	"gender.oneof":              "Gender must be male, female or other",
	"berth.oneof":               "Please choose a valid berth preference",
	"passengers.required":       "Add at least one passenger",
	"passengers.min":            "Add at least one passenger",
	"passengers.max":            "A booking can carry at most 6 passengers",
	"train_id.required":         "Please select a train",
	"departure_date.required":   "Please select journey date",
	"departure_date.datetime":   "Journey date must be YYYY-MM-DD",
	"from.required":             "Please enter departure station",
	"to.required":               "Please enter arrival station",
	"date.required":             "Please select journey date",
	"date.datetime":             "Journey date must be YYYY-MM-DD",
	"role.oneof":                "Role must be admin or user",
	"status.required":           "Status is required",
	"status.oneof":              "Status must be confirmed, waiting or cancelled",
	"days.oneof":                "Days must be Mon..Sun",
	"classes.required":          "At least one class is required",
	"classes.min":               "At least one class is required",
	"price.gt":                  "Price must be greater than zero",
	"available.gte":             "Available seats cannot be negative",
	"ids.required":              "Select at least one booking",
	"ids.min":                   "Select at least one booking",
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameExpr.MatchString(fl.Field().String())
	})
}

// Validate checks struct tags and returns a message per failing field, keyed
// by its JSON path (passengers[1].age). It returns nil when v is valid.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe)] = message(fe)
	}
	return out
}

// Var validates a single value against tag.
func Var(value any, tag string) bool {
	return validate.Var(value, tag) == nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	if i := strings.Index(field, "["); i >= 0 {
		field = field[:i]
	}
	if msg, ok := messages[field+"."+fe.Tag()]; ok {
		return msg
	}
	return field + " failed on '" + fe.Tag() + "'"
}

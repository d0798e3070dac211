package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

// FieldError is one failed constraint, named by the field's json tag.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var messages = map[string]string{
	"required": "is required",
	"hhmm":     "must be a time of day in HH:MM format",
	"weekday":  "must be a day of week between 0 (Sunday) and 6 (Saturday)",
	"gt":       "is too small",
	"gtfield":  "must be after %s",
	"min":      "is too short",
	"max":      "is too long",
	"oneof":    "must be one of: %s",
	"datetime": "must be a date in %s format",
}

// Register installs the schedule tags on v and names fields after their json tag.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("hhmm", validateClock); err != nil {
		return fmt.Errorf("failed to register hhmm: %w", err)
	}
	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		return fmt.Errorf("failed to register weekday: %w", err)
	}
	return nil
}

// New returns a standalone validator reading the same "binding" tags gin does.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

func validateClock(fl validator.FieldLevel) bool {
	switch f := fl.Field(); f.Kind() {
	case reflect.String:
		_, err := slotgrid.ParseClock(f.String())
		return err == nil
	case reflect.Int, reflect.Int64:
		return slotgrid.Clock(f.Int()).Valid()
	}
	return false
}

func validateWeekday(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return f.Int() >= 0 && f.Int() <= 6
	}
	return false
}

// Fields flattens validation errors. It returns nil for any other error.
func Fields(err error) []FieldError {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		msg, ok := messages[e.Tag()]
		switch {
		case !ok:
			msg = fmt.Sprintf("failed on %s", e.Tag())
		case strings.Contains(msg, "%s"):
			msg = fmt.Sprintf(msg, e.Param())
		}
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out = append(out, FieldError{Field: field, Message: msg})
	}
	return out
}

// Summary renders validation errors as one line.
func Summary(err error) string {
	fields := Fields(err)
	if len(fields) == 0 {
		return err.Error()
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + " " + f.Message
	}
	return strings.Join(parts, "; ")
}

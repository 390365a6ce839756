package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dto "todo-service.com/todo-service/internal/data_models"
	"todo-service.com/todo-service/internal/exceptions"
)

var errorMessages = map[string]string{
	"required": "%s is required",
	"notnull":  "%s must not be null",
	"min":      "%s must be at least %s characters long",
	"max":      "%s must be no longer than %s characters",
	"priority": "%s must be one of 0 (none), 1 (low), 2 (medium), 3 (high)",
}

// RequestValidator implements echo.Validator.
type RequestValidator struct {
	validate *validator.Validate
}

func New() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterAlias("priority", "oneof=0 1 2 3")

	v.RegisterCustomTypeFunc(optionalValue,
		dto.Optional[string]{},
		dto.Optional[int]{},
	)

	v.RegisterStructValidation(validateTaskUpdate, dto.TaskUpdate{})

	return &RequestValidator{validate: v}
}

// optionalValue exposes an Optional as a pointer so that omitempty only
// skips keys that were absent or null.
func optionalValue(field reflect.Value) interface{} {
	switch o := field.Interface().(type) {
	case dto.Optional[string]:
		return o.Ptr()
	case dto.Optional[int]:
		return o.Ptr()
	}
	return nil
}

func validateTaskUpdate(sl validator.StructLevel) {
	u := sl.Current().Interface().(dto.TaskUpdate)

	if u.Title.Set && u.Title.Null {
		sl.ReportError(u.Title, "title", "Title", "notnull", "")
	} else if u.Title.Present() && u.Title.Value == "" {
		sl.ReportError(u.Title, "title", "Title", "required", "")
	}
	if u.Position.Set && u.Position.Null {
		sl.ReportError(u.Position, "position", "Position", "notnull", "")
	}
	if u.Priority.Set && u.Priority.Null {
		sl.ReportError(u.Priority, "priority", "Priority", "notnull", "")
	}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fields[e.Field()] = parseMessage(e)
	}
	return exceptions.Validation(fields)
}

func parseMessage(e validator.FieldError) string {
	msg, ok := errorMessages[e.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid: %s", e.Field(), e.Tag())
	}

	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, e.Field(), e.Param())
	}
	return fmt.Sprintf(msg, e.Field())
}

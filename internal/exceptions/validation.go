package exceptions

import "net/http"

func Validation(fields map[string]string) *Exception {
	return &Exception{
		Message:    "validation failed",
		StatusCode: http.StatusUnprocessableEntity,
		Fields:     fields,
	}
}

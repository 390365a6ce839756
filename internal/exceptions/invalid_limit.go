package exceptions

import "net/http"

var ErrInvalidLimit = &Exception{
	Message:    "limit must be positive",
	StatusCode: http.StatusUnprocessableEntity,
}

var ErrInvalidOffset = &Exception{
	Message:    "offset must not be negative",
	StatusCode: http.StatusUnprocessableEntity,
}

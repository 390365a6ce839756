package exceptions

import (
	"fmt"
	"net/http"
)

func TaskQuotaExceeded(limit int) *Exception {
	return &Exception{
		Message:    fmt.Sprintf("task limit reached: maximum of %d tasks", limit),
		StatusCode: http.StatusForbidden,
	}
}

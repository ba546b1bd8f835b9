package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Error is a non-2xx response from the API.
type Error struct {
	StatusCode int
	// Detail is the server-provided message, empty when the body had none.
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}

	return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// DetailOr returns the server-provided message carried by err, or fallback
// when err carries none.
func DetailOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}

	return fallback
}

// parseDetail extracts the "detail" field of an error body. Validation
// errors carry a list of objects; the first message is used.
func parseDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		return detail.String()
	case detail.IsArray():
		return detail.Get("0.msg").String()
	}

	return ""
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNetwork marks a transport-level failure: the backend was never reached
// or the exchange was cut short.
var ErrNetwork = errors.New("network error")

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
}

// IsNetwork reports whether err is (or wraps) a transport failure.
func IsNetwork(err error) bool { return errors.Is(err, ErrNetwork) }

const maxDetailBytes = 4 << 10

// ReadStatusError drains a failed response into a StatusError. The backend
// reports failures as {"detail": "..."}; detail may also be a list of
// validation errors, in which case their messages are joined.
func ReadStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
	return &StatusError{Status: resp.StatusCode, Detail: detailFrom(body, resp.Status)}
}

func detailFrom(body []byte, status string) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err == nil && len(env.Detail) > 0 {
		var s string
		if err := json.Unmarshal(env.Detail, &s); err == nil {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(env.Detail, &list); err == nil {
			msgs := make([]string, 0, len(list))
			for _, it := range list {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
		return string(env.Detail)
	}
	if txt := strings.TrimSpace(string(body)); txt != "" && !strings.HasPrefix(txt, "<") {
		return txt
	}
	return status
}

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the server. Code and Message come from
// the JSON error envelope when the body has one.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Message fragments that identify a connectivity failure when the error
// type alone does not.
var networkHints = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"timeout",
	"eof",
	"failed to fetch",
}

// IsNetworkError reports whether err looks like a transport failure rather
// than an answer from the server.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range networkHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

// retryable reports whether a read should be attempted again. Only the
// caller's context ends retries; a timeout on a single attempt does not.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return IsNetworkError(err)
}

// UserMessage turns an error from this package into text suitable for
// showing to a person.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "The request was cancelled."
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		if IsNetworkError(err) || errors.Is(err, context.DeadlineExceeded) {
			return "Network error. Check your connection and try again."
		}
		return "Something went wrong. Please try again."
	}

	switch {
	case apiErr.Status == http.StatusBadRequest:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "The request was invalid."
	case apiErr.Status == http.StatusUnauthorized:
		return "Please sign in to continue."
	case apiErr.Status == http.StatusForbidden:
		return "You don't have permission to do that."
	case apiErr.Status == http.StatusNotFound:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "That item no longer exists."
	case apiErr.Status == http.StatusConflict:
		return "That change was already made."
	case apiErr.Status == http.StatusRequestEntityTooLarge:
		return "The file is too large."
	case apiErr.Status == http.StatusTooManyRequests:
		return "Too many requests. Please slow down."
	case apiErr.Status >= http.StatusInternalServerError:
		return "The server had a problem. Please try again later."
	default:
		return "Something went wrong. Please try again."
	}
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches a 404 from any endpoint.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized matches a 401/403, or a bearer call made without a
	// session.
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError is a non-success HTTP response.
type StatusError struct {
	Op         string
	StatusCode int
	// Message is the server's "error" or "message" field, if any.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}

// InvalidResponseError indicates a body that could not be decoded or did not
// match the expected shape.
type InvalidResponseError struct {
	Op      string
	Content json.RawMessage
	Err     error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Op, e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// ServerMessage returns the text a user should see for err: the server's own
// message when there is one, otherwise err.Error().
func ServerMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// errorBody covers both {"error": ...} and {"message": ...} shapes.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func parseErrorBody(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Error != "" {
		return eb.Error
	}
	return eb.Message
}

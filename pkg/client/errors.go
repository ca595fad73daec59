package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrFileTooLarge is returned for files over MaxFileSize; they are never submitted.
	ErrFileTooLarge = errors.New("file is too large")
	// ErrInvalidTransition is returned when an Attempt is driven out of order.
	ErrInvalidTransition = errors.New("invalid upload state transition")
)

// ServerError carries a non-2xx reply from the server.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 reply from the server.
func IsNotFound(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr) && serverErr.Status == http.StatusNotFound
}

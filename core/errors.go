package core

import (
	"encoding/json"
	"errors"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

type Error struct {
	Message string   `json:"message,omitempty"`
	Err     []string `json:"err,omitempty"`
}

func NewError(message string, errs ...error) *Error {
	return &Error{
		Message: message,
		Err: func() []string {
			var msgs []string

			for _, err := range errs {
				if err != nil {
					msgs = append(msgs, err.Error())
				}
			}

			return msgs
		}(),
	}
}

// ErrorFrom builds the API error body for err, with the error text as message.
func ErrorFrom(err error) *Error {
	if err == nil {
		return &Error{}
	}

	return &Error{Message: err.Error()}
}

func (e *Error) Error() string {
	//nolint:errchkjson
	data, _ := json.Marshal(e)
	return string(data)
}

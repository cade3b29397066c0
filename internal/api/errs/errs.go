// Package errs provides types and support related to web error functionality.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrCode represents an error code in the system.
type ErrCode struct {
	value int
}

// String returns the string representation of the error code.
func (ec ErrCode) String() string {
	return codeNames[ec]
}

// Error codes understood by the HTTP boundary.
var (
	InvalidArgument = ErrCode{value: 3}
	NotFound        = ErrCode{value: 5}
	Internal        = ErrCode{value: 13}
	Unavailable     = ErrCode{value: 14}
)

var codeNames = map[ErrCode]string{
	InvalidArgument: "invalid_argument",
	NotFound:        "not_found",
	Internal:        "internal",
	Unavailable:     "unavailable",
}

var httpStatus = map[ErrCode]int{
	InvalidArgument: http.StatusBadRequest,
	NotFound:        http.StatusNotFound,
	Internal:        http.StatusInternalServerError,
	Unavailable:     http.StatusServiceUnavailable,
}

var defaultTitles = map[ErrCode]string{
	InvalidArgument: "Validation error",
	NotFound:        "Not found",
	Internal:        "Internal error",
	Unavailable:     "Service unavailable",
}

// GenericMessage replaces the message of Internal and Unavailable errors so
// upstream details never reach the client.
const GenericMessage = "An unexpected error occurred"

// Error represents an error in the system.
type Error struct {
	Code     ErrCode           `json:"-"`
	Title    string            `json:"error"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	FuncName string            `json:"-"`
	FileName string            `json:"-"`

	cause error
}

// New constructs an error based on an app error. Internal and Unavailable
// errors keep err only for logging; the client sees GenericMessage.
func New(code ErrCode, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	e := Error{
		Code:     code,
		Title:    defaultTitles[code],
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
		cause:    err,
	}

	var fe FieldErrors
	if errors.As(err, &fe) {
		e.Fields = fe.Fields()
		e.Message = fe[0].Err
	}

	if code == Internal || code == Unavailable {
		e.Message = GenericMessage
	}

	return &e
}

// Newf constructs an error based on an error message.
func Newf(code ErrCode, format string, v ...any) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	msg := fmt.Sprintf(format, v...)
	return &Error{
		Code:     code,
		Title:    defaultTitles[code],
		Message:  msg,
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
		cause:    errors.New(msg),
	}
}

// WithTitle sets the short summary shown in the "error" field.
func (e *Error) WithTitle(title string) *Error {
	e.Title = title
	return e
}

// Error implements the error interface. It reports the underlying cause so
// logs carry the real failure.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Encode implements the web.Encoder interface.
func (e *Error) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

// HTTPStatus implements the web httpStatus interface so the web framework
// can use the correct http status.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// GetError returns the first *Error in err's chain, or nil.
func GetError(err error) *Error {
	var er *Error
	if !errors.As(err, &er) {
		return nil
	}
	return er
}

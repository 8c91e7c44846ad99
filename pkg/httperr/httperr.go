package httperr

import "errors"

const CodeBadRequest = "bad_request"

// BadRequestError marks input the caller must fix. Code is a stable
// snake_case identifier for the JSON error envelope.
type BadRequestError struct {
	code string
	msg  string
}

func (e *BadRequestError) Error() string { return e.msg }

func (e *BadRequestError) Code() string {
	if e.code == "" {
		return CodeBadRequest
	}
	return e.code
}

func NewBadRequest(msg string) error { return &BadRequestError{msg: msg} }

func NewBadRequestCode(code string, msg string) error {
	return &BadRequestError{code: code, msg: msg}
}

func IsBadRequest(err error) bool {
	_, ok := errors.AsType[*BadRequestError](err)
	return ok
}

// CodeOf returns the envelope code of a bad request, or "" for other errors.
func CodeOf(err error) string {
	if e, ok := errors.AsType[*BadRequestError](err); ok {
		return e.Code()
	}
	return ""
}

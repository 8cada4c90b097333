package swap

import "net/http"

// Error 工作流错误：带 HTTP 语义的状态码 + 用户可读文案
type Error struct {
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "swap workflow error"
}

func (e *Error) Unwrap() error { return e.Err }

func errNotFound(msg string) error  { return &Error{Status: http.StatusNotFound, Msg: msg} }
func errForbidden(msg string) error { return &Error{Status: http.StatusForbidden, Msg: msg} }

// errConflict 覆盖状态类失败：非 pending、余额不足、重复请求、自换自……统一 400
func errConflict(msg string) error { return &Error{Status: http.StatusBadRequest, Msg: msg} }
func errInvalid(msg string) error  { return &Error{Status: http.StatusBadRequest, Msg: msg} }

func errInternal(msg string, err error) error {
	return &Error{Status: http.StatusInternalServerError, Msg: msg, Err: err}
}

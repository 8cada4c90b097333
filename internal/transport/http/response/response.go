package response

// Resp 统一响应壳：success + message，data/errors 按需
type Resp struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError 字段级校验错误，形如 {"email": "must be a valid email"}
type FieldError map[string]string

func OK(message string, data any) Resp {
	return Resp{Success: true, Message: message, Data: data}
}

func Fail(message string) Resp {
	return Resp{Success: false, Message: message}
}

// Invalid 校验失败：400 + 字段错误列表
func Invalid(message string, errs []FieldError) Resp {
	return Resp{Success: false, Message: message, Errors: errs}
}

package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope shared by every endpoint. Data is null on errors.
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	MsgInternalError   = "internal error"
	MsgDecodeFailed    = "failed to decode request"
	MsgValidationError = "validation error"
	MsgUnauthorized    = "invalid or missing token"
)

func OK(message string, data any) Response {
	return Response{
		Message: message,
		Data:    data,
	}
}

func Error(message string) Response {
	return Response{
		Message: message,
		Data:    nil,
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsgs []string

	for _, err := range errs {
		field := lowerFirst(err.Field())

		switch err.ActualTag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is a required field", field))
		case "email":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is not a valid email", field))
		case "uuid", "uuid4":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is not a valid id", field))
		case "min":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s must be at least %s", field, err.Param()))
		case "max":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s must be at most %s", field, err.Param()))
		case "lt":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s must be less than %s", field, err.Param()))
		case "gt":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s must be greater than %s", field, err.Param()))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is not valid", field))
		}
	}

	return Response{
		Message: MsgValidationError + ": " + strings.Join(errMsgs, ", "),
		Data:    nil,
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToLower(s[:1]) + s[1:]
}

// Package response содержит конверт JSON-ответов API: {"status","data"} при успехе
// и {"status","error"} при ошибке.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

const (
	// StatusOK успешный ответ.
	StatusOK = "OK"
	// StatusError ответ с ошибкой.
	StatusError = "Error"
)

// Response конверт ответа. Error и Data взаимоисключающие.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse конверт ошибки, используется в @Failure аннотациях.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// OKWithData оборачивает data в успешный конверт.
func OKWithData(data any) Response {
	return Response{Status: StatusOK, Data: data}
}

// Error оборачивает msg в конверт ошибки.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Error: msg}
}

// tagMessages тексты нарушений по тегу validator. %[1]s поле, %[2]s параметр тега.
var tagMessages = map[string]string{
	"required": "field %[1]s is a required field",
	"email":    "field %[1]s must be a valid email",
	"min":      "field %[1]s must be at least %[2]s characters",
	"gt":       "field %[1]s must be greater than %[2]s",
}

// ValidationError склеивает нарушения валидации в одну строку через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		format, ok := tagMessages[fe.ActualTag()]
		if !ok {
			format = "field %[1]s is not a valid"
		}
		msgs = append(msgs, fmt.Sprintf(format, fe.Field(), fe.Param()))
	}
	return Response{Status: StatusError, Error: strings.Join(msgs, ", ")}
}

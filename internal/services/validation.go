package services

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names a form input that can carry a validation message.
type Field string

const (
	FieldGeneral         Field = "general"
	FieldUsername        Field = "username"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldPasswordConfirm Field = "password_confirm"
	FieldTitle           Field = "title"
	FieldTagLine         Field = "tag_line"
	FieldBody            Field = "body"
	FieldMessage         Field = "message"
)

// fieldOrder is the display order of form fields.
var fieldOrder = []Field{
	FieldGeneral,
	FieldUsername,
	FieldEmail,
	FieldPassword,
	FieldPasswordConfirm,
	FieldTitle,
	FieldTagLine,
	FieldBody,
	FieldMessage,
}

// ValidationError collects one message per invalid field.
type ValidationError struct {
	Fields map[Field]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[Field]string)}
}

// Add records message for field unless the field already has one.
func (e *ValidationError) Add(field Field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Has(field Field) bool {
	_, ok := e.Fields[field]
	return ok
}

// First returns the message of the first invalid field in display order.
func (e *ValidationError) First() string {
	for _, field := range fieldOrder {
		if message, ok := e.Fields[field]; ok {
			return message
		}
	}
	return ""
}

// Details returns the messages keyed by field name, for JSON responses.
func (e *ValidationError) Details() map[string]string {
	details := make(map[string]string, len(e.Fields))
	for field, message := range e.Fields {
		details[string(field)] = message
	}
	return details
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, string(field))
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// errOrNil returns e as an error only when it holds messages.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

var validate = validator.New()

func isEmail(value string) bool {
	return validate.Var(value, "required,email") == nil
}

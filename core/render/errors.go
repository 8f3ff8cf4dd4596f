package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedKind is returned for output kinds no renderer produces.
var ErrUnsupportedKind = errors.New("unsupported output format")

// Message keys reported in field errors.
const (
	MsgMissingParameter = "errorMsgMissingParameter"
	MsgInvalidPageSize  = "errorMsgInvalidPageSize"
	MsgInvalidSize      = "errorMsgInvalidSize"
)

// FieldError is one problem found in a definition/data combination.
type FieldError struct {
	ObjectID string `json:"object_id"`
	Field    string `json:"field"`
	MsgKey   string `json:"msg_key"`
	Info     string `json:"info,omitempty"`
}

// ValidationError reports that a definition cannot be rendered with its data.
// Callers surface Errors verbatim.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s.%s: %s", fe.ObjectID, fe.Field, fe.MsgKey))
	}
	return "report validation failed: " + strings.Join(parts, "; ")
}

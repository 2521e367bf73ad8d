package models

import (
	"bytes"
	"encoding/json"
)

// Field names in validation order.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// FieldError is the first rule a field failed, with its localized message.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// ValidationErrors keeps one entry per failing field in validation order
// (username, email, password). It marshals to a JSON object whose keys keep
// that order.
type ValidationErrors []FieldError

// Message returns the message recorded for field, if any.
func (v ValidationErrors) Message(field string) (string, bool) {
	for _, fe := range v {
		if fe.Field == field {
			return fe.Message, true
		}
	}
	return "", false
}

// Fields returns the failing field names in order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, fe := range v {
		fields = append(fields, fe.Field)
	}
	return fields
}

func (v ValidationErrors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fe := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fe.Field)
		if err != nil {
			return nil, err
		}
		msg, err := json.Marshal(fe.Message)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(msg)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

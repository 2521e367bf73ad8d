package handler

import (
	"encoding/json"

	"signup/internal/user/models"
)

// RegisterRequest is the signup payload. Fields other than these three,
// including any client-sent "inactive" flag, are ignored.
type RegisterRequest struct {
	Username optionalString `json:"username"`
	Email    optionalString `json:"email"`
	Password optionalString `json:"password"`
}

func (r RegisterRequest) toModel() models.RegistrationRequest {
	return models.RegistrationRequest{
		Username: string(r.Username),
		Email:    string(r.Email),
		Password: string(r.Password),
	}
}

// optionalString decodes JSON strings as-is and every other value (null,
// numbers, booleans, objects, arrays) as the empty string, so non-string
// fields fail validation as missing instead of rejecting the whole body.
type optionalString string

func (s *optionalString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*s = ""
		return nil
	}
	*s = optionalString(v)
	return nil
}

// MessageResponse is the success body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse maps each failing field to its localized message,
// in field order.
type ValidationErrorResponse struct {
	ValidationErrors models.ValidationErrors `json:"validationErrors"`
}

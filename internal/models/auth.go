package models

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError lists every violated field of a request payload.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

// Error renders the violations in a stable field order.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		parts = append(parts, field)
	}
	sort.Strings(parts)
	for i, field := range parts {
		parts[i] = field + ": " + e.Fields[field]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = message
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Class    int    `json:"class"`
	Board    string `json:"board"`
	State    string `json:"state"`
}

// Validate checks every field and reports all violations at once.
func (r *RegisterRequest) Validate() error {
	var ve ValidationError
	if l := len(strings.TrimSpace(r.Name)); l < 2 || l > 50 {
		ve.add("name", "name must be between 2 and 50 characters")
	}
	if !strings.Contains(r.Email, "@") {
		ve.add("email", "please enter a valid email")
	}
	if len(r.Password) < 6 {
		ve.add("password", "password must be at least 6 characters long")
	}
	if r.Class < 1 || r.Class > 12 {
		ve.add("class", "class must be between 1 and 12")
	}
	switch r.Board {
	case BoardCBSE, BoardICSE, BoardState:
	default:
		ve.add("board", fmt.Sprintf("board must be %s, %s, or %s", BoardCBSE, BoardICSE, BoardState))
	}
	return ve.orNil()
}

// LoginRequest is the payload for email/password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login payload.
func (r *LoginRequest) Validate() error {
	var ve ValidationError
	if !strings.Contains(r.Email, "@") {
		ve.add("email", "please enter a valid email")
	}
	if r.Password == "" {
		ve.add("password", "password is required")
	}
	return ve.orNil()
}

// RequestOTPRequest asks for a one-time login code for a phone number.
type RequestOTPRequest struct {
	Phone string `json:"phone"`
}

// Validate checks the OTP request payload.
func (r *RequestOTPRequest) Validate() error {
	var ve ValidationError
	if l := len(strings.TrimSpace(r.Phone)); l < 10 || l > 15 {
		ve.add("phone", "phone must be between 10 and 15 digits")
	}
	return ve.orNil()
}

// VerifyOTPRequest exchanges a delivered code for a session token.
type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// Validate checks the OTP verification payload.
func (r *VerifyOTPRequest) Validate() error {
	var ve ValidationError
	if strings.TrimSpace(r.Phone) == "" {
		ve.add("phone", "phone is required")
	}
	if strings.TrimSpace(r.Code) == "" {
		ve.add("code", "code is required")
	}
	return ve.orNil()
}

// AuthResponse carries a session token plus the public view of the account.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

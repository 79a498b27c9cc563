package domain

import "errors"

var ErrNotFound = errors.New("user not found")

// User is an account identity. The password hash never leaves the
// repository layer.
type User struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar"`
}

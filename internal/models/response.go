package models

import "encoding/json"

// APIResponse is the remote endpoint's uniform JSON wrapper. For
// data-bearing responses Data holds an encryption envelope rather than the
// plaintext payload.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message *string         `json:"message"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Package models defines the data types shared by the sync engine: the wire
// and stored user forms, the sync status singleton, and queued mutations.
package models

import "strings"

// User is the wire representation returned by the remote directory.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Record is the locally mirrored form of a User: the display name is split
// into first/last components, and the password hash is kept opaque. ID is the
// merge key; a record with an existing id is fully overwritten on each pull.
type Record struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
}

// Adapt converts the wire form to the stored form, splitting the display
// name on the first space.
func (u User) Adapt() Record {
	first, last, _ := strings.Cut(u.Name, " ")
	return Record{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.Password,
		FirstName:    first,
		LastName:     last,
		Email:        u.Email,
	}
}

// FullName joins the split name components back into a display name.
func (r Record) FullName() string {
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// User converts a stored Record back to its wire form.
func (r Record) User() User {
	return User{
		ID:       r.ID,
		Username: r.Username,
		Password: r.PasswordHash,
		Name:     r.FullName(),
		Email:    r.Email,
	}
}

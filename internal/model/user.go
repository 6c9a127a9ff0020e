package model

import "time"

// User is identified by a unique username typed at the top of the screen.
// There is no password; a user record is created implicitly the first time
// a todo is submitted under an unknown username.
type User struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Todos is populated by queries that expand the user's todo list.
	Todos []Todo `json:"todos,omitempty" db:"-"`
}

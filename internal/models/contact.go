package models

import "time"

// DateLayout is how contact birthdays are stored and compared.
// Lexicographic order on this layout matches chronological order,
// which the birthday-window query relies on.
const DateLayout = "2006-01-02"

// Contact is a single address-book entry owned by exactly one user.
type Contact struct {
	ID        int       `json:"id"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  *string   `json:"birthday,omitempty"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    int       `json:"-"`
}

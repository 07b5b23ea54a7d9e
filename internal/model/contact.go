package model

// Contact is a phonebook entry. Contacts live in a JSON file rather than the
// database and have no owner; the whole collection is rewritten on every
// mutation.
type Contact struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Favorite bool   `json:"favorite"`
}

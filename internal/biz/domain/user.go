package domain

import "strconv"

// User is the sender of a Telegram message.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// DisplayName renders the user for admin-facing text. A full name wins
// over the username, which wins over a bare first name.
func (u User) DisplayName() string {
	if u.LastName != "" && u.FirstName != "" {
		return u.LastName + " " + u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return "unknown user"
}

// ProfileLink returns a clickable link to the user: the public t.me
// page when a username exists, the id-addressed deep link otherwise.
func (u User) ProfileLink() string {
	if u.Username != "" {
		return "https://t.me/" + u.Username
	}
	return "tg://user?id=" + strconv.FormatInt(u.ID, 10)
}

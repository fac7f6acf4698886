package entities

import "time"

// User is a profile owned by the external auth system.
// The engine only ever references users; it never creates or mutates them.
type User struct {
	ID        string
	UserName  string
	Email     string
	Bio       string
	AvatarURL string
	CreatedAt time.Time
}

// DisplayName returns the name shown in feeds and friend lists:
// the user name when set, otherwise the local part of the email.
func (u *User) DisplayName() string {
	if u.UserName != "" {
		return u.UserName
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

package model

// User is the identity returned by the identity provider. Fields are opaque to the core.
type User struct {
	UID         string
	Email       string
	DisplayName string
	Provider    string
}

// Label returns the best human-readable name for the user.
func (user User) Label() string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Email
}

package domain

// User is a registered member. PasswordHash is always the output of the
// password hasher; a plaintext password never reaches this struct.
type User struct {
	ID           int64
	FullName     string
	Username     string
	PasswordHash string
	IsMember     bool
	IsAdmin      bool
}

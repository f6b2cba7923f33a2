package auth

import "time"

// User is the stored account document. PasswordHash stays server-side and is
// never serialized into responses or sessions.
type User struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         Role      `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// Profile is the client-safe projection of a user, the same four fields the
// storefront keeps in its session object.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     ParseRole(string(u.Role)),
	}
}

// Result is the register/login contract.
type Result struct {
	Success bool     `json:"success"`
	User    *Profile `json:"user,omitempty"`
	Error   string   `json:"error,omitempty"`
}

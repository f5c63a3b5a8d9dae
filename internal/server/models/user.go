// Package models defines server-side data models persisted in the database.
package models

import "time"

// Role is the authorization role stored with every user. Its string form
// matches the Postgres enum "role".
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a row of the users table.
//
// PasswordHash is the PHC string produced by the client; the server never
// sees the plaintext password.
type User struct {
	ID                  int64     `db:"id"`
	UserName            string    `db:"username"`
	PasswordHash        string    `db:"password_hash"`
	Role                Role      `db:"role"`
	AvatarKey           *string   `db:"avatar_s3_key"`
	Email               *string   `db:"email"`
	ChessDotComUsername *string   `db:"chess_dot_com_username"`
	LichessUsername     *string   `db:"lichess_username"`
	CreatedAt           time.Time `db:"created_at"`
}

// UserProfile holds the optional profile fields supplied at registration.
type UserProfile struct {
	Email               *string
	ChessDotComUsername *string
	LichessUsername     *string
}

// ProfileRow is what the profile page needs from the users table.
type ProfileRow struct {
	UserName  string
	AvatarKey *string
	UserProfile
}

// AvatarUpload records one stored avatar object.
type AvatarUpload struct {
	ID        int64
	UserID    int64
	ObjectKey string
	CreatedAt time.Time
}

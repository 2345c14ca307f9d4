// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

// User is an account holder. Role is fixed at registration.
type User struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	Phone        *string   `db:"phone"`
	Bio          *string   `db:"bio"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

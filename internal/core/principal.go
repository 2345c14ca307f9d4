// AngelaMos | 2026
// principal.go

package core

import (
	"slices"
	"strconv"
)

const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)

// Principal is the authenticated caller of a single request. Handlers
// pull it from the request context and pass it into services explicitly.
type Principal struct {
	UserID int64
	Email  string
	Role   string
}

func (p Principal) IsClient() bool {
	return p.Role == RoleClient
}

func (p Principal) IsFreelancer() bool {
	return p.Role == RoleFreelancer
}

func (p Principal) Is(userID int64) bool {
	return p.UserID != 0 && p.UserID == userID
}

func (p Principal) String() string {
	return p.Role + ":" + strconv.FormatInt(p.UserID, 10)
}

// Authorize fails with a ForbiddenError unless the caller holds one of roles.
func Authorize(p Principal, roles ...string) error {
	if p.UserID == 0 {
		return UnauthorizedError("")
	}
	if slices.Contains(roles, p.Role) {
		return nil
	}
	return ForbiddenError("insufficient permissions")
}

func IsValidRole(role string) bool {
	return role == RoleClient || role == RoleFreelancer
}

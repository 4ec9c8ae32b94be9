package utils

import "context"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type identityKey struct{}

// Identity is the authenticated caller as resolved from the access token.
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

// SetUserContext stores the caller identity; the auth middleware calls it.
func SetUserContext(ctx context.Context, id uint, email string, role string) context.Context {
	return context.WithValue(ctx, identityKey{}, Identity{UserID: id, Email: email, Role: role})
}

// IdentityFrom returns the caller stored in ctx. A zero user id is anonymous.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != 0
}

func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := IdentityFrom(ctx)
	return id.UserID, ok
}

func GetUserEmailFromContext(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.Email
}

func GetUserRoleFromContext(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.Role
}

func IsAdmin(ctx context.Context) bool {
	return GetUserRoleFromContext(ctx) == RoleAdmin
}

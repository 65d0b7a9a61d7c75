package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the per-request identity derived from a verified credential.
// The permission set is the snapshot embedded at token issuance; role or
// permission edits made afterwards only take effect at re-authentication.
type Identity struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// HasPermission is an exact set-membership check. There are no wildcard
// or hierarchy semantics: "documents:*" does not imply "documents:list".
func (i *Identity) HasPermission(permission string) bool {
	for _, p := range i.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (i *Identity) HasAnyPermission(permissions []string) bool {
	for _, p := range permissions {
		if i.HasPermission(p) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the identity carries the administrative role,
// which widens task listing scope.
func (i *Identity) IsAdmin() bool {
	return i.Role == "Admin"
}

// Claims carries the identity and its permission snapshot inside the
// signed token.
type Claims struct {
	UserID      int64    `json:"user_id"`
	Role        string   `json:"role"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (*LoginResult, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	CurrentUser(userID int64) (*UserPayload, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(identity *Identity) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// UserPayload is the user shape returned by login and /auth/me.
type UserPayload struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  UserPayload `json:"user"`
}

type JWTTokenGenerator struct {
	Secret   []byte
	TokenTTL time.Duration
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type ctxKey string

const contextIdentityKey ctxKey = "identity"

func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, contextIdentityKey, identity)
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(contextIdentityKey).(*Identity)
	return identity, ok
}

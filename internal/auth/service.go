package auth

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/docflow/internal"
)

// Account is the stored user row joined with its role name.
type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	RoleName     string
	RoleID       *int64
}

// Repository defines the data access methods the auth service needs.
type Repository interface {
	GetAccountByEmail(email string) (*Account, error)
	GetAccountByID(userID int64) (*Account, error)
	GetRolePermissions(roleID int64) ([]string, error)
}

type Service struct {
	repo           Repository
	tokenGenerator TokenGeneratorAPI
	logger         *slog.Logger
}

func NewService(repo Repository, tokenGen TokenGeneratorAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret:   []byte(secret),
		TokenTTL: ttl,
	}
}

// Authenticate validates credentials and issues a signed token carrying
// the identity plus its permission snapshot. The snapshot is derived
// through the user's role once, at issuance.
func (s *Service) Authenticate(dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	account, err := s.repo.GetAccountByEmail(dto.Username)
	if err != nil {
		s.logger.Warn("login failed: account lookup", "username", dto.Username)
		return nil, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(account.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login failed: password mismatch", "user_id", account.ID)
		return nil, internal.ErrInvalidCredentials
	}

	permissions := []string{}
	if account.RoleID != nil {
		permissions, err = s.repo.GetRolePermissions(*account.RoleID)
		if err != nil {
			s.logger.Error("failed to derive permissions", "error", err, "user_id", account.ID)
			return nil, internal.NewInternalError("failed to derive permissions", err)
		}
	}

	identity := &Identity{
		ID:          account.ID,
		Name:        account.Name,
		Role:        account.RoleName,
		Permissions: permissions,
	}

	token, err := s.tokenGenerator.GenerateAccessToken(identity)
	if err != nil {
		s.logger.Error("failed to sign token", "error", err, "user_id", account.ID)
		return nil, internal.NewInternalError("failed to issue credential", err)
	}

	s.logger.Info("user authenticated", "user_id", account.ID, "role", account.RoleName)

	return &LoginResult{
		Token: token,
		User: UserPayload{
			ID:          account.ID,
			Name:        account.Name,
			Email:       account.Email,
			Role:        account.RoleName,
			Permissions: permissions,
		},
	}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// CurrentUser reloads the user and re-derives permissions for display on
// /auth/me. This is the only read that sees role edits made after the
// token was issued; authorization keeps using the embedded snapshot.
func (s *Service) CurrentUser(userID int64) (*UserPayload, error) {
	account, err := s.repo.GetAccountByID(userID)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}

	permissions := []string{}
	if account.RoleID != nil {
		permissions, err = s.repo.GetRolePermissions(*account.RoleID)
		if err != nil {
			return nil, internal.NewInternalError("failed to load permissions", err)
		}
	}

	return &UserPayload{
		ID:          account.ID,
		Name:        account.Name,
		Email:       account.Email,
		Role:        account.RoleName,
		Permissions: permissions,
	}, nil
}

func (j *JWTTokenGenerator) GenerateAccessToken(identity *Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      identity.ID,
		Role:        identity.Role,
		Name:        identity.Name,
		Permissions: identity.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

// IdentityFromClaims rebuilds the request identity from verified claims
// without touching the store.
func IdentityFromClaims(claims *Claims) *Identity {
	permissions := claims.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return &Identity{
		ID:          claims.UserID,
		Name:        claims.Name,
		Role:        claims.Role,
		Permissions: permissions,
	}
}

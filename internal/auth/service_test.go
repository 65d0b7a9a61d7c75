package auth_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/docflow/internal"
	"github.com/frahmantamala/docflow/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockAuthRepository struct {
	accounts    map[string]*auth.Account
	permissions map[int64][]string
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		accounts:    make(map[string]*auth.Account),
		permissions: make(map[int64][]string),
	}
}

func (m *mockAuthRepository) GetAccountByEmail(email string) (*auth.Account, error) {
	account, ok := m.accounts[email]
	if !ok {
		return nil, errors.New("account not found")
	}
	return account, nil
}

func (m *mockAuthRepository) GetAccountByID(userID int64) (*auth.Account, error) {
	for _, account := range m.accounts {
		if account.ID == userID {
			return account, nil
		}
	}
	return nil, errors.New("account not found")
}

func (m *mockAuthRepository) GetRolePermissions(roleID int64) ([]string, error) {
	return m.permissions[roleID], nil
}

var _ = Describe("Identity", func() {
	It("checks exact membership only", func() {
		identity := &auth.Identity{Permissions: []string{"documents:list", "documents:upload"}}
		Expect(identity.HasPermission("documents:list")).To(BeTrue())
		Expect(identity.HasPermission("documents:approve")).To(BeFalse())
		Expect(identity.HasPermission("documents")).To(BeFalse())
	})

	It("treats only the Admin role as administrative", func() {
		Expect((&auth.Identity{Role: "Admin"}).IsAdmin()).To(BeTrue())
		Expect((&auth.Identity{Role: "admin"}).IsAdmin()).To(BeFalse())
		Expect((&auth.Identity{Role: "Editor"}).IsAdmin()).To(BeFalse())
	})
})

var _ = Describe("AuthService", func() {
	var (
		repo    *mockAuthRepository
		service *auth.Service
		roleID  int64
	)

	BeforeEach(func() {
		repo = newMockAuthRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		tokenGen := auth.NewJWTTokenGenerator("test-secret", 8*time.Hour)
		service = auth.NewService(repo, tokenGen, logger)

		roleID = 1
		hash, err := auth.HashPassword("correct horse", 4)
		Expect(err).NotTo(HaveOccurred())
		repo.accounts["eko@mail.com"] = &auth.Account{
			ID:           2,
			Name:         "Eko Editor",
			Email:        "eko@mail.com",
			PasswordHash: hash,
			RoleName:     "Editor",
			RoleID:       &roleID,
		}
		repo.permissions[roleID] = []string{"documents:list", "documents:upload"}
	})

	Describe("Authenticate", func() {
		It("issues a token whose claims carry the permission snapshot", func() {
			result, err := service.Authenticate(auth.LoginDTO{Username: "eko@mail.com", Password: "correct horse"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.User.Role).To(Equal("Editor"))
			Expect(result.User.Permissions).To(ConsistOf("documents:list", "documents:upload"))

			claims, err := service.ValidateAccessToken(result.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(2)))
			Expect(claims.Permissions).To(ConsistOf("documents:list", "documents:upload"))
		})

		It("keeps the embedded snapshot after a role edit", func() {
			result, err := service.Authenticate(auth.LoginDTO{Username: "eko@mail.com", Password: "correct horse"})
			Expect(err).NotTo(HaveOccurred())

			// role loses upload after the token was issued
			repo.permissions[roleID] = []string{"documents:list"}

			claims, err := service.ValidateAccessToken(result.Token)
			Expect(err).NotTo(HaveOccurred())
			identity := auth.IdentityFromClaims(claims)
			Expect(identity.HasPermission("documents:upload")).To(BeTrue())

			// re-authentication picks up the new set
			fresh, err := service.Authenticate(auth.LoginDTO{Username: "eko@mail.com", Password: "correct horse"})
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh.User.Permissions).To(ConsistOf("documents:list"))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "eko@mail.com", Password: "wrong"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("rejects an unknown user with the same error", func() {
			_, err := service.Authenticate(auth.LoginDTO{Username: "ghost@mail.com", Password: "whatever"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("issues an empty snapshot for a user without a role", func() {
			hash, _ := auth.HashPassword("pw-roleless", 4)
			repo.accounts["norole@mail.com"] = &auth.Account{
				ID:           3,
				Name:         "No Role",
				Email:        "norole@mail.com",
				PasswordHash: hash,
			}
			result, err := service.Authenticate(auth.LoginDTO{Username: "norole@mail.com", Password: "pw-roleless"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.User.Permissions).To(BeEmpty())
		})
	})

	Describe("ValidateAccessToken", func() {
		It("rejects an expired token", func() {
			expiredGen := auth.NewJWTTokenGenerator("test-secret", -time.Minute)
			token, err := expiredGen.GenerateAccessToken(&auth.Identity{ID: 2, Name: "Eko Editor"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("rejects a token signed with a different secret", func() {
			otherGen := auth.NewJWTTokenGenerator("other-secret", 8*time.Hour)
			token, err := otherGen.GenerateAccessToken(&auth.Identity{ID: 2, Name: "Eko Editor"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects garbage", func() {
			_, err := service.ValidateAccessToken("not-a-token")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})

	Describe("CurrentUser", func() {
		It("re-derives permissions from the store for display", func() {
			repo.permissions[roleID] = []string{"documents:list"}
			payload, err := service.CurrentUser(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(payload.Permissions).To(ConsistOf("documents:list"))
		})

		It("fails with not found for an unknown user", func() {
			_, err := service.CurrentUser(404)
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})
})

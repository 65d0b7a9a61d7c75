package user_test

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/docflow/internal"
	"github.com/frahmantamala/docflow/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UserService Suite")
}

type mockUserRepository struct {
	users  map[int64]*user.User
	roles  map[string]int64
	nextID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  make(map[int64]*user.User),
		roles:  map[string]int64{"Admin": 1, "Editor": 2, "Viewer": 3},
		nextID: 1,
	}
}

func (m *mockUserRepository) List(filter user.ListFilter) ([]*user.User, int64, error) {
	matched := []*user.User{}
	for _, u := range m.users {
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(u.Name), needle) &&
				!strings.Contains(strings.ToLower(u.Email), needle) {
				continue
			}
		}
		matched = append(matched, u)
	}
	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.PageSize
	if offset >= len(matched) {
		return []*user.User{}, total, nil
	}
	end := offset + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockUserRepository) GetByID(id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockUserRepository) GetRoleIDByName(name string) (int64, error) {
	id, ok := m.roles[name]
	if !ok {
		return 0, errors.New("role not found")
	}
	return id, nil
}

func (m *mockUserRepository) Create(u *user.User) error {
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) Update(u *user.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) Delete(id int64) error {
	delete(m.users, id)
	return nil
}

var _ = Describe("UserService", func() {
	var (
		repo    *mockUserRepository
		service *user.Service
	)

	BeforeEach(func() {
		repo = newMockUserRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(repo, bcrypt.MinCost, logger)
	})

	Describe("Create", func() {
		It("hashes the password and resolves the role", func() {
			u, err := service.Create(user.CreateUserDTO{
				Name:     "Eko Editor",
				Email:    "eko@mail.com",
				Password: "s3cret-pass",
				Role:     "Editor",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(*u.RoleID).To(Equal(int64(2)))
			Expect(u.PasswordHash).NotTo(Equal("s3cret-pass"))
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass"))).To(Succeed())
		})

		It("rejects an unknown role name", func() {
			_, err := service.Create(user.CreateUserDTO{
				Name:     "Eko Editor",
				Email:    "eko@mail.com",
				Password: "s3cret-pass",
				Role:     "Overlord",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidRole))
			Expect(repo.users).To(BeEmpty())
		})

		It("rejects a short password", func() {
			_, err := service.Create(user.CreateUserDTO{
				Name:     "Eko Editor",
				Email:    "eko@mail.com",
				Password: "short",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("allows a user without a role", func() {
			u, err := service.Create(user.CreateUserDTO{
				Name:     "No Role",
				Email:    "norole@mail.com",
				Password: "s3cret-pass",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.RoleID).To(BeNil())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for _, spec := range []struct{ name, email string }{
				{"Alice Admin", "alice@mail.com"},
				{"Eko Editor", "eko@mail.com"},
				{"Vina Viewer", "vina@mail.com"},
			} {
				_, err := service.Create(user.CreateUserDTO{Name: spec.name, Email: spec.email, Password: "s3cret-pass"})
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("searches name and email case-insensitively", func() {
			result, err := service.List(user.ListFilter{Search: "EKO"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Data).To(HaveLen(1))
			Expect(result.Data[0].Email).To(Equal("eko@mail.com"))
		})

		It("paginates and reports the total", func() {
			result, err := service.List(user.ListFilter{Page: 2, PageSize: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Data).To(HaveLen(1))
			Expect(result.Pagination.Total).To(Equal(int64(3)))
		})
	})

	Describe("Update", func() {
		It("changes name and role", func() {
			u, _ := service.Create(user.CreateUserDTO{Name: "Eko", Email: "eko@mail.com", Password: "s3cret-pass", Role: "Editor"})

			updated, err := service.Update(u.ID, user.UpdateUserDTO{Name: "Eko Renamed", Role: "Admin"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Eko Renamed"))
			Expect(*updated.RoleID).To(Equal(int64(1)))
		})

		It("clears the role when none is given", func() {
			u, _ := service.Create(user.CreateUserDTO{Name: "Eko", Email: "eko@mail.com", Password: "s3cret-pass", Role: "Editor"})

			updated, err := service.Update(u.ID, user.UpdateUserDTO{Name: "Eko"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.RoleID).To(BeNil())
		})

		It("fails with not found for an unknown user", func() {
			_, err := service.Update(404, user.UpdateUserDTO{Name: "Ghost"})
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the user", func() {
			u, _ := service.Create(user.CreateUserDTO{Name: "Eko", Email: "eko@mail.com", Password: "s3cret-pass"})
			Expect(service.Delete(u.ID)).To(Succeed())
			Expect(repo.users).To(BeEmpty())
		})
	})
})

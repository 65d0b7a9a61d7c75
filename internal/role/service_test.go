package role_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/docflow/internal"
	"github.com/frahmantamala/docflow/internal/permission"
	"github.com/frahmantamala/docflow/internal/role"
)

func TestRoleService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RoleService Suite")
}

type mockRoleRepository struct {
	roles        map[int64]*role.Role
	assignments  map[int64][]string
	replaceError error
	nextID       int64
}

func newMockRoleRepository() *mockRoleRepository {
	return &mockRoleRepository{
		roles:       make(map[int64]*role.Role),
		assignments: make(map[int64][]string),
		nextID:      1,
	}
}

func (m *mockRoleRepository) List() ([]*role.Role, error) {
	out := []*role.Role{}
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRoleRepository) GetByID(id int64) (*role.Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return nil, errors.New("role not found")
	}
	return r, nil
}

func (m *mockRoleRepository) Create(r *role.Role) error {
	r.ID = m.nextID
	m.nextID++
	m.roles[r.ID] = r
	return nil
}

func (m *mockRoleRepository) Update(r *role.Role) error {
	m.roles[r.ID] = r
	return nil
}

func (m *mockRoleRepository) Delete(id int64) error {
	delete(m.roles, id)
	delete(m.assignments, id)
	return nil
}

func (m *mockRoleRepository) GetPermissions(roleID int64) ([]string, error) {
	return m.assignments[roleID], nil
}

func (m *mockRoleRepository) ReplacePermissions(roleID int64, permissionIDs []string) error {
	if m.replaceError != nil {
		return m.replaceError
	}
	m.assignments[roleID] = permissionIDs
	return nil
}

var _ = Describe("RoleService", func() {
	var (
		repo    *mockRoleRepository
		service *role.Service
		editor  *role.Role
	)

	BeforeEach(func() {
		repo = newMockRoleRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = role.NewService(repo, logger)

		var err error
		editor, err = service.Create(role.CreateRoleDTO{Name: "Editor", Description: "Can manage documents"})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("SetPermissions", func() {
		It("replaces the assignment set", func() {
			repo.assignments[editor.ID] = []string{permission.DocumentsList}

			perms, err := service.SetPermissions(editor.ID, role.SetPermissionsDTO{
				Permissions: []string{permission.DocumentsUpload, permission.DocumentsEdit},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(Equal([]string{permission.DocumentsUpload, permission.DocumentsEdit}))
			Expect(repo.assignments[editor.ID]).To(Equal(perms))
		})

		It("rejects an id missing from the registry and changes nothing", func() {
			repo.assignments[editor.ID] = []string{permission.DocumentsList}

			_, err := service.SetPermissions(editor.ID, role.SetPermissionsDTO{
				Permissions: []string{permission.DocumentsList, "documents:publish"},
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidPermission))
			Expect(repo.assignments[editor.ID]).To(Equal([]string{permission.DocumentsList}))
		})

		It("collapses duplicate ids", func() {
			perms, err := service.SetPermissions(editor.ID, role.SetPermissionsDTO{
				Permissions: []string{permission.DocumentsList, permission.DocumentsList},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(Equal([]string{permission.DocumentsList}))
		})

		It("accepts an empty set", func() {
			perms, err := service.SetPermissions(editor.ID, role.SetPermissionsDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(BeEmpty())
		})

		It("fails with not found for an unknown role", func() {
			_, err := service.SetPermissions(404, role.SetPermissionsDTO{})
			Expect(err).To(MatchError(internal.ErrRoleNotFound))
		})
	})

	Describe("CRUD", func() {
		It("requires a name on create", func() {
			_, err := service.Create(role.CreateRoleDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("updates name and description", func() {
			updated, err := service.Update(editor.ID, role.UpdateRoleDTO{Name: "Publisher", Description: "renamed"})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Publisher"))
		})

		It("deletes a role and its assignments", func() {
			repo.assignments[editor.ID] = []string{permission.DocumentsList}
			Expect(service.Delete(editor.ID)).To(Succeed())
			Expect(repo.roles).To(BeEmpty())
			Expect(repo.assignments).To(BeEmpty())
		})
	})
})

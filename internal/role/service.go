package role

import (
	"log/slog"

	"github.com/frahmantamala/docflow/internal"
	"github.com/frahmantamala/docflow/internal/permission"
)

type Repository interface {
	List() ([]*Role, error)
	GetByID(id int64) (*Role, error)
	Create(r *Role) error
	Update(r *Role) error
	Delete(id int64) error
	GetPermissions(roleID int64) ([]string, error)
	ReplacePermissions(roleID int64, permissionIDs []string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List() ([]*Role, error) {
	roles, err := s.repo.List()
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, internal.NewInternalError("failed to list roles", err)
	}
	return roles, nil
}

func (s *Service) Create(dto CreateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	r := &Role{Name: dto.Name, Description: dto.Description}
	if err := s.repo.Create(r); err != nil {
		s.logger.Error("failed to create role", "error", err)
		return nil, internal.NewInternalError("failed to create role", err)
	}
	return r, nil
}

func (s *Service) Update(id int64, dto UpdateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	r, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrRoleNotFound
	}

	r.Name = dto.Name
	r.Description = dto.Description
	if err := s.repo.Update(r); err != nil {
		s.logger.Error("failed to update role", "error", err, "role_id", id)
		return nil, internal.NewInternalError("failed to update role", err)
	}
	return r, nil
}

// Delete removes the role; users holding it keep a null role reference
// rather than being deleted.
func (s *Service) Delete(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrRoleNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete role", "error", err, "role_id", id)
		return internal.NewInternalError("failed to delete role", err)
	}

	s.logger.Info("role deleted", "role_id", id)
	return nil
}

func (s *Service) GetPermissions(id int64) ([]string, error) {
	if _, err := s.repo.GetByID(id); err != nil {
		return nil, internal.ErrRoleNotFound
	}

	perms, err := s.repo.GetPermissions(id)
	if err != nil {
		s.logger.Error("failed to load role permissions", "error", err, "role_id", id)
		return nil, internal.NewInternalError("failed to load role permissions", err)
	}
	return perms, nil
}

// SetPermissions replaces the role's assignment set in one transaction.
// Every id must exist in the permission registry; identities already
// holding a token keep their embedded snapshot until re-authentication.
func (s *Service) SetPermissions(id int64, dto SetPermissionsDTO) ([]string, error) {
	if _, err := s.repo.GetByID(id); err != nil {
		return nil, internal.ErrRoleNotFound
	}

	for _, permID := range dto.Permissions {
		if !permission.IsValid(permID) {
			return nil, internal.NewValidationError("unknown permission: "+permID, internal.ErrCodeInvalidPermission)
		}
	}

	permissionIDs := dedupe(dto.Permissions)

	if err := s.repo.ReplacePermissions(id, permissionIDs); err != nil {
		s.logger.Error("failed to replace role permissions", "error", err, "role_id", id)
		return nil, internal.NewInternalError("failed to replace role permissions", err)
	}

	s.logger.Info("role permissions replaced", "role_id", id, "count", len(permissionIDs))
	return permissionIDs, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

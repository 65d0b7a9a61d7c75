package user

import (
	"log/slog"

	"github.com/frahmantamala/docflow/internal"
	"github.com/frahmantamala/docflow/internal/auth"
)

type Repository interface {
	List(filter ListFilter) ([]*User, int64, error)
	GetByID(id int64) (*User, error)
	GetRoleIDByName(name string) (int64, error)
	Create(u *User) error
	Update(u *User) error
	Delete(id int64) error
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{repo: repo, bcryptCost: bcryptCost, logger: logger}
}

func (s *Service) List(filter ListFilter) (*ListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 10
	}

	users, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	return &ListResult{
		Data: users,
		Pagination: Pagination{
			Total: total,
			Page:  filter.Page,
			Limit: filter.PageSize,
		},
	}, nil
}

func (s *Service) Get(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) Create(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u := &User{
		Name:  dto.Name,
		Email: dto.Email,
	}

	if dto.Role != "" {
		roleID, err := s.repo.GetRoleIDByName(dto.Role)
		if err != nil {
			return nil, internal.NewValidationError("unknown role: "+dto.Role, internal.ErrCodeInvalidRole)
		}
		u.RoleID = &roleID
		u.RoleName = dto.Role
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}
	u.PasswordHash = hash

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", u.ID)
	return u, nil
}

func (s *Service) Update(id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}

	u.Name = dto.Name
	if dto.Role != "" {
		roleID, err := s.repo.GetRoleIDByName(dto.Role)
		if err != nil {
			return nil, internal.NewValidationError("unknown role: "+dto.Role, internal.ErrCodeInvalidRole)
		}
		u.RoleID = &roleID
		u.RoleName = dto.Role
	} else {
		u.RoleID = nil
		u.RoleName = ""
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to update user", err)
	}
	return u, nil
}

// Delete removes the user; rows referencing it keep null references per
// the schema's SET NULL behavior.
func (s *Service) Delete(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrUserNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return internal.NewInternalError("failed to delete user", err)
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}

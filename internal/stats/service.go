package stats

import (
	"log/slog"

	"github.com/frahmantamala/docflow/internal"
	"github.com/frahmantamala/docflow/internal/auth"
	"github.com/frahmantamala/docflow/internal/permission"
)

type Repository interface {
	DocumentCounts() (DocumentCounts, error)
	UserCount() (int64, error)
	DocumentsByUser() ([]ReportRow, error)
	DocumentsByFolder() ([]ReportRow, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Overview(actor *auth.Identity) (*Overview, error) {
	if !actor.HasPermission(permission.ReportsOverview) {
		return nil, internal.ErrForbidden
	}

	docs, err := s.repo.DocumentCounts()
	if err != nil {
		s.logger.Error("failed to count documents", "error", err)
		return nil, internal.NewInternalError("failed to load stats", err)
	}
	users, err := s.repo.UserCount()
	if err != nil {
		s.logger.Error("failed to count users", "error", err)
		return nil, internal.NewInternalError("failed to load stats", err)
	}

	return &Overview{Documents: docs, Users: users}, nil
}

func (s *Service) Report(actor *auth.Identity, reportType string) ([]ReportRow, error) {
	if !actor.HasPermission(permission.ReportsCount) {
		return nil, internal.ErrForbidden
	}

	switch reportType {
	case ReportByUser:
		rows, err := s.repo.DocumentsByUser()
		if err != nil {
			s.logger.Error("failed to build report", "error", err, "type", reportType)
			return nil, internal.NewInternalError("failed to build report", err)
		}
		return rows, nil
	case ReportByFolder:
		rows, err := s.repo.DocumentsByFolder()
		if err != nil {
			s.logger.Error("failed to build report", "error", err, "type", reportType)
			return nil, internal.NewInternalError("failed to build report", err)
		}
		return rows, nil
	default:
		return nil, internal.NewValidationError("unknown report type", internal.ErrCodeValidationFailed)
	}
}

package folder

import (
	"log/slog"

	"github.com/frahmantamala/docflow/internal"
)

type Repository interface {
	ListAll() ([]*Folder, error)
	GetByID(id int64) (*Folder, error)
	Create(f *Folder) error
	Update(f *Folder) error
	Delete(id int64) error
	CountDocuments(folderID int64) (int64, error)
	CountChildren(folderID int64) (int64, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Tree() ([]*Node, error) {
	folders, err := s.repo.ListAll()
	if err != nil {
		s.logger.Error("failed to load folders", "error", err)
		return nil, internal.NewInternalError("failed to load folders", err)
	}
	return BuildTree(folders), nil
}

func (s *Service) Create(dto CreateFolderDTO) (*Folder, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if dto.ParentID != nil {
		if _, err := s.repo.GetByID(*dto.ParentID); err != nil {
			return nil, internal.ErrFolderNotFound
		}
	}

	f := &Folder{Name: dto.Name, ParentID: dto.ParentID}
	if err := s.repo.Create(f); err != nil {
		s.logger.Error("failed to create folder", "error", err)
		return nil, internal.NewInternalError("failed to create folder", err)
	}
	return f, nil
}

func (s *Service) Update(id int64, dto UpdateFolderDTO) (*Folder, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	f, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrFolderNotFound
	}

	if dto.ParentID != nil {
		if *dto.ParentID == id {
			return nil, internal.NewValidationError("folder cannot be its own parent", internal.ErrCodeValidationFailed)
		}
		parent, err := s.repo.GetByID(*dto.ParentID)
		if err != nil {
			return nil, internal.ErrFolderNotFound
		}
		// Walk up from the new parent: finding the folder itself on the
		// way to a root means the move would close a cycle.
		for cur := parent; cur.ParentID != nil; {
			if *cur.ParentID == id {
				return nil, internal.NewValidationError("folder cannot be moved under its own descendant", internal.ErrCodeValidationFailed)
			}
			cur, err = s.repo.GetByID(*cur.ParentID)
			if err != nil {
				break
			}
		}
	}

	f.Name = dto.Name
	f.ParentID = dto.ParentID
	if err := s.repo.Update(f); err != nil {
		s.logger.Error("failed to update folder", "error", err, "folder_id", id)
		return nil, internal.NewInternalError("failed to update folder", err)
	}
	return f, nil
}

// Delete removes an empty folder. A folder with direct documents or
// direct subfolders is never deleted and never cascaded.
func (s *Service) Delete(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrFolderNotFound
	}

	docs, err := s.repo.CountDocuments(id)
	if err != nil {
		s.logger.Error("failed to count folder documents", "error", err, "folder_id", id)
		return internal.NewInternalError("failed to check folder contents", err)
	}
	children, err := s.repo.CountChildren(id)
	if err != nil {
		s.logger.Error("failed to count subfolders", "error", err, "folder_id", id)
		return internal.NewInternalError("failed to check folder contents", err)
	}
	if docs > 0 || children > 0 {
		return internal.ErrFolderNotEmpty
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete folder", "error", err, "folder_id", id)
		return internal.NewInternalError("failed to delete folder", err)
	}

	s.logger.Info("folder deleted", "folder_id", id)
	return nil
}

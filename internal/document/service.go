package document

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/docflow/internal"
	"github.com/frahmantamala/docflow/internal/auth"
	"github.com/frahmantamala/docflow/internal/permission"
	"github.com/frahmantamala/docflow/internal/storage"
)

// Repository defines the data access methods for documents.
type Repository interface {
	List(filter ListFilter) ([]*Document, int64, error)
	GetByID(id int64) (*Document, error)
	GetHistory(documentID int64) ([]*HistoryEntry, error)
	CreateWithHistory(doc *Document, entry *HistoryEntry) error
	UpdateMetadata(id int64, name, description string) (*Document, error)
	SetStatus(id int64, status string, entry *HistoryEntry) error
	Delete(id int64) error
}

// URLBuilder turns a generated object name into the externally visible
// file URL stored on the document row.
type URLBuilder func(objectName string) string

type Service struct {
	repo     Repository
	store    storage.ObjectStore
	buildURL URLBuilder
	logger   *slog.Logger
}

func NewService(repo Repository, store storage.ObjectStore, buildURL URLBuilder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		buildURL: buildURL,
		logger:   logger,
	}
}

func (s *Service) List(actor *auth.Identity, filter ListFilter) (*ListResult, error) {
	if !actor.HasPermission(permission.DocumentsList) {
		return nil, internal.ErrForbidden
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 10
	}
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, internal.NewValidationError("unknown document status", internal.ErrCodeInvalidStatus)
	}

	docs, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list documents", "error", err)
		return nil, internal.NewInternalError("failed to list documents", err)
	}

	return &ListResult{
		Data: docs,
		Pagination: Pagination{
			Total: total,
			Page:  filter.Page,
			Limit: filter.PageSize,
		},
	}, nil
}

func (s *Service) Get(actor *auth.Identity, id int64) (*DocumentDetail, error) {
	if !actor.HasPermission(permission.DocumentsList) {
		return nil, internal.ErrForbidden
	}

	doc, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrDocumentNotFound
	}

	history, err := s.repo.GetHistory(id)
	if err != nil {
		s.logger.Error("failed to load document history", "error", err, "document_id", id)
		return nil, internal.NewInternalError("failed to load document history", err)
	}

	return &DocumentDetail{Document: *doc, History: history}, nil
}

// Create stores the file bytes first, then writes the record and its
// Uploaded history entry in one transaction. Status is forced to pending
// regardless of caller input. If the object store fails, nothing is
// created; if the record write fails, the just-stored object is removed
// best-effort and an orphan is tolerated otherwise.
func (s *Service) Create(ctx context.Context, actor *auth.Identity, dto CreateDocumentDTO) (*Document, error) {
	if !actor.HasPermission(permission.DocumentsUpload) {
		return nil, internal.ErrForbidden
	}

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	objectName := uuid.NewString() + "-" + sanitizeFileName(dto.FileName)

	if err := s.store.Put(ctx, objectName, dto.FileData, dto.ContentType); err != nil {
		s.logger.Error("failed to store file", "error", err, "object", objectName)
		return nil, internal.NewInternalError("failed to store file", err)
	}

	now := time.Now()
	doc := &Document{
		Name:        dto.Name,
		Description: dto.Description,
		Status:      StatusPending,
		FileURL:     s.buildURL(objectName),
		UploaderID:  &actor.ID,
		UploadedAt:  now,
		FolderID:    dto.FolderID,
	}
	entry := &HistoryEntry{
		Action:    ActionUploaded,
		Actor:     actor.Name,
		Timestamp: now,
	}

	if err := s.repo.CreateWithHistory(doc, entry); err != nil {
		s.logger.Error("failed to create document record", "error", err, "object", objectName)
		if rmErr := s.store.Remove(ctx, objectName); rmErr != nil {
			s.logger.Warn("orphaned object left in store", "object", objectName, "error", rmErr)
		}
		return nil, internal.NewInternalError("failed to create document", err)
	}

	doc.Uploader = &UserRef{ID: actor.ID, Name: actor.Name}

	s.logger.Info("document uploaded",
		"document_id", doc.ID,
		"uploader_id", actor.ID,
		"object", objectName)

	return doc, nil
}

func (s *Service) UpdateMetadata(actor *auth.Identity, id int64, dto UpdateDocumentDTO) (*Document, error) {
	if !actor.HasPermission(permission.DocumentsEdit) {
		return nil, internal.ErrForbidden
	}

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, internal.ErrDocumentNotFound
	}

	doc, err := s.repo.UpdateMetadata(id, dto.Name, dto.Description)
	if err != nil {
		s.logger.Error("failed to update document", "error", err, "document_id", id)
		return nil, internal.NewInternalError("failed to update document", err)
	}

	return doc, nil
}

// SetStatus moves a document to approved or rejected and appends exactly
// one history entry recording the acting identity and optional comment.
// The transition is unconditional: an already-decided document may be
// re-decided, matching the upstream behavior.
func (s *Service) SetStatus(actor *auth.Identity, id int64, dto SetStatusDTO) error {
	if !actor.HasPermission(permission.DocumentsApprove) {
		return internal.ErrForbidden
	}

	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidStatus)
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return internal.ErrDocumentNotFound
	}

	action := ActionApproved
	if dto.Status == StatusRejected {
		action = ActionRejected
	}

	entry := &HistoryEntry{
		DocumentID: id,
		Action:     action,
		Actor:      actor.Name,
		Timestamp:  time.Now(),
	}
	if dto.Comment != "" {
		entry.Comment = &dto.Comment
	}

	if err := s.repo.SetStatus(id, dto.Status, entry); err != nil {
		s.logger.Error("failed to set document status", "error", err, "document_id", id)
		return internal.NewInternalError("failed to set document status", err)
	}

	s.logger.Info("document status updated",
		"document_id", id,
		"status", dto.Status,
		"actor_id", actor.ID)

	return nil
}

// Delete removes the record and its history first, then removes the
// backing object. Row-first ordering means a failed object removal
// leaves an orphaned object, never a dangling database reference.
func (s *Service) Delete(ctx context.Context, actor *auth.Identity, id int64) error {
	if !actor.HasPermission(permission.DocumentsDelete) {
		return internal.ErrForbidden
	}

	doc, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrDocumentNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete document record", "error", err, "document_id", id)
		return internal.NewInternalError("failed to delete document", err)
	}

	objectName := path.Base(doc.FileURL)
	if err := s.store.Remove(ctx, objectName); err != nil {
		s.logger.Warn("orphaned object left in store after delete",
			"document_id", id,
			"object", objectName,
			"error", err)
	}

	s.logger.Info("document deleted", "document_id", id, "actor_id", actor.ID)
	return nil
}

func sanitizeFileName(name string) string {
	name = path.Base(name)
	return strings.ReplaceAll(name, " ", "_")
}

package task

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/docflow/internal"
	"github.com/frahmantamala/docflow/internal/auth"
)

// ListQuery is the resolved listing scope handed to the repository.
// Scope is one of the Scope* constants; UserID is the requesting
// identity for the scoped variants and ignored for ScopeAll.
type ListQuery struct {
	Scope  string
	UserID int64
}

type Repository interface {
	List(q ListQuery) ([]*Task, error)
	GetByID(id int64) (*Task, error)
	GetDetail(id int64) (*TaskDetail, error)
	GetApproverIDs(taskID int64) ([]int64, error)
	Create(task *Task, approverIDs, documentIDs []int64, entry *HistoryEntry) error
	AddMessage(msg *Message) error
	SetStatus(id int64, status string, entry *HistoryEntry) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns tasks visible to the actor. Scope "all" is reserved for
// administrative identities; anyone else asking for it is silently
// narrowed to their own tasks rather than rejected.
func (s *Service) List(actor *auth.Identity, scope string) ([]*Task, error) {
	switch scope {
	case ScopeAssigned, ScopeCreated:
	case ScopeAll:
		if !actor.IsAdmin() {
			scope = ScopeOwn
		}
	default:
		scope = ScopeOwn
	}

	tasks, err := s.repo.List(ListQuery{Scope: scope, UserID: actor.ID})
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err, "scope", scope)
		return nil, internal.NewInternalError("failed to list tasks", err)
	}
	return tasks, nil
}

// Create inserts the task row, its de-duplicated approver and document
// links, and the created history entry as one unit. Status is forced to
// open regardless of caller input.
func (s *Service) Create(actor *auth.Identity, dto CreateTaskDTO) (*TaskDetail, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	t := &Task{
		Name:        dto.Name,
		Description: dto.Description,
		Status:      StatusOpen,
		AssigneeID:  dto.AssigneeID,
		DueDate:     dto.DueDate,
		CreatedBy:   &actor.ID,
		CreatedAt:   now,
	}
	entry := &HistoryEntry{
		Action:    ActionCreated,
		ActorID:   &actor.ID,
		Timestamp: now,
	}

	approverIDs := dedupeIDs(dto.ApproverIDs)
	documentIDs := dedupeIDs(dto.DocumentIDs)

	if err := s.repo.Create(t, approverIDs, documentIDs, entry); err != nil {
		s.logger.Error("failed to create task", "error", err, "creator_id", actor.ID)
		return nil, internal.NewInternalError("failed to create task", err)
	}

	s.logger.Info("task created",
		"task_id", t.ID,
		"creator_id", actor.ID,
		"approvers", len(approverIDs),
		"documents", len(documentIDs))

	detail, err := s.repo.GetDetail(t.ID)
	if err != nil {
		s.logger.Error("failed to load created task", "error", err, "task_id", t.ID)
		return nil, internal.NewInternalError("failed to load created task", err)
	}
	return detail, nil
}

func (s *Service) Get(actor *auth.Identity, id int64) (*TaskDetail, error) {
	detail, err := s.repo.GetDetail(id)
	if err != nil {
		return nil, internal.ErrTaskNotFound
	}
	return detail, nil
}

// AddMessage appends to the task's discussion thread. Any authenticated
// identity may post; there is no membership check.
func (s *Service) AddMessage(actor *auth.Identity, id int64, dto AddMessageDTO) (*Message, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, internal.ErrTaskNotFound
	}

	msg := &Message{
		TaskID:     id,
		SenderID:   &actor.ID,
		Message:    dto.Message,
		SentAt:     time.Now(),
		SenderName: actor.Name,
	}

	if err := s.repo.AddMessage(msg); err != nil {
		s.logger.Error("failed to add task message", "error", err, "task_id", id)
		return nil, internal.NewInternalError("failed to add message", err)
	}

	return msg, nil
}

// Transition moves the task along one edge of the transition table.
// Assignee edges require the actor to be the assignee; approver edges
// require the actor to be in the approver set. An edge missing from the
// table fails as an invalid transition before any privilege check.
func (s *Service) Transition(actor *auth.Identity, id int64, dto TransitionDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeInvalidStatus)
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrTaskNotFound
	}

	rule, ok := transitionFor(t.Status, dto.Status)
	if !ok {
		return internal.ErrInvalidTransition.WithDetails(map[string]string{
			"from": t.Status,
			"to":   dto.Status,
		})
	}

	switch rule.trigger {
	case triggerAssignee:
		if t.AssigneeID == nil || *t.AssigneeID != actor.ID {
			return internal.ErrForbidden
		}
	case triggerApprover:
		approvers, err := s.repo.GetApproverIDs(id)
		if err != nil {
			s.logger.Error("failed to load task approvers", "error", err, "task_id", id)
			return internal.NewInternalError("failed to load task approvers", err)
		}
		if !containsID(approvers, actor.ID) {
			return internal.ErrForbidden
		}
	}

	entry := &HistoryEntry{
		TaskID:    id,
		Action:    rule.action,
		ActorID:   &actor.ID,
		Timestamp: time.Now(),
	}
	if dto.Comment != "" {
		entry.Comment = &dto.Comment
	}

	if err := s.repo.SetStatus(id, dto.Status, entry); err != nil {
		s.logger.Error("failed to transition task", "error", err, "task_id", id)
		return internal.NewInternalError("failed to update task status", err)
	}

	s.logger.Info("task transitioned",
		"task_id", id,
		"from", t.Status,
		"to", dto.Status,
		"actor_id", actor.ID)

	return nil
}

// dedupeIDs collapses duplicates while keeping first-seen order.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

package postgres

import (
	"gorm.io/gorm"

	"github.com/frahmantamala/docflow/internal/task"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type taskRow struct {
	task.Task
	AssigneeName *string `gorm:"column:assignee_name"`
	CreatorName  *string `gorm:"column:creator_name"`
}

func (row *taskRow) toTask() *task.Task {
	t := row.Task
	if t.AssigneeID != nil && row.AssigneeName != nil {
		t.Assignee = &task.UserRef{ID: *t.AssigneeID, Name: *row.AssigneeName}
	}
	if t.CreatedBy != nil && row.CreatorName != nil {
		t.Creator = &task.UserRef{ID: *t.CreatedBy, Name: *row.CreatorName}
	}
	return &t
}

func (r *Repository) baseQuery() *gorm.DB {
	return r.db.Table("tasks t").
		Select("t.*, a.name AS assignee_name, c.name AS creator_name").
		Joins("LEFT JOIN users a ON t.assignee_id = a.id").
		Joins("LEFT JOIN users c ON t.created_by = c.id")
}

func (r *Repository) List(q task.ListQuery) ([]*task.Task, error) {
	query := r.baseQuery()
	switch q.Scope {
	case task.ScopeAssigned:
		query = query.Where("t.assignee_id = ?", q.UserID)
	case task.ScopeCreated:
		query = query.Where("t.created_by = ?", q.UserID)
	case task.ScopeAll:
	default:
		query = query.Where("t.assignee_id = ? OR t.created_by = ?", q.UserID, q.UserID)
	}

	var rows []taskRow
	if err := query.Order("t.created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	tasks := make([]*task.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, rows[i].toTask())
	}
	return tasks, nil
}

func (r *Repository) GetByID(id int64) (*task.Task, error) {
	var row taskRow
	if err := r.baseQuery().Where("t.id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return row.toTask(), nil
}

func (r *Repository) GetDetail(id int64) (*task.TaskDetail, error) {
	t, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	detail := &task.TaskDetail{
		Task:      *t,
		Approvers: []task.UserRef{},
		Documents: []task.DocumentRef{},
		History:   []*task.HistoryEntry{},
		Messages:  []*task.Message{},
	}

	if err := r.db.Raw(`
		SELECT u.id, u.name
		FROM task_approvers ta
		JOIN users u ON ta.approver_id = u.id
		WHERE ta.task_id = ?
		ORDER BY u.id`, id).Scan(&detail.Approvers).Error; err != nil {
		return nil, err
	}

	if err := r.db.Raw(`
		SELECT d.id, d.name, d.status
		FROM task_documents td
		JOIN documents d ON td.document_id = d.id
		WHERE td.task_id = ?
		ORDER BY d.id`, id).Scan(&detail.Documents).Error; err != nil {
		return nil, err
	}

	history, err := r.historyRows(id)
	if err != nil {
		return nil, err
	}
	detail.History = history

	messages, err := r.messageRows(id)
	if err != nil {
		return nil, err
	}
	detail.Messages = messages

	return detail, nil
}

func (r *Repository) historyRows(taskID int64) ([]*task.HistoryEntry, error) {
	rows, err := r.db.Raw(`
		SELECT h.id, h.task_id, h.action, h.actor_id, h.comment, h.timestamp, COALESCE(u.name, '')
		FROM task_history h
		LEFT JOIN users u ON h.actor_id = u.id
		WHERE h.task_id = ?
		ORDER BY h.timestamp DESC, h.id DESC`, taskID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*task.HistoryEntry{}
	for rows.Next() {
		var e task.HistoryEntry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.Action, &e.ActorID, &e.Comment, &e.Timestamp, &e.ActorName); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *Repository) messageRows(taskID int64) ([]*task.Message, error) {
	rows, err := r.db.Raw(`
		SELECT m.id, m.task_id, m.sender_id, m.message, m.sent_at, COALESCE(u.name, '')
		FROM task_messages m
		LEFT JOIN users u ON m.sender_id = u.id
		WHERE m.task_id = ?
		ORDER BY m.sent_at DESC, m.id DESC`, taskID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*task.Message{}
	for rows.Next() {
		var m task.Message
		if err := rows.Scan(&m.ID, &m.TaskID, &m.SenderID, &m.Message, &m.SentAt, &m.SenderName); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func (r *Repository) GetApproverIDs(taskID int64) ([]int64, error) {
	rows, err := r.db.Raw(`SELECT approver_id FROM task_approvers WHERE task_id = ?`, taskID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create inserts the task, its association rows and the created history
// entry in one transaction so a failure anywhere leaves no partial task.
func (r *Repository) Create(t *task.Task, approverIDs, documentIDs []int64, entry *task.HistoryEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		for _, approverID := range approverIDs {
			if err := tx.Exec(`INSERT INTO task_approvers (task_id, approver_id) VALUES (?, ?)`, t.ID, approverID).Error; err != nil {
				return err
			}
		}
		for _, documentID := range documentIDs {
			if err := tx.Exec(`INSERT INTO task_documents (task_id, document_id) VALUES (?, ?)`, t.ID, documentID).Error; err != nil {
				return err
			}
		}
		entry.TaskID = t.ID
		return tx.Create(entry).Error
	})
}

func (r *Repository) AddMessage(msg *task.Message) error {
	return r.db.Create(msg).Error
}

func (r *Repository) SetStatus(id int64, status string, entry *task.HistoryEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&task.Task{}).Where("id = ?", id).Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(entry).Error
	})
}

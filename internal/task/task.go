package task

import "time"

// Task status constants. A freshly created task is always open.
const (
	StatusOpen             = "open"
	StatusInProgress       = "in_progress"
	StatusAwaitingApproval = "awaiting_approval"
	StatusApproved         = "approved"
	StatusRejected         = "rejected"
)

// History actions written by the lifecycle engine. created is written
// with the task itself; the rest map one-to-one to transitions.
const (
	ActionCreated   = "created"
	ActionStarted   = "started"
	ActionSubmitted = "submitted"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
)

// List scopes relative to the requesting identity.
const (
	ScopeAssigned = "assigned"
	ScopeCreated  = "created"
	ScopeAll      = "all"
	ScopeOwn      = "own"
)

// trigger identifies who may drive a transition edge.
type trigger int

const (
	triggerAssignee trigger = iota
	triggerApprover
)

type edge struct {
	from, to string
}

type transitionRule struct {
	action  string
	trigger trigger
}

// transitions is the authoritative edge table. Any from/to pair not
// listed here is rejected outright, regardless of who asks.
var transitions = map[edge]transitionRule{
	{StatusOpen, StatusInProgress}:             {ActionStarted, triggerAssignee},
	{StatusInProgress, StatusAwaitingApproval}: {ActionSubmitted, triggerAssignee},
	{StatusAwaitingApproval, StatusApproved}:   {ActionApproved, triggerApprover},
	{StatusAwaitingApproval, StatusRejected}:   {ActionRejected, triggerApprover},
}

func transitionFor(from, to string) (transitionRule, bool) {
	rule, ok := transitions[edge{from, to}]
	return rule, ok
}

func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusInProgress, StatusAwaitingApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Task struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"not null"`
	Description string     `json:"description"`
	Status      string     `json:"status" gorm:"default:open"`
	AssigneeID  *int64     `json:"-" gorm:"column:assignee_id"`
	DueDate     *time.Time `json:"dueDate,omitempty" gorm:"column:due_date"`
	CreatedBy   *int64     `json:"-" gorm:"column:created_by"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"column:created_at"`

	Assignee *UserRef `json:"assignee,omitempty" gorm:"-"`
	Creator  *UserRef `json:"creator,omitempty" gorm:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DocumentRef is a linked document with its current status, resolved at
// read time rather than frozen at link time.
type DocumentRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type HistoryEntry struct {
	ID        int64     `json:"-" gorm:"primaryKey"`
	TaskID    int64     `json:"-" gorm:"column:task_id"`
	Action    string    `json:"action"`
	ActorID   *int64    `json:"-" gorm:"column:actor_id"`
	Comment   *string   `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	ActorName string `json:"user" gorm:"-"`
}

func (HistoryEntry) TableName() string {
	return "task_history"
}

type Message struct {
	ID       int64     `json:"id" gorm:"primaryKey"`
	TaskID   int64     `json:"-" gorm:"column:task_id"`
	SenderID *int64    `json:"-" gorm:"column:sender_id"`
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sentAt" gorm:"column:sent_at"`

	SenderName string `json:"sender" gorm:"-"`
}

func (Message) TableName() string {
	return "task_messages"
}

// TaskDetail is the full read model: associations, history and messages
// newest-first.
type TaskDetail struct {
	Task
	Approvers []UserRef       `json:"approvers"`
	Documents []DocumentRef   `json:"documents"`
	History   []*HistoryEntry `json:"history"`
	Messages  []*Message      `json:"messages"`
}

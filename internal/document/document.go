package document

import "time"

// Document status constants. A freshly created document is always
// pending; transitions only go to approved or rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// History actions written by the lifecycle engine.
const (
	ActionUploaded = "Uploaded"
	ActionApproved = "Approved"
	ActionRejected = "Rejected"
)

type Document struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Status      string    `json:"status" gorm:"default:pending"`
	FileURL     string    `json:"fileUrl" gorm:"column:file_url"`
	UploaderID  *int64    `json:"-" gorm:"column:uploader_id"`
	UploadedAt  time.Time `json:"uploadedAt" gorm:"column:uploaded_at"`
	FolderID    *int64    `json:"folderId" gorm:"column:folder_id"`

	Uploader *UserRef `json:"uploader,omitempty" gorm:"-"`
}

func (Document) TableName() string {
	return "documents"
}

// UserRef is the embedded uploader reference returned by the API.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// HistoryEntry is one immutable audit record of a lifecycle event.
// Actor is the display name of the acting identity, frozen at write time.
type HistoryEntry struct {
	ID         int64     `json:"-" gorm:"primaryKey"`
	DocumentID int64     `json:"-" gorm:"column:document_id"`
	Action     string    `json:"action"`
	Actor      string    `json:"user" gorm:"column:actor"`
	Comment    *string   `json:"comment,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func (HistoryEntry) TableName() string {
	return "document_history"
}

// DocumentDetail is a document together with its history, newest first.
type DocumentDetail struct {
	Document
	History []*HistoryEntry `json:"history"`
}

func ValidStatus(status string) bool {
	return status == StatusPending || status == StatusApproved || status == StatusRejected
}

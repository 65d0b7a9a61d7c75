package postgres

import (
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/docflow/internal/document"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// documentRow joins the uploader name onto the document columns so the
// listing does not issue one query per row.
type documentRow struct {
	document.Document
	UploaderName *string `gorm:"column:uploader_name"`
}

func (row *documentRow) toDocument() *document.Document {
	doc := row.Document
	if doc.UploaderID != nil && row.UploaderName != nil {
		doc.Uploader = &document.UserRef{ID: *doc.UploaderID, Name: *row.UploaderName}
	}
	return &doc
}

func (r *Repository) List(filter document.ListFilter) ([]*document.Document, int64, error) {
	base := r.db.Table("documents d")
	if filter.Status != "" {
		base = base.Where("d.status = ?", filter.Status)
	}
	if filter.FolderID != nil {
		base = base.Where("d.folder_id = ?", *filter.FolderID)
	}
	if filter.Search != "" {
		base = base.Where("LOWER(d.name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize

	var rows []documentRow
	err := base.
		Select("d.*, u.name AS uploader_name").
		Joins("LEFT JOIN users u ON d.uploader_id = u.id").
		Order("d.uploaded_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	docs := make([]*document.Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, rows[i].toDocument())
	}
	return docs, total, nil
}

func (r *Repository) GetByID(id int64) (*document.Document, error) {
	var row documentRow
	err := r.db.Table("documents d").
		Select("d.*, u.name AS uploader_name").
		Joins("LEFT JOIN users u ON d.uploader_id = u.id").
		Where("d.id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row.toDocument(), nil
}

func (r *Repository) GetHistory(documentID int64) ([]*document.HistoryEntry, error) {
	var entries []*document.HistoryEntry
	err := r.db.
		Where("document_id = ?", documentID).
		Order("timestamp DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateWithHistory inserts the document and its initial history entry
// in one transaction so a record never exists without its audit trail.
func (r *Repository) CreateWithHistory(doc *document.Document, entry *document.HistoryEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		entry.DocumentID = doc.ID
		return tx.Create(entry).Error
	})
}

func (r *Repository) UpdateMetadata(id int64, name, description string) (*document.Document, error) {
	err := r.db.Model(&document.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":        name,
			"description": description,
		}).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *Repository) SetStatus(id int64, status string, entry *document.HistoryEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&document.Document{}).Where("id = ?", id).Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(entry).Error
	})
}

func (r *Repository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&document.HistoryEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&document.Document{}).Error
	})
}

package postgres

import (
	"gorm.io/gorm"

	"github.com/frahmantamala/docflow/internal/folder"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListAll() ([]*folder.Folder, error) {
	var folders []*folder.Folder
	if err := r.db.Order("id").Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *Repository) GetByID(id int64) (*folder.Folder, error) {
	var f folder.Folder
	if err := r.db.Where("id = ?", id).Take(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *Repository) Create(f *folder.Folder) error {
	return r.db.Create(f).Error
}

func (r *Repository) Update(f *folder.Folder) error {
	return r.db.Model(&folder.Folder{}).
		Where("id = ?", f.ID).
		Updates(map[string]interface{}{
			"name":      f.Name,
			"parent_id": f.ParentID,
		}).Error
}

func (r *Repository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&folder.Folder{}).Error
}

func (r *Repository) CountDocuments(folderID int64) (int64, error) {
	var count int64
	err := r.db.Table("documents").Where("folder_id = ?", folderID).Count(&count).Error
	return count, err
}

func (r *Repository) CountChildren(folderID int64) (int64, error) {
	var count int64
	err := r.db.Table("folders").Where("parent_id = ?", folderID).Count(&count).Error
	return count, err
}

package postgres

import (
	"database/sql"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/docflow/internal/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRow struct {
	user.User
	RoleNameCol *string `gorm:"column:role_name"`
}

func (row *userRow) toUser() *user.User {
	u := row.User
	if row.RoleNameCol != nil {
		u.RoleName = *row.RoleNameCol
	}
	return &u
}

func (r *Repository) List(filter user.ListFilter) ([]*user.User, int64, error) {
	base := r.db.Table("users u")
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		base = base.Where("LOWER(u.name) LIKE ? OR LOWER(u.email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize

	var rows []userRow
	err := base.
		Select("u.*, r.name AS role_name").
		Joins("LEFT JOIN roles r ON u.role_id = r.id").
		Order("u.id").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	users := make([]*user.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toUser())
	}
	return users, total, nil
}

func (r *Repository) GetByID(id int64) (*user.User, error) {
	var row userRow
	err := r.db.Table("users u").
		Select("u.*, r.name AS role_name").
		Joins("LEFT JOIN roles r ON u.role_id = r.id").
		Where("u.id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row.toUser(), nil
}

func (r *Repository) GetRoleIDByName(name string) (int64, error) {
	var id int64
	row := r.db.Raw(`SELECT id FROM roles WHERE name = ?`, name).Row()
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, gorm.ErrRecordNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *Repository) Create(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *Repository) Update(u *user.User) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"name":    u.Name,
			"role_id": u.RoleID,
		}).Error
}

func (r *Repository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&user.User{}).Error
}

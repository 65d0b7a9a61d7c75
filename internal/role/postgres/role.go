package postgres

import (
	"gorm.io/gorm"

	"github.com/frahmantamala/docflow/internal/role"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List() ([]*role.Role, error) {
	var roles []*role.Role
	if err := r.db.Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *Repository) GetByID(id int64) (*role.Role, error) {
	var rl role.Role
	if err := r.db.Where("id = ?", id).Take(&rl).Error; err != nil {
		return nil, err
	}
	return &rl, nil
}

func (r *Repository) Create(rl *role.Role) error {
	return r.db.Create(rl).Error
}

func (r *Repository) Update(rl *role.Role) error {
	return r.db.Model(&role.Role{}).
		Where("id = ?", rl.ID).
		Updates(map[string]interface{}{
			"name":        rl.Name,
			"description": rl.Description,
		}).Error
}

// Delete nulls the role on its users before removing the role row and
// its permission assignments, all in one transaction.
func (r *Repository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`UPDATE users SET role_id = NULL WHERE role_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM role_permissions WHERE role_id = ?`, id).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&role.Role{}).Error
	})
}

func (r *Repository) GetPermissions(roleID int64) ([]string, error) {
	rows, err := r.db.Raw(`SELECT permission_id FROM role_permissions WHERE role_id = ? ORDER BY permission_id`, roleID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	permissions := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		permissions = append(permissions, id)
	}
	return permissions, rows.Err()
}

// ReplacePermissions swaps the assignment set inside one transaction so
// concurrent readers never observe a partially emptied set.
func (r *Repository) ReplacePermissions(roleID int64, permissionIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM role_permissions WHERE role_id = ?`, roleID).Error; err != nil {
			return err
		}
		for _, permID := range permissionIDs {
			if err := tx.Exec(`INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)`, roleID, permID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

package postgres

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/docflow/internal/auth"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetAccountByEmail(email string) (*auth.Account, error) {
	return r.scanAccount(`
		SELECT u.id, u.name, u.email, u.password_hash, u.role_id, COALESCE(r.name, '')
		FROM users u
		LEFT JOIN roles r ON u.role_id = r.id
		WHERE u.email = ?`, email)
}

func (r *Repository) GetAccountByID(userID int64) (*auth.Account, error) {
	return r.scanAccount(`
		SELECT u.id, u.name, u.email, u.password_hash, u.role_id, COALESCE(r.name, '')
		FROM users u
		LEFT JOIN roles r ON u.role_id = r.id
		WHERE u.id = ?`, userID)
}

func (r *Repository) scanAccount(query string, arg interface{}) (*auth.Account, error) {
	var account auth.Account
	var roleID sql.NullInt64

	row := r.db.Raw(query, arg).Row()
	if err := row.Scan(&account.ID, &account.Name, &account.Email, &account.PasswordHash, &roleID, &account.RoleName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("account not found")
		}
		return nil, err
	}
	if roleID.Valid {
		account.RoleID = &roleID.Int64
	}
	return &account, nil
}

func (r *Repository) GetRolePermissions(roleID int64) ([]string, error) {
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

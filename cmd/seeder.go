package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/docflow/internal/permission"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			tables := []string{
				"task_messages", "task_history", "task_documents", "task_approvers", "tasks",
				"document_history", "documents", "folders",
				"role_permissions", "users", "roles",
			}
			for _, table := range tables {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		// Roles with their permission assignments. The permission
		// catalog itself lives in code; only assignments are stored.
		roles := []struct {
			Name        string
			Description string
			Permissions []string
		}{
			{"Admin", "Full access", allPermissionIDs()},
			{"Editor", "Can manage documents", []string{
				permission.DocumentsList,
				permission.DocumentsUpload,
				permission.DocumentsEdit,
			}},
			{"Viewer", "Read-only access", []string{
				permission.DocumentsList,
			}},
		}

		for _, r := range roles {
			var roleID int64
			row := db.Raw("SELECT id FROM roles WHERE name = ?", r.Name).Row()
			if err := row.Scan(&roleID); err != nil {
				if err := db.Exec("INSERT INTO roles (name, description) VALUES (?, ?)", r.Name, r.Description).Error; err != nil {
					log.Fatalf("failed to insert role %s: %v", r.Name, err)
				}
				if err := db.Raw("SELECT id FROM roles WHERE name = ?", r.Name).Row().Scan(&roleID); err != nil {
					log.Fatalf("role not found after insert %s: %v", r.Name, err)
				}
				fmt.Println("Seeded role:", r.Name)
			}

			for _, permID := range r.Permissions {
				var exists int
				if err := db.Raw("SELECT 1 FROM role_permissions WHERE role_id = ? AND permission_id = ?", roleID, permID).Row().Scan(&exists); err == nil {
					continue
				}
				if err := db.Exec("INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)", roleID, permID).Error; err != nil {
					log.Fatalf("failed to assign permission %s to role %s: %v", permID, r.Name, err)
				}
			}
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		users := []struct {
			Name  string
			Email string
			Role  string
		}{
			{"Alice Admin", "alice@mail.com", "Admin"},
			{"Eko Editor", "eko@mail.com", "Editor"},
			{"Vina Viewer", "vina@mail.com", "Viewer"},
		}

		for _, u := range users {
			var exists int
			if err := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row().Scan(&exists); err == nil {
				fmt.Println("user already exists:", u.Email)
				continue
			}

			var roleID int64
			if err := db.Raw("SELECT id FROM roles WHERE name = ?", u.Role).Row().Scan(&roleID); err != nil {
				log.Fatalf("role not found for user %s: %v", u.Email, err)
			}

			if err := db.Exec("INSERT INTO users (name, email, password_hash, role_id, created_at) VALUES (?, ?, ?, ?, now())", u.Name, u.Email, string(hash), roleID).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		}

		folders := []string{"Contracts", "Invoices", "Reports"}
		for _, name := range folders {
			var exists int
			if err := db.Raw("SELECT 1 FROM folders WHERE name = ? AND parent_id IS NULL", name).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO folders (name, parent_id) VALUES (?, NULL)", name).Error; err != nil {
				log.Fatalf("failed to insert folder %s: %v", name, err)
			}
			fmt.Println("Seeded folder:", name)
		}

		fmt.Println("Seeding complete")
	},
}

func allPermissionIDs() []string {
	perms := permission.List()
	ids := make([]string, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	return ids
}

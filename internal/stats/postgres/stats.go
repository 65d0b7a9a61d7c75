package postgres

import (
	"gorm.io/gorm"

	"github.com/frahmantamala/docflow/internal/stats"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DocumentCounts() (stats.DocumentCounts, error) {
	var counts stats.DocumentCounts
	row := r.db.Raw(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected')
		FROM documents`).Row()
	err := row.Scan(&counts.Total, &counts.Pending, &counts.Approved, &counts.Rejected)
	return counts, err
}

func (r *Repository) UserCount() (int64, error) {
	var count int64
	err := r.db.Table("users").Count(&count).Error
	return count, err
}

func (r *Repository) DocumentsByUser() ([]stats.ReportRow, error) {
	return r.scanReport(`
		SELECT COALESCE(u.name, 'unknown') AS label, COUNT(d.id) AS count
		FROM documents d
		LEFT JOIN users u ON d.uploader_id = u.id
		GROUP BY u.name
		ORDER BY count DESC, label`)
}

func (r *Repository) DocumentsByFolder() ([]stats.ReportRow, error) {
	return r.scanReport(`
		SELECT COALESCE(f.name, 'unfiled') AS label, COUNT(d.id) AS count
		FROM documents d
		LEFT JOIN folders f ON d.folder_id = f.id
		GROUP BY f.name
		ORDER BY count DESC, label`)
}

func (r *Repository) scanReport(query string) ([]stats.ReportRow, error) {
	rows, err := r.db.Raw(query).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := []stats.ReportRow{}
	for rows.Next() {
		var row stats.ReportRow
		if err := rows.Scan(&row.Label, &row.Count); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}

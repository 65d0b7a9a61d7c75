package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/docflow/internal/document"
)

func TestDocumentRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DocumentRepository Suite")
}

type SQLiteUser struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

type SQLiteDocument struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"not null"`
	Description string    `gorm:"column:description"`
	Status      string    `gorm:"default:pending"`
	FileURL     string    `gorm:"column:file_url"`
	UploaderID  *int64    `gorm:"column:uploader_id"`
	UploadedAt  time.Time `gorm:"column:uploaded_at"`
	FolderID    *int64    `gorm:"column:folder_id"`
}

func (SQLiteDocument) TableName() string {
	return "documents"
}

type SQLiteHistory struct {
	ID         int64     `gorm:"primaryKey"`
	DocumentID int64     `gorm:"column:document_id"`
	Action     string    `gorm:"not null"`
	Actor      string    `gorm:"column:actor"`
	Comment    *string   `gorm:"column:comment"`
	Timestamp  time.Time `gorm:"column:timestamp"`
}

func (SQLiteHistory) TableName() string {
	return "document_history"
}

var _ = Describe("DocumentRepository", func() {
	var (
		db   *gorm.DB
		repo *Repository
	)

	uploaderID := int64(2)

	newDoc := func(name, status string, uploadedAt time.Time) *document.Document {
		return &document.Document{
			Name:       name,
			Status:     status,
			FileURL:    "http://localhost:9000/documents/obj-" + name,
			UploaderID: &uploaderID,
			UploadedAt: uploadedAt,
		}
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{}, &SQLiteDocument{}, &SQLiteHistory{})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Create(&SQLiteUser{ID: uploaderID, Name: "Eko Editor"}).Error).NotTo(HaveOccurred())

		repo = NewRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("CreateWithHistory", func() {
		It("writes the document with its initial entry", func() {
			doc := newDoc("Q1 Report", document.StatusPending, time.Now())
			entry := &document.HistoryEntry{Action: document.ActionUploaded, Actor: "Eko Editor", Timestamp: time.Now()}

			Expect(repo.CreateWithHistory(doc, entry)).To(Succeed())
			Expect(doc.ID).NotTo(BeZero())
			Expect(entry.DocumentID).To(Equal(doc.ID))

			history, err := repo.GetHistory(doc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(1))
			Expect(history[0].Action).To(Equal(document.ActionUploaded))
		})
	})

	Describe("GetByID", func() {
		It("resolves the uploader name through the join", func() {
			doc := newDoc("Q1 Report", document.StatusPending, time.Now())
			entry := &document.HistoryEntry{Action: document.ActionUploaded, Actor: "Eko Editor", Timestamp: time.Now()}
			Expect(repo.CreateWithHistory(doc, entry)).To(Succeed())

			got, err := repo.GetByID(doc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Uploader).NotTo(BeNil())
			Expect(got.Uploader.Name).To(Equal("Eko Editor"))
		})

		It("fails for an unknown id", func() {
			_, err := repo.GetByID(404)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			base := time.Now().Add(-time.Hour)
			for i := 0; i < 5; i++ {
				status := document.StatusPending
				if i%2 == 1 {
					status = document.StatusApproved
				}
				doc := newDoc("Doc", status, base.Add(time.Duration(i)*time.Minute))
				entry := &document.HistoryEntry{Action: document.ActionUploaded, Actor: "Eko Editor", Timestamp: time.Now()}
				Expect(repo.CreateWithHistory(doc, entry)).To(Succeed())
			}
		})

		It("orders newest upload first", func() {
			docs, total, err := repo.List(document.ListFilter{Page: 1, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(5)))
			for i := 1; i < len(docs); i++ {
				Expect(docs[i-1].UploadedAt.After(docs[i].UploadedAt) || docs[i-1].UploadedAt.Equal(docs[i].UploadedAt)).To(BeTrue())
			}
		})

		It("filters by status and counts only matches", func() {
			docs, total, err := repo.List(document.ListFilter{Status: document.StatusApproved, Page: 1, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			for _, d := range docs {
				Expect(d.Status).To(Equal(document.StatusApproved))
			}
		})

		It("pages past the end cleanly", func() {
			docs, total, err := repo.List(document.ListFilter{Page: 3, PageSize: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(5)))
			Expect(docs).To(BeEmpty())
		})

		It("searches case-insensitively by name", func() {
			doc := newDoc("Contract Final", document.StatusPending, time.Now())
			entry := &document.HistoryEntry{Action: document.ActionUploaded, Actor: "Eko Editor", Timestamp: time.Now()}
			Expect(repo.CreateWithHistory(doc, entry)).To(Succeed())

			docs, total, err := repo.List(document.ListFilter{Search: "contract", Page: 1, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(docs[0].Name).To(Equal("Contract Final"))
		})
	})

	Describe("GetHistory", func() {
		It("keeps same-timestamp entries in reverse insertion order", func() {
			doc := newDoc("Q1 Report", document.StatusPending, time.Now())
			at := time.Now().Truncate(time.Second)
			Expect(repo.CreateWithHistory(doc, &document.HistoryEntry{Action: document.ActionUploaded, Actor: "Eko Editor", Timestamp: at})).To(Succeed())

			second := &document.HistoryEntry{DocumentID: doc.ID, Action: document.ActionRejected, Actor: "Alice Admin", Timestamp: at}
			Expect(repo.SetStatus(doc.ID, document.StatusRejected, second)).To(Succeed())
			third := &document.HistoryEntry{DocumentID: doc.ID, Action: document.ActionApproved, Actor: "Alice Admin", Timestamp: at}
			Expect(repo.SetStatus(doc.ID, document.StatusApproved, third)).To(Succeed())

			history, err := repo.GetHistory(doc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(3))
			Expect(history[0].Action).To(Equal(document.ActionApproved))
			Expect(history[1].Action).To(Equal(document.ActionRejected))
			Expect(history[2].Action).To(Equal(document.ActionUploaded))
		})
	})

	Describe("SetStatus", func() {
		It("updates the row and appends the entry", func() {
			doc := newDoc("Q1 Report", document.StatusPending, time.Now())
			Expect(repo.CreateWithHistory(doc, &document.HistoryEntry{Action: document.ActionUploaded, Actor: "Eko Editor", Timestamp: time.Now()})).To(Succeed())

			entry := &document.HistoryEntry{DocumentID: doc.ID, Action: document.ActionApproved, Actor: "Alice Admin", Timestamp: time.Now()}
			Expect(repo.SetStatus(doc.ID, document.StatusApproved, entry)).To(Succeed())

			got, err := repo.GetByID(doc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(document.StatusApproved))

			history, err := repo.GetHistory(doc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))
		})

		It("fails for an unknown document without appending", func() {
			entry := &document.HistoryEntry{DocumentID: 404, Action: document.ActionApproved, Actor: "Alice Admin", Timestamp: time.Now()}
			Expect(repo.SetStatus(404, document.StatusApproved, entry)).To(MatchError(gorm.ErrRecordNotFound))

			var count int64
			Expect(db.Table("document_history").Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})

	Describe("Delete", func() {
		It("removes the row and its history together", func() {
			doc := newDoc("Q1 Report", document.StatusPending, time.Now())
			Expect(repo.CreateWithHistory(doc, &document.HistoryEntry{Action: document.ActionUploaded, Actor: "Eko Editor", Timestamp: time.Now()})).To(Succeed())

			Expect(repo.Delete(doc.ID)).To(Succeed())

			_, err := repo.GetByID(doc.ID)
			Expect(err).To(HaveOccurred())

			var count int64
			Expect(db.Table("document_history").Where("document_id = ?", doc.ID).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})
})

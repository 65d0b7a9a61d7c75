package document_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/docflow/internal"
	"github.com/frahmantamala/docflow/internal/auth"
	"github.com/frahmantamala/docflow/internal/document"
	"github.com/frahmantamala/docflow/internal/permission"
)

func TestDocumentService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DocumentService Suite")
}

// Mock repository for testing
type mockDocumentRepository struct {
	documents   map[int64]*document.Document
	history     map[int64][]*document.HistoryEntry
	createError error
	statusError error
	deleteError error
	nextID      int64
}

func newMockDocumentRepository() *mockDocumentRepository {
	return &mockDocumentRepository{
		documents: make(map[int64]*document.Document),
		history:   make(map[int64][]*document.HistoryEntry),
		nextID:    1,
	}
}

func (m *mockDocumentRepository) List(filter document.ListFilter) ([]*document.Document, int64, error) {
	matched := []*document.Document{}
	for _, doc := range m.documents {
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(doc.Name), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, doc)
	}

	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.PageSize
	if offset >= len(matched) {
		return []*document.Document{}, total, nil
	}
	end := offset + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockDocumentRepository) GetByID(id int64) (*document.Document, error) {
	doc, ok := m.documents[id]
	if !ok {
		return nil, errors.New("document not found")
	}
	return doc, nil
}

func (m *mockDocumentRepository) GetHistory(documentID int64) ([]*document.HistoryEntry, error) {
	return m.history[documentID], nil
}

func (m *mockDocumentRepository) CreateWithHistory(doc *document.Document, entry *document.HistoryEntry) error {
	if m.createError != nil {
		return m.createError
	}
	doc.ID = m.nextID
	m.nextID++
	entry.DocumentID = doc.ID
	m.documents[doc.ID] = doc
	m.history[doc.ID] = append(m.history[doc.ID], entry)
	return nil
}

func (m *mockDocumentRepository) UpdateMetadata(id int64, name, description string) (*document.Document, error) {
	doc, ok := m.documents[id]
	if !ok {
		return nil, errors.New("document not found")
	}
	doc.Name = name
	doc.Description = description
	return doc, nil
}

func (m *mockDocumentRepository) SetStatus(id int64, status string, entry *document.HistoryEntry) error {
	if m.statusError != nil {
		return m.statusError
	}
	doc, ok := m.documents[id]
	if !ok {
		return errors.New("document not found")
	}
	doc.Status = status
	m.history[id] = append(m.history[id], entry)
	return nil
}

func (m *mockDocumentRepository) Delete(id int64) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.documents, id)
	delete(m.history, id)
	return nil
}

// Mock object store for testing
type mockObjectStore struct {
	objects     map[string][]byte
	putError    error
	removeError error
}

func newMockObjectStore() *mockObjectStore {
	return &mockObjectStore{objects: make(map[string][]byte)}
}

func (m *mockObjectStore) Put(ctx context.Context, objectName string, data []byte, contentType string) error {
	if m.putError != nil {
		return m.putError
	}
	m.objects[objectName] = data
	return nil
}

func (m *mockObjectStore) Remove(ctx context.Context, objectName string) error {
	if m.removeError != nil {
		return m.removeError
	}
	delete(m.objects, objectName)
	return nil
}

var _ = Describe("DocumentService", func() {
	var (
		repo    *mockDocumentRepository
		store   *mockObjectStore
		service *document.Service
		editor  *auth.Identity
		viewer  *auth.Identity
	)

	BeforeEach(func() {
		repo = newMockDocumentRepository()
		store = newMockObjectStore()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		buildURL := func(objectName string) string {
			return "http://localhost:9000/documents/" + objectName
		}
		service = document.NewService(repo, store, buildURL, logger)

		editor = &auth.Identity{
			ID:   2,
			Name: "Eko Editor",
			Role: "Editor",
			Permissions: []string{
				permission.DocumentsList,
				permission.DocumentsUpload,
				permission.DocumentsEdit,
				permission.DocumentsApprove,
				permission.DocumentsDelete,
			},
		}
		viewer = &auth.Identity{
			ID:          3,
			Name:        "Vina Viewer",
			Role:        "Viewer",
			Permissions: []string{permission.DocumentsList},
		}
	})

	uploadDTO := func(name string) document.CreateDocumentDTO {
		return document.CreateDocumentDTO{
			Name:        name,
			FileName:    "report q1.pdf",
			ContentType: "application/pdf",
			FileData:    []byte("pdf bytes"),
		}
	}

	Describe("Create", func() {
		It("creates a pending document with exactly one Uploaded entry", func() {
			doc, err := service.Create(context.Background(), editor, uploadDTO("Q1 Report"))
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Status).To(Equal(document.StatusPending))
			Expect(doc.Uploader).NotTo(BeNil())
			Expect(doc.Uploader.Name).To(Equal("Eko Editor"))

			history := repo.history[doc.ID]
			Expect(history).To(HaveLen(1))
			Expect(history[0].Action).To(Equal(document.ActionUploaded))
			Expect(history[0].Actor).To(Equal("Eko Editor"))
		})

		It("stores the file bytes under a sanitized object name", func() {
			_, err := service.Create(context.Background(), editor, uploadDTO("Q1 Report"))
			Expect(err).NotTo(HaveOccurred())
			Expect(store.objects).To(HaveLen(1))
			for name := range store.objects {
				Expect(name).NotTo(ContainSubstring(" "))
				Expect(name).To(HaveSuffix("report_q1.pdf"))
			}
		})

		It("rejects an actor without the upload permission", func() {
			_, err := service.Create(context.Background(), viewer, uploadDTO("Q1 Report"))
			Expect(err).To(MatchError(internal.ErrForbidden))
			Expect(store.objects).To(BeEmpty())
		})

		It("rejects a missing file", func() {
			dto := uploadDTO("Q1 Report")
			dto.FileData = nil
			_, err := service.Create(context.Background(), editor, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("removes the stored object when the record write fails", func() {
			repo.createError = errors.New("db down")
			_, err := service.Create(context.Background(), editor, uploadDTO("Q1 Report"))
			Expect(err).To(HaveOccurred())
			Expect(store.objects).To(BeEmpty())
		})

		It("does not create a record when the store write fails", func() {
			store.putError = errors.New("store down")
			_, err := service.Create(context.Background(), editor, uploadDTO("Q1 Report"))
			Expect(err).To(HaveOccurred())
			Expect(repo.documents).To(BeEmpty())
		})
	})

	Describe("SetStatus", func() {
		var docID int64

		BeforeEach(func() {
			doc, err := service.Create(context.Background(), editor, uploadDTO("Q1 Report"))
			Expect(err).NotTo(HaveOccurred())
			docID = doc.ID
		})

		It("approves and appends exactly one entry with the actor and comment", func() {
			err := service.SetStatus(editor, docID, document.SetStatusDTO{Status: document.StatusApproved, Comment: "looks good"})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.documents[docID].Status).To(Equal(document.StatusApproved))

			history := repo.history[docID]
			Expect(history).To(HaveLen(2))
			last := history[len(history)-1]
			Expect(last.Action).To(Equal(document.ActionApproved))
			Expect(last.Actor).To(Equal("Eko Editor"))
			Expect(*last.Comment).To(Equal("looks good"))
		})

		It("allows re-deciding an already approved document", func() {
			Expect(service.SetStatus(editor, docID, document.SetStatusDTO{Status: document.StatusApproved})).To(Succeed())
			Expect(service.SetStatus(editor, docID, document.SetStatusDTO{Status: document.StatusRejected})).To(Succeed())
			Expect(repo.documents[docID].Status).To(Equal(document.StatusRejected))
			Expect(repo.history[docID]).To(HaveLen(3))
		})

		It("rejects a status outside approved/rejected", func() {
			err := service.SetStatus(editor, docID, document.SetStatusDTO{Status: document.StatusPending})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects an actor without the approve permission", func() {
			err := service.SetStatus(viewer, docID, document.SetStatusDTO{Status: document.StatusApproved})
			Expect(err).To(MatchError(internal.ErrForbidden))
		})

		It("fails with not found for an unknown document", func() {
			err := service.SetStatus(editor, 999, document.SetStatusDTO{Status: document.StatusApproved})
			Expect(err).To(MatchError(internal.ErrDocumentNotFound))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for i := 0; i < 15; i++ {
				_, err := service.Create(context.Background(), editor, uploadDTO("Doc"))
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("defaults to page 1 with 10 items and reports the full total", func() {
			result, err := service.List(editor, document.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Data).To(HaveLen(10))
			Expect(result.Pagination.Total).To(Equal(int64(15)))
			Expect(result.Pagination.Page).To(Equal(1))
		})

		It("returns the remainder on the second page", func() {
			result, err := service.List(editor, document.ListFilter{Page: 2, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Data).To(HaveLen(5))
			Expect(result.Pagination.Total).To(Equal(int64(15)))
		})

		It("clamps an oversized page size back to the default", func() {
			result, err := service.List(editor, document.ListFilter{PageSize: 500})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Pagination.Limit).To(Equal(10))
		})

		It("rejects an unknown status filter", func() {
			_, err := service.List(editor, document.ListFilter{Status: "draft"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidStatus))
		})

		It("rejects an actor without the list permission", func() {
			nobody := &auth.Identity{ID: 9, Name: "Nobody", Permissions: []string{}}
			_, err := service.List(nobody, document.ListFilter{})
			Expect(err).To(MatchError(internal.ErrForbidden))
		})
	})

	Describe("Delete", func() {
		var docID int64

		BeforeEach(func() {
			doc, err := service.Create(context.Background(), editor, uploadDTO("Q1 Report"))
			Expect(err).NotTo(HaveOccurred())
			docID = doc.ID
		})

		It("removes the record, its history and the backing object", func() {
			Expect(service.Delete(context.Background(), editor, docID)).To(Succeed())
			Expect(repo.documents).To(BeEmpty())
			Expect(repo.history).To(BeEmpty())
			Expect(store.objects).To(BeEmpty())
		})

		It("still succeeds when the object removal fails", func() {
			store.removeError = errors.New("store down")
			Expect(service.Delete(context.Background(), editor, docID)).To(Succeed())
			Expect(repo.documents).To(BeEmpty())
			// the orphaned object is the tolerated leftover
			Expect(store.objects).To(HaveLen(1))
		})

		It("keeps the record when the row delete fails", func() {
			repo.deleteError = errors.New("db down")
			err := service.Delete(context.Background(), editor, docID)
			Expect(err).To(HaveOccurred())
			Expect(repo.documents).To(HaveKey(docID))
			Expect(store.objects).To(HaveLen(1))
		})

		It("rejects an actor without the delete permission", func() {
			err := service.Delete(context.Background(), viewer, docID)
			Expect(err).To(MatchError(internal.ErrForbidden))
		})
	})

	Describe("Get", func() {
		It("returns the document with its history", func() {
			doc, err := service.Create(context.Background(), editor, uploadDTO("Q1 Report"))
			Expect(err).NotTo(HaveOccurred())

			detail, err := service.Get(editor, doc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.ID).To(Equal(doc.ID))
			Expect(detail.History).To(HaveLen(1))
			Expect(detail.History[0].Timestamp).To(BeTemporally("~", time.Now(), time.Minute))
		})

		It("fails with not found for an unknown id", func() {
			_, err := service.Get(editor, 404)
			Expect(err).To(MatchError(internal.ErrDocumentNotFound))
		})
	})
})

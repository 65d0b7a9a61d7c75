package document

import "errors"

// CreateDocumentDTO carries the upload metadata plus the raw file bytes
// already read out of the multipart form by the handler.
type CreateDocumentDTO struct {
	Name        string
	Description string
	FolderID    *int64
	FileName    string
	ContentType string
	FileData    []byte
}

func (dto CreateDocumentDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.FileData) == 0 {
		return errors.New("file is required")
	}
	return nil
}

type UpdateDocumentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (dto UpdateDocumentDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type SetStatusDTO struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

func (dto SetStatusDTO) Validate() error {
	if dto.Status != StatusApproved && dto.Status != StatusRejected {
		return errors.New("status must be either 'approved' or 'rejected'")
	}
	return nil
}

// ListFilter selects and pages the document listing. Page and PageSize
// are 1-based; offset = (page-1)*pageSize.
type ListFilter struct {
	Status   string
	FolderID *int64
	Search   string
	Page     int
	PageSize int
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type ListResult struct {
	Data       []*Document `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

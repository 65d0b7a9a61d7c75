package folder

import "errors"

type CreateFolderDTO struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

func (dto CreateFolderDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// UpdateFolderDTO renames and/or moves a folder. A nil ParentID moves
// the folder to the root.
type UpdateFolderDTO struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

func (dto UpdateFolderDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

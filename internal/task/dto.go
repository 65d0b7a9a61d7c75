package task

import (
	"errors"
	"time"
)

type CreateTaskDTO struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	AssigneeID  *int64     `json:"assigneeId"`
	ApproverIDs []int64    `json:"approverIds"`
	DocumentIDs []int64    `json:"documentIds"`
	DueDate     *time.Time `json:"dueDate"`
}

func (dto CreateTaskDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type AddMessageDTO struct {
	Message string `json:"message"`
}

func (dto AddMessageDTO) Validate() error {
	if dto.Message == "" {
		return errors.New("message is required")
	}
	return nil
}

type TransitionDTO struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

func (dto TransitionDTO) Validate() error {
	if !ValidStatus(dto.Status) {
		return errors.New("unknown task status")
	}
	return nil
}

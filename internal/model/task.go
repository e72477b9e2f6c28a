package model

import "time"

// TaskStatus is a kanban column. The order of AllTaskStatuses is the board order.
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "BACKLOG"
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusInReview   TaskStatus = "IN_REVIEW"
	StatusDone       TaskStatus = "DONE"
)

var AllTaskStatuses = []TaskStatus{StatusBacklog, StatusTodo, StatusInProgress, StatusInReview, StatusDone}

func (s TaskStatus) Valid() bool {
	for _, v := range AllTaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Task struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string     `json:"name" gorm:"type:varchar(256);not null"`
	WorkspaceID string     `json:"workspaceId" gorm:"type:varchar(36);index;not null"`
	ProjectID   string     `json:"projectId" gorm:"type:varchar(36);index;not null"`
	AssigneeID  string     `json:"assigneeId" gorm:"type:varchar(36);index"`
	Status      TaskStatus `json:"status" gorm:"type:varchar(16);index;not null"`
	DueDate     time.Time  `json:"dueDate"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	Position    int        `json:"position"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Populated on list and get responses
	Project  *Project `json:"project,omitempty" gorm:"-"`
	Assignee *Member  `json:"assignee,omitempty" gorm:"-"`
}

func (t *Task) DocumentID() string { return t.ID }

func (t *Task) Fields() map[string]any {
	return map[string]any{
		"id":           t.ID,
		"name":         t.Name,
		"workspace_id": t.WorkspaceID,
		"project_id":   t.ProjectID,
		"assignee_id":  t.AssigneeID,
		"status":       string(t.Status),
		"due_date":     t.DueDate,
		"position":     t.Position,
		"created_at":   t.CreatedAt,
	}
}

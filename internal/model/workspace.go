package model

import "time"

// Workspace is the tenant boundary. Every project, task and member belongs to exactly one.
type Workspace struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string    `json:"name" gorm:"type:varchar(256);not null"`
	UserID     string    `json:"userId" gorm:"type:varchar(36);index;not null"`
	ImageURL   string    `json:"imageUrl,omitempty" gorm:"type:text"`
	InviteCode string    `json:"inviteCode" gorm:"type:varchar(32);not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (w *Workspace) DocumentID() string { return w.ID }

func (w *Workspace) Fields() map[string]any {
	return map[string]any{
		"id":          w.ID,
		"name":        w.Name,
		"user_id":     w.UserID,
		"invite_code": w.InviteCode,
		"created_at":  w.CreatedAt,
	}
}

// WorkspaceInfo is the public subset shown on the join page
type WorkspaceInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

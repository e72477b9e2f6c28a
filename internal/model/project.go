package model

import "time"

type Project struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	WorkspaceID string    `json:"workspaceId" gorm:"type:varchar(36);index;not null"`
	Name        string    `json:"name" gorm:"type:varchar(256);not null"`
	ImageURL    string    `json:"imageUrl,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Project) DocumentID() string { return p.ID }

func (p *Project) Fields() map[string]any {
	return map[string]any{
		"id":           p.ID,
		"workspace_id": p.WorkspaceID,
		"name":         p.Name,
		"created_at":   p.CreatedAt,
	}
}

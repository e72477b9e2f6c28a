package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is a member's role inside a workspace
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Member links a user to a workspace with a role
type Member struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	WorkspaceID string    `json:"workspaceId" gorm:"type:varchar(36);index;not null"`
	UserID      string    `json:"userId" gorm:"type:varchar(36);index;not null"`
	Role        Role      `json:"role" gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Populated from the user record on list responses
	Name  string `json:"name,omitempty" gorm:"-"`
	Email string `json:"email,omitempty" gorm:"-"`
}

func (m *Member) DocumentID() string { return m.ID }

func (m *Member) Fields() map[string]any {
	return map[string]any{
		"id":           m.ID,
		"workspace_id": m.WorkspaceID,
		"user_id":      m.UserID,
		"role":         string(m.Role),
		"created_at":   m.CreatedAt,
	}
}

var memberNamespace = uuid.MustParse("6f1c2a56-3d0b-4e55-9a8e-0c51f2b7d9a4")

// MemberID derives the membership id from (workspace, user). A second insert for the
// same pair collides on the primary key, which keeps memberships unique on every backend.
func MemberID(workspaceID, userID string) string {
	return uuid.NewSHA1(memberNamespace, []byte(workspaceID+"/"+userID)).String()
}

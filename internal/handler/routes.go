package handler

import (
	"github.com/labstack/echo/v4"
)

// Routes mounts the auth endpoints and the authenticated /api group
func (h *Handler) Routes(e *echo.Echo, requireSession echo.MiddlewareFunc) {
	auth := e.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout, requireSession)
	auth.GET("/current", h.Current, requireSession)

	api := e.Group("/api", requireSession)

	workspaces := api.Group("/workspaces")
	workspaces.GET("", h.ListWorkspaces)
	workspaces.POST("", h.CreateWorkspace)
	workspaces.GET("/:workspaceId", h.GetWorkspace)
	workspaces.GET("/:workspaceId/info", h.GetWorkspaceInfo)
	workspaces.PATCH("/:workspaceId", h.UpdateWorkspace)
	workspaces.DELETE("/:workspaceId", h.DeleteWorkspace)
	workspaces.POST("/:workspaceId/reset-invite-code", h.ResetInviteCode)
	workspaces.POST("/:workspaceId/join", h.JoinWorkspace)
	workspaces.GET("/:workspaceId/analytics", h.WorkspaceAnalytics)

	members := api.Group("/members")
	members.GET("", h.ListMembers)
	members.DELETE("/:memberId", h.RemoveMember)
	members.PATCH("/:memberId", h.UpdateMemberRole)

	projects := api.Group("/projects")
	projects.GET("", h.ListProjects)
	projects.POST("", h.CreateProject)
	projects.GET("/:projectId", h.GetProject)
	projects.PATCH("/:projectId", h.UpdateProject)
	projects.DELETE("/:projectId", h.DeleteProject)
	projects.GET("/:projectId/analytics", h.ProjectAnalytics)

	tasks := api.Group("/tasks")
	tasks.GET("", h.ListTasks)
	tasks.POST("", h.CreateTask)
	tasks.POST("/bulk-update", h.BulkUpdateTasks)
	tasks.GET("/:taskId", h.GetTask)
	tasks.PATCH("/:taskId", h.UpdateTask)
	tasks.DELETE("/:taskId", h.DeleteTask)
}

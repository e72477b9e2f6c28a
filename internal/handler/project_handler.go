package handler

import (
	"net/http"

	"workspace-service/internal/middleware"
	"workspace-service/internal/service"

	"github.com/labstack/echo/v4"
)

type createProjectRequest struct {
	WorkspaceID string `json:"workspaceId" validate:"required"`
	Name        string `json:"name" validate:"required,max=256"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,max=2048"`
}

type updateProjectRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=256"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,max=2048"`
}

func (h *Handler) ListProjects(c echo.Context) error {
	projects, err := h.svc.Projects.List(c.Request().Context(), middleware.UserID(c), c.QueryParam("workspaceId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"documents": projects, "total": len(projects)})
}

func (h *Handler) GetProject(c echo.Context) error {
	project, err := h.svc.Projects.Get(c.Request().Context(), middleware.UserID(c), c.Param("projectId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, project)
}

func (h *Handler) CreateProject(c echo.Context) error {
	var req createProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	project, err := h.svc.Projects.Create(c.Request().Context(), middleware.UserID(c), service.CreateProjectInput{
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, project)
}

func (h *Handler) UpdateProject(c echo.Context) error {
	var req updateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	project, err := h.svc.Projects.Update(c.Request().Context(), middleware.UserID(c), c.Param("projectId"), service.UpdateProjectInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, project)
}

func (h *Handler) DeleteProject(c echo.Context) error {
	project, err := h.svc.Projects.Delete(c.Request().Context(), middleware.UserID(c), c.Param("projectId"))
	if err != nil {
		return err
	}
	return deleted(c, project.ID)
}

func (h *Handler) ProjectAnalytics(c echo.Context) error {
	a, err := h.svc.Projects.Analytics(c.Request().Context(), middleware.UserID(c), c.Param("projectId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, a)
}

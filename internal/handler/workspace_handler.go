package handler

import (
	"net/http"

	"workspace-service/internal/middleware"
	"workspace-service/internal/service"

	"github.com/labstack/echo/v4"
)

type createWorkspaceRequest struct {
	Name     string `json:"name" validate:"required,max=256"`
	ImageURL string `json:"imageUrl" validate:"omitempty,max=2048"`
}

type updateWorkspaceRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=256"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,max=2048"`
}

type joinWorkspaceRequest struct {
	Code string `json:"code" validate:"required"`
}

func (h *Handler) ListWorkspaces(c echo.Context) error {
	list, err := h.svc.Workspaces.List(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"documents": list, "total": len(list)})
}

func (h *Handler) GetWorkspace(c echo.Context) error {
	ws, err := h.svc.Workspaces.Get(c.Request().Context(), middleware.UserID(c), c.Param("workspaceId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ws)
}

func (h *Handler) GetWorkspaceInfo(c echo.Context) error {
	info, err := h.svc.Workspaces.Info(c.Request().Context(), middleware.UserID(c), c.Param("workspaceId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, info)
}

func (h *Handler) CreateWorkspace(c echo.Context) error {
	var req createWorkspaceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := h.svc.Workspaces.Create(c.Request().Context(), middleware.UserID(c), service.CreateWorkspaceInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, ws)
}

func (h *Handler) UpdateWorkspace(c echo.Context) error {
	var req updateWorkspaceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := h.svc.Workspaces.Update(c.Request().Context(), middleware.UserID(c), c.Param("workspaceId"), service.UpdateWorkspaceInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ws)
}

func (h *Handler) DeleteWorkspace(c echo.Context) error {
	id := c.Param("workspaceId")
	if err := h.svc.Workspaces.Delete(c.Request().Context(), middleware.UserID(c), id); err != nil {
		return err
	}
	return deleted(c, id)
}

func (h *Handler) ResetInviteCode(c echo.Context) error {
	ws, err := h.svc.Workspaces.ResetInviteCode(c.Request().Context(), middleware.UserID(c), c.Param("workspaceId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ws)
}

func (h *Handler) JoinWorkspace(c echo.Context) error {
	var req joinWorkspaceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := h.svc.Workspaces.Join(c.Request().Context(), middleware.UserID(c), c.Param("workspaceId"), req.Code)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, ws)
}

func (h *Handler) WorkspaceAnalytics(c echo.Context) error {
	a, err := h.svc.Workspaces.Analytics(c.Request().Context(), middleware.UserID(c), c.Param("workspaceId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, a)
}

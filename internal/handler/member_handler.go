package handler

import (
	"net/http"

	"workspace-service/internal/middleware"
	"workspace-service/internal/model"

	"github.com/labstack/echo/v4"
)

type updateMemberRequest struct {
	Role model.Role `json:"role" validate:"required,oneof=ADMIN MEMBER"`
}

func (h *Handler) ListMembers(c echo.Context) error {
	members, err := h.svc.Members.List(c.Request().Context(), middleware.UserID(c), c.QueryParam("workspaceId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"documents": members, "total": len(members)})
}

func (h *Handler) RemoveMember(c echo.Context) error {
	member, err := h.svc.Members.Remove(c.Request().Context(), middleware.UserID(c), c.Param("memberId"))
	if err != nil {
		return err
	}
	return deleted(c, member.ID)
}

func (h *Handler) UpdateMemberRole(c echo.Context) error {
	var req updateMemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	member, err := h.svc.Members.UpdateRole(c.Request().Context(), middleware.UserID(c), c.Param("memberId"), req.Role)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, member)
}

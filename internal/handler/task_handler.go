package handler

import (
	"net/http"
	"time"

	"workspace-service/internal/apperror"
	"workspace-service/internal/middleware"
	"workspace-service/internal/model"
	"workspace-service/internal/service"

	"github.com/labstack/echo/v4"
)

type createTaskRequest struct {
	Name        string           `json:"name" validate:"required,max=256"`
	Status      model.TaskStatus `json:"status" validate:"required,oneof=BACKLOG TODO IN_PROGRESS IN_REVIEW DONE"`
	WorkspaceID string           `json:"workspaceId" validate:"required"`
	ProjectID   string           `json:"projectId" validate:"required"`
	AssigneeID  string           `json:"assigneeId" validate:"required"`
	DueDate     time.Time        `json:"dueDate" validate:"required"`
	Description string           `json:"description"`
}

type updateTaskRequest struct {
	Name        *string           `json:"name" validate:"omitempty,min=1,max=256"`
	Status      *model.TaskStatus `json:"status" validate:"omitempty,oneof=BACKLOG TODO IN_PROGRESS IN_REVIEW DONE"`
	ProjectID   *string           `json:"projectId" validate:"omitempty,min=1"`
	AssigneeID  *string           `json:"assigneeId" validate:"omitempty,min=1"`
	DueDate     *time.Time        `json:"dueDate"`
	Description *string           `json:"description"`
}

type taskPositionRequest struct {
	ID       string           `json:"id" validate:"required"`
	Status   model.TaskStatus `json:"status" validate:"required,oneof=BACKLOG TODO IN_PROGRESS IN_REVIEW DONE"`
	Position int              `json:"position" validate:"min=1000,max=1000000"`
}

type bulkUpdateRequest struct {
	Tasks []taskPositionRequest `json:"tasks" validate:"required,min=1,dive"`
}

// parseDay accepts a full timestamp or a bare date
func parseDay(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperror.Validation("dueDate must be a date")
}

func (h *Handler) ListTasks(c echo.Context) error {
	due, err := parseDay(c.QueryParam("dueDate"))
	if err != nil {
		return err
	}
	tasks, err := h.svc.Tasks.List(c.Request().Context(), middleware.UserID(c), service.TaskFilter{
		WorkspaceID: c.QueryParam("workspaceId"),
		ProjectID:   c.QueryParam("projectId"),
		AssigneeID:  c.QueryParam("assigneeId"),
		Status:      model.TaskStatus(c.QueryParam("status")),
		DueDate:     due,
		Search:      c.QueryParam("search"),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"documents": tasks, "total": len(tasks)})
}

func (h *Handler) GetTask(c echo.Context) error {
	task, err := h.svc.Tasks.Get(c.Request().Context(), middleware.UserID(c), c.Param("taskId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, task)
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.svc.Tasks.Create(c.Request().Context(), middleware.UserID(c), service.CreateTaskInput{
		Name:        req.Name,
		Status:      req.Status,
		WorkspaceID: req.WorkspaceID,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	var req updateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.svc.Tasks.Update(c.Request().Context(), middleware.UserID(c), c.Param("taskId"), service.UpdateTaskInput{
		Name:        req.Name,
		Status:      req.Status,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	task, err := h.svc.Tasks.Delete(c.Request().Context(), middleware.UserID(c), c.Param("taskId"))
	if err != nil {
		return err
	}
	return deleted(c, task.ID)
}

func (h *Handler) BulkUpdateTasks(c echo.Context) error {
	var req bulkUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	moves := make([]service.TaskPosition, len(req.Tasks))
	for i, t := range req.Tasks {
		moves[i] = service.TaskPosition{ID: t.ID, Status: t.Status, Position: t.Position}
	}
	tasks, err := h.svc.Tasks.BulkUpdate(c.Request().Context(), middleware.UserID(c), moves)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, tasks)
}

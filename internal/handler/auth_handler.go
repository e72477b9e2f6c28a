package handler

import (
	"net/http"
	"time"

	"workspace-service/internal/middleware"
	"workspace-service/internal/service"
	"workspace-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=256"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.svc.Auth.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return h.sessionResponse(c, http.StatusCreated, res)
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.svc.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.sessionResponse(c, http.StatusOK, res)
}

func (h *Handler) sessionResponse(c echo.Context, status int, res *service.AuthResult) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    res.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.IsTLS(),
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(jwtutil.Expiration()),
	})
	return respond(c, status, echo.Map{
		"token": res.Token,
		"user":  res.User,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.svc.Auth.Logout(c.Request().Context(), middleware.SessionID(c)); err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return respond(c, http.StatusOK, echo.Map{"success": true})
}

func (h *Handler) Current(c echo.Context) error {
	user, err := h.svc.Auth.Current(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobsearch-backend/internal/shared/auth"
	"jobsearch-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc       *Service
	JWTSecret []byte
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, jwtSecret []byte) *Handler {
	return &Handler{Svc: svc, JWTSecret: jwtSecret}
}

// RegisterRoutes attaches account routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusConflict, "email_taken", "email already registered", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register", nil)
		}
		return
	}

	h.respondWithToken(c, http.StatusCreated, u)
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	u, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			respond.Error(c, http.StatusUnauthorized, "bad_credentials", "invalid email or password", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to log in", nil)
		return
	}

	h.respondWithToken(c, http.StatusOK, u)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, u User) {
	token, err := auth.Sign(u.ID, u.Email, u.Name, h.JWTSecret)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	respond.JSON(c, status, gin.H{
		"token": token,
		"user":  userResponse{ID: u.ID, Email: u.Email, Name: u.Name},
	})
}

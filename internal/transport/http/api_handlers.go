package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/GautamAgrawal1/lets-connect/internal/auth"
	"github.com/GautamAgrawal1/lets-connect/internal/history"
)

// APIHandlers provides HTTP handlers for the user REST API.
type APIHandlers struct {
	authService    *auth.Service
	historyService *history.Service
	log            *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(authService *auth.Service, historyService *history.Service, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		authService:    authService,
		historyService: historyService,
		log:            logger,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AddActivityRequest records a meeting in the caller's history.
type AddActivityRequest struct {
	Token       string `json:"token"`
	MeetingCode string `json:"meetingCode" binding:"required"`
}

// AuthResponse represents the authentication response body.
type AuthResponse struct {
	Token string `json:"token"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ActivityResponse acknowledges a recorded meeting.
type ActivityResponse struct {
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Register handles user registration.
// POST /api/v1/users/register
func (h *APIHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "name, username and password are required"})
		return
	}

	_, err := h.authService.Register(c.Request.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			c.JSON(http.StatusConflict, ErrorResponse{Message: "User already exists"})
		case errors.Is(err, auth.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "username must be 3 to 32 characters"})
		case errors.Is(err, auth.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "password must be at least 6 characters"})
		case errors.Is(err, auth.ErrInvalidName):
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "name is required"})
		default:
			h.log.Error().Err(err).Str("username", req.Username).Msg("failed to register user")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Something went wrong"})
		}
		return
	}

	h.log.Info().Str("username", req.Username).Msg("user registered")
	c.JSON(http.StatusCreated, MessageResponse{Message: "User Registered"})
}

// Login handles user login.
// POST /api/v1/users/login
func (h *APIHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Please provide username & password"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid credentials"})
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("failed to login user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Something went wrong"})
		return
	}

	h.log.Info().Str("username", req.Username).Msg("user logged in")
	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// AddToActivity records a meeting code for the token's user.
// POST /api/v1/users/add_to_activity
func (h *APIHandlers) AddToActivity(c *gin.Context) {
	var req AddActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "meetingCode is required"})
		return
	}
	token := req.Token
	if token == "" {
		token = bearerToken(c)
	}

	entry, err := h.historyService.AddToHistory(c.Request.Context(), token, req.MeetingCode)
	if err != nil {
		h.historyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ActivityResponse{Message: "Added code to history", Date: entry.Date})
}

// GetAllActivity lists the token's meeting history, newest first.
// GET /api/v1/users/get_all_activity?token=...
func (h *APIHandlers) GetAllActivity(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = bearerToken(c)
	}

	entries, err := h.historyService.GetHistory(c.Request.Context(), token)
	if err != nil {
		h.historyError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *APIHandlers) historyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, history.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid token"})
	case errors.Is(err, history.ErrInvalidMeetingCode):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid meeting code"})
	default:
		h.log.Error().Err(err).Msg("meeting history request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Something went wrong"})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/GautamAgrawal1/lets-connect/internal/core"
)

// RoomHandlers exposes a read-only view of live relay rooms.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// RoomResponse represents a live room in API responses.
type RoomResponse struct {
	Room    string   `json:"room"`
	Members []string `json:"members"`
}

// GetRoom returns the roster of a live room.
// GET /api/v1/rooms/:room
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	room := c.Param("room")

	roster, ok := h.hub.Roster(c.Request.Context(), room)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "room not found"})
		return
	}

	c.JSON(http.StatusOK, RoomResponse{Room: room, Members: roster})
}

// Stats returns live connection and room counts.
// GET /api/v1/stats
func (h *RoomHandlers) Stats(c *gin.Context) {
	stats, err := h.hub.Stats(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("stats unavailable")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "relay unavailable"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

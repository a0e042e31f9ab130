package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"project-delivery-api/internal/realtime"
	"project-delivery-api/internal/response"
)

// RealtimeHandler upgrades websocket subscriptions scoped to one project
type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(hub *realtime.Hub, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin access is enforced by the CORS middleware upstream
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Subscribe godoc
// @Summary      Subscribe to project events
// @Description  Upgrades to a websocket delivering status, progress, approval,
// @Description  comment and checklist events for one project
// @Tags         realtime
// @Param        projectId path string true "Project ID (UUID)"
// @Success      101 {string} string "Switching protocols"
// @Failure      400 {object} response.ErrorResponse "Invalid project ID"
// @Failure      401 {object} response.ErrorResponse "Unauthorized"
// @Router       /projects/{projectId}/events [get]
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	projectID, ok := pathUUID(c, "projectId")
	if !ok {
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "User ID not found in context")
		return
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid user ID format")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed",
			zap.String("projectId", projectID.String()),
			zap.Error(err),
		)
		return
	}

	h.hub.Register(conn, projectID, userUUID)
}

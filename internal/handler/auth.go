package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"project-delivery-api/internal/response"
	"project-delivery-api/internal/service"
)

// requestContext returns the request context with the authenticated user ID
// attached, so the service layer can resolve the acting user. Writes the
// error response itself when authentication data is missing.
func requestContext(c *gin.Context) (context.Context, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "User ID not found in context")
		return nil, false
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid user ID format")
		return nil, false
	}
	return service.WithActor(c.Request.Context(), userUUID), true
}

// pathUUID parses a UUID path parameter, writing the error response on failure
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

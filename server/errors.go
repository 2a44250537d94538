package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chat_artifact_publisher/artifact"
	"chat_artifact_publisher/chat"
	"chat_artifact_publisher/generator"
	"chat_artifact_publisher/publisher"
	"chat_artifact_publisher/store"
)

var invalidInput = []error{
	chat.ErrInvalidRole,
	chat.ErrEmptyContent,
	chat.ErrEmptyTitle,
	artifact.ErrEmptyThread,
	artifact.ErrEmptyTitle,
	artifact.ErrEmptyContent,
	artifact.ErrEmptyStatus,
	artifact.ErrEmptyComment,
}

func statusFor(err error) int {
	var valErr *publisher.ValidationError
	var pubErr *publisher.PublishError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrNotDraft):
		return http.StatusConflict
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.As(err, &pubErr), generator.IsGenerationError(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	for _, target := range invalidInput {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Server errors are logged
// and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusGatewayTimeout {
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// idParam parses the :id path parameter, answering 400 when it is not a UUID.
func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// threadQuery reads the optional thread_id query filter.
func threadQuery(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("thread_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid thread_id")
		return nil, false
	}
	return &id, true
}

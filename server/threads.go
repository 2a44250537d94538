package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat_artifact_publisher/store"
)

func (s *Server) createThread(c *gin.Context) {
	thread, err := s.chats.CreateThread(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, thread)
}

func (s *Server) listThreads(c *gin.Context) {
	threads, err := s.chats.ListThreads(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"threads": threads})
}

func (s *Server) getThread(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	thread, err := s.chats.GetThread(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

type renameThreadRequest struct {
	Title string `json:"title" binding:"required"`
}

func (s *Server) renameThread(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req renameThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: title is required")
		return
	}
	thread, err := s.chats.RenameThread(c.Request.Context(), id, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (s *Server) deleteThread(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.chats.DeleteThread(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listMessages(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	msgs, err := s.chats.ListMessages(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type createMessageRequest struct {
	Content string            `json:"content" binding:"required"`
	Role    store.MessageRole `json:"role"`
}

// createMessage stores the message and, for user messages, waits for the
// assistant reply before answering.
func (s *Server) createMessage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: content is required")
		return
	}
	ctx, cancel := s.generationContext(c)
	defer cancel()
	msg, err := s.chats.CreateMessage(ctx, id, req.Content, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

type generateTitleRequest struct {
	Content string `json:"content" binding:"required"`
}

func (s *Server) generateTitle(c *gin.Context) {
	var req generateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: content is required")
		return
	}
	ctx, cancel := s.generationContext(c)
	defer cancel()
	title, err := s.chats.GenerateTitle(ctx, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title})
}

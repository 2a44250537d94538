package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chat_artifact_publisher/generator"
	"chat_artifact_publisher/store"
)

func (s *Server) generateArticle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx, cancel := s.generationContext(c)
	defer cancel()
	article, err := s.artifacts.GenerateArticle(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

func (s *Server) latestArticle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	article, err := s.artifacts.LatestArticle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (s *Server) listArticles(c *gin.Context) {
	threadID, ok := threadQuery(c)
	if !ok {
		return
	}
	articles, err := s.artifacts.ListArticles(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

func (s *Server) getArticle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	article, err := s.artifacts.GetArticle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

type documentPatchRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (r documentPatchRequest) patch() store.DocumentPatch {
	return store.DocumentPatch{Title: r.Title, Content: r.Content}
}

func (s *Server) updateArticle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req documentPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	article, err := s.artifacts.UpdateArticle(c.Request.Context(), id, req.patch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

type reviseRequest struct {
	Comment string `json:"comment" binding:"required"`
}

func (s *Server) reviseArticle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req reviseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: comment is required")
		return
	}
	ctx, cancel := s.generationContext(c)
	defer cancel()
	article, err := s.artifacts.ReviseArticle(ctx, id, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

type publishRequest struct {
	Tags []generator.Tag `json:"tags"`
}

func (s *Server) publishArticle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if s.publisher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "publishing is not configured"})
		return
	}
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	ctx, cancel := s.generationContext(c)
	defer cancel()
	res, err := s.publisher.Publish(ctx, id, req.Tags)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type generateTagsRequest struct {
	Title   string `json:"title"`
	Content string `json:"content" binding:"required"`
}

func (s *Server) generateTags(c *gin.Context) {
	var req generateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: content is required")
		return
	}
	ctx, cancel := s.generationContext(c)
	defer cancel()
	c.JSON(http.StatusOK, gin.H{"tags": s.artifacts.GenerateTags(ctx, req.Title, req.Content)})
}

func (s *Server) generateSlide(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx, cancel := s.generationContext(c)
	defer cancel()
	slide, err := s.artifacts.GenerateSlide(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slide)
}

func (s *Server) latestSlide(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	slide, err := s.artifacts.LatestSlide(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slide)
}

func (s *Server) listSlides(c *gin.Context) {
	threadID, ok := threadQuery(c)
	if !ok {
		return
	}
	slides, err := s.artifacts.ListSlides(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slides": slides})
}

type createSlideRequest struct {
	ThreadID *uuid.UUID `json:"thread_id"`
	Title    string     `json:"title" binding:"required"`
	Content  string     `json:"content" binding:"required"`
}

func (s *Server) createSlide(c *gin.Context) {
	var req createSlideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: title and content are required")
		return
	}
	slide, err := s.artifacts.CreateSlide(c.Request.Context(), req.ThreadID, req.Title, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slide)
}

func (s *Server) getSlide(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	slide, err := s.artifacts.GetSlide(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slide)
}

func (s *Server) updateSlide(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req documentPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	slide, err := s.artifacts.UpdateSlide(c.Request.Context(), id, req.patch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, slide)
}

func (s *Server) deleteSlide(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.artifacts.DeleteSlide(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) generateSummary(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx, cancel := s.generationContext(c)
	defer cancel()
	summary, err := s.artifacts.GenerateSummary(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

type createSummaryRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (s *Server) createSummary(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req createSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: title and content are required")
		return
	}
	summary, err := s.artifacts.CreateSummary(c.Request.Context(), id, req.Title, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

func (s *Server) listSummaries(c *gin.Context) {
	threadID, ok := threadQuery(c)
	if !ok {
		return
	}
	summaries, err := s.artifacts.ListSummaries(c.Request.Context(), threadID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}

func (s *Server) getSummary(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	summary, err := s.artifacts.GetSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type updateSummaryRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Status    *string `json:"status"`
	NotionURL *string `json:"notion_url"`
}

func (s *Server) updateSummary(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req updateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	summary, err := s.artifacts.UpdateSummary(c.Request.Context(), id, store.SummaryPatch{
		Title:     req.Title,
		Content:   req.Content,
		Status:    req.Status,
		NotionURL: req.NotionURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

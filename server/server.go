package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chat_artifact_publisher/artifact"
	"chat_artifact_publisher/chat"
	"chat_artifact_publisher/publisher"
)

const defaultGenerationTimeout = 60 * time.Second

// Options tune the HTTP surface. Zero values get defaults.
type Options struct {
	// GenerationTimeout bounds every request that calls the model.
	GenerationTimeout time.Duration
	// OTelServiceName enables request tracing when set.
	OTelServiceName string
}

type Server struct {
	chats     *chat.Service
	artifacts *artifact.Manager
	publisher *publisher.Orchestrator
	opts      Options
}

// New builds the server. pub may be nil when no platform is configured; the
// publish endpoint then answers 503.
func New(chats *chat.Service, artifacts *artifact.Manager, pub *publisher.Orchestrator, opts Options) (*Server, error) {
	if chats == nil || artifacts == nil {
		return nil, errors.New("chat service and artifact manager are required")
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = defaultGenerationTimeout
	}
	return &Server{chats: chats, artifacts: artifacts, publisher: pub, opts: opts}, nil
}

func (s *Server) Routes() http.Handler {
	router := gin.New()
	// OTel span first so recovery and request logs carry the trace.
	if s.opts.OTelServiceName != "" {
		router.Use(otelgin.Middleware(s.opts.OTelServiceName))
	}
	router.Use(Recovery())
	router.Use(Logger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	threads := api.Group("/threads")
	threads.POST("", s.createThread)
	threads.GET("", s.listThreads)
	threads.GET("/:id", s.getThread)
	threads.PATCH("/:id", s.renameThread)
	threads.DELETE("/:id", s.deleteThread)
	threads.GET("/:id/messages", s.listMessages)
	threads.POST("/:id/messages", s.createMessage)
	threads.POST("/:id/article", s.generateArticle)
	threads.GET("/:id/article", s.latestArticle)
	threads.POST("/:id/slide", s.generateSlide)
	threads.GET("/:id/slide", s.latestSlide)
	threads.POST("/:id/summary", s.generateSummary)
	threads.POST("/:id/summaries", s.createSummary)

	articles := api.Group("/articles")
	articles.GET("", s.listArticles)
	articles.GET("/:id", s.getArticle)
	articles.PATCH("/:id", s.updateArticle)
	articles.POST("/:id/revise", s.reviseArticle)
	articles.POST("/:id/publish", s.publishArticle)

	slides := api.Group("/slides")
	slides.GET("", s.listSlides)
	slides.POST("", s.createSlide)
	slides.GET("/:id", s.getSlide)
	slides.PATCH("/:id", s.updateSlide)
	slides.DELETE("/:id", s.deleteSlide)

	summaries := api.Group("/summaries")
	summaries.GET("", s.listSummaries)
	summaries.GET("/:id", s.getSummary)
	summaries.PATCH("/:id", s.updateSummary)

	api.POST("/tags", s.generateTags)
	api.POST("/titles", s.generateTitle)

	return router
}

// generationContext bounds a model call by the configured timeout.
func (s *Server) generationContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.opts.GenerationTimeout)
}

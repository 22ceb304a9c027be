// Package server exposes the canvas document API over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/auth"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/suggest"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultHeartbeatInterval = 25 * time.Second

var (
	errMissingSessionValidator = errors.New("session validator dependency required")
	errMissingOwnerResolver    = errors.New("owner resolver dependency required")
	errMissingDocumentStore    = errors.New("document store dependency required")
	errMissingSuggester        = errors.New("suggester dependency required")
)

// SessionValidator authenticates a request.
type SessionValidator interface {
	Request(r *http.Request) (auth.Claims, error)
}

// OwnerResolver maps validated claims to the owner templates are stored under.
type OwnerResolver interface {
	Resolve(ctx context.Context, claims auth.Claims) (documents.OwnerID, error)
}

// DocumentStore persists canvas documents. Save and duplicate read the owner
// from the context.
type DocumentStore interface {
	LoadDocument(ctx context.Context, id string) (canvas.Document, error)
	SaveDocument(ctx context.Context, id string, document canvas.Document) (string, error)
	DuplicateDocument(ctx context.Context, id string) (string, error)
	ListDocuments(ctx context.Context) ([]documents.Summary, error)
}

// Suggester proposes fonts and palettes.
type Suggester interface {
	Suggest(ctx context.Context, request suggest.Request) (suggest.Suggestions, error)
}

type Dependencies struct {
	Sessions          SessionValidator
	Owners            OwnerResolver
	Documents         DocumentStore
	Suggester         Suggester
	Events            *DocumentEvents
	AllowedOrigins    []string
	HeartbeatInterval time.Duration
	Logger            *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Sessions == nil {
		return nil, errMissingSessionValidator
	}
	if deps.Owners == nil {
		return nil, errMissingOwnerResolver
	}
	if deps.Documents == nil {
		return nil, errMissingDocumentStore
	}
	if deps.Suggester == nil {
		return nil, errMissingSuggester
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	events := deps.Events
	if events == nil {
		events = NewDocumentEvents()
	}
	heartbeat := deps.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatInterval
	}

	handler := &httpHandler{
		sessions:  deps.Sessions,
		owners:    deps.Owners,
		documents: deps.Documents,
		suggester: deps.Suggester,
		events:    events,
		heartbeat: heartbeat,
		logger:    logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(deps.AllowedOrigins))

	router.GET("/healthz", handler.handleHealth)
	router.POST("/render", handler.handleRender)
	router.POST("/suggestions", handler.handleSuggestions)
	router.GET("/documents/:id", handler.handleLoadDocument)
	router.GET("/documents/:id/export", handler.handleExportDocument)

	protected := router.Group("/")
	protected.Use(handler.requireOwner)
	protected.GET("/documents", handler.handleListDocuments)
	protected.POST("/documents", handler.handleCreateDocument)
	protected.PUT("/documents/:id", handler.handleUpdateDocument)
	protected.POST("/documents/:id/duplicate", handler.handleDuplicateDocument)
	protected.GET("/documents/events", handler.handleDocumentEvents)

	return router, nil
}

// corsMiddleware allows credentialed requests from the configured origins only.
// Without configured origins every origin is allowed but cookies are not.
func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-TAuth-Tenant"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	return cors.New(config)
}

type httpHandler struct {
	sessions  SessionValidator
	owners    OwnerResolver
	documents DocumentStore
	suggester Suggester
	events    *DocumentEvents
	heartbeat time.Duration
	logger    *zap.Logger
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

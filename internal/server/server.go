package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leowang/graph-approvals/internal/attachment"
	"github.com/leowang/graph-approvals/internal/models"
	"github.com/leowang/graph-approvals/internal/repository"
)

// ApprovalsService is the approval API surface the handlers call.
// Satisfied by *graph.ApprovalsAPI.
type ApprovalsService interface {
	List(ctx context.Context) ([]models.ApprovalItem, error)
	Get(ctx context.Context, approvalID string) (*models.ApprovalItem, error)
	Create(ctx context.Context, approval *models.NewApproval) (*models.ApprovalItem, error)
	Cancel(ctx context.Context, approvalID string) error
	ListResponses(ctx context.Context, approvalID string) ([]models.ApprovalResponse, error)
}

// ResponderService submits decisions after precondition checks.
// Satisfied by *classifier.Responder.
type ResponderService interface {
	Respond(ctx context.Context, approvalID, currentUserID, decision, comment string) (*models.ApprovalItem, error)
}

// MetadataStore is the metadata document adapter. Satisfied by
// *repository.MetadataRepository.
type MetadataStore interface {
	Save(meta *models.ApprovalMetadata) (*models.ApprovalMetadata, error)
	Get(approvalID string) (*models.ApprovalMetadata, error)
	List(filter repository.ListFilter) ([]*models.ApprovalMetadata, error)
	Delete(approvalID string) (bool, error)
	Patch(approvalID string, fields map[string]json.RawMessage) (*models.ApprovalMetadata, error)
}

// AttachmentUploader uploads and shares attachment batches. Satisfied by
// *attachment.Uploader.
type AttachmentUploader interface {
	UploadAndShare(ctx context.Context, token string, files []attachment.File, approverEmails []string, approvalID string) ([]models.Attachment, error)
}

// Config holds handler-level settings.
type Config struct {
	AllowedOrigin string
	MaxFileSize   int64
	MaxFiles      int
}

// Handlers contains all HTTP request handlers.
type Handlers struct {
	approvals ApprovalsService
	responder ResponderService
	metadata  MetadataStore
	uploader  AttachmentUploader
	cfg       Config
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	approvals ApprovalsService,
	responder ResponderService,
	metadata MetadataStore,
	uploader AttachmentUploader,
	cfg Config,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		approvals: approvals,
		responder: responder,
		metadata:  metadata,
		uploader:  uploader,
		cfg:       cfg,
		logger:    logger,
	}
}

// NewRouter builds the gin engine with the full API surface.
func NewRouter(h *Handlers, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware(h.cfg.AllowedOrigin))

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		approvals := api.Group("/approvals")
		{
			approvals.GET("", h.ListApprovals)
			approvals.POST("", h.CreateApproval)
			approvals.GET("/:id", h.GetApproval)
			approvals.POST("/:id/respond", h.RespondToApproval)
			approvals.POST("/:id/cancel", h.CancelApproval)
			approvals.GET("/:id/responses", h.ListApprovalResponses)
		}

		metadata := api.Group("/metadata")
		{
			metadata.POST("", h.SaveMetadata)
			metadata.GET("", h.ListMetadata)
			metadata.GET("/:approvalId", h.GetMetadata)
			metadata.PATCH("/:approvalId", h.PatchMetadata)
			metadata.DELETE("/:approvalId", h.DeleteMetadata)
			metadata.POST("/:approvalId/attachments", h.UploadAttachments)
		}
	}

	return router
}

// HealthCheck handles GET /api/health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "Approvals API Backend is running",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// requestIDMiddleware tags each request with an id for log correlation.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// corsMiddleware restricts cross-origin access to the configured frontend.
func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Package router wires handlers, middleware and dependencies into the HTTP
// routing tree.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-delivery-api/internal/cache"
	"project-delivery-api/internal/client"
	"project-delivery-api/internal/config"
	"project-delivery-api/internal/handler"
	"project-delivery-api/internal/metrics"
	"project-delivery-api/internal/middleware"
	"project-delivery-api/internal/realtime"
	"project-delivery-api/internal/repository"
	"project-delivery-api/internal/service"
)

// Config carries every dependency the routing tree needs
type Config struct {
	DB            *gorm.DB
	Logger        *zap.Logger
	JWTSecret     string
	BasePath      string
	Metrics       *metrics.Metrics
	S3Client      client.S3ClientInterface
	S3Config      config.S3Config
	ProgressCache cache.ProgressCache
	Hub           *realtime.Hub
	Notifier      client.NotificationClient
}

// Setup builds the gin engine with all routes registered
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS())
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = client.NewNoOpNotificationClient()
	}

	// Repositories
	phaseRepo := repository.NewPhaseRepository(cfg.DB)
	subPhaseRepo := repository.NewSubPhaseRepository(cfg.DB)
	statusLogRepo := repository.NewStatusLogRepository(cfg.DB)
	checklistRepo := repository.NewChecklistRepository(cfg.DB)
	approvalRepo := repository.NewApprovalRepository(cfg.DB)
	commentRepo := repository.NewCommentRepository(cfg.DB)
	attachmentRepo := repository.NewAttachmentRepository(cfg.DB)

	// Services
	phaseService := service.NewPhaseService(phaseRepo, statusLogRepo, cfg.ProgressCache, cfg.Hub, notifier, cfg.Metrics, cfg.Logger)
	subPhaseService := service.NewSubPhaseService(subPhaseRepo, phaseRepo, statusLogRepo, attachmentRepo, cfg.ProgressCache, cfg.Hub, notifier, cfg.Metrics, cfg.Logger)
	checklistService := service.NewChecklistService(checklistRepo, subPhaseRepo, phaseRepo, cfg.ProgressCache, cfg.Hub, cfg.Metrics, cfg.Logger)
	approvalService := service.NewApprovalService(approvalRepo, subPhaseRepo, phaseRepo, cfg.Hub, notifier, cfg.Metrics, cfg.Logger)
	commentService := service.NewCommentService(commentRepo, subPhaseRepo, phaseRepo, cfg.Hub, notifier, cfg.Metrics, cfg.Logger)
	attachmentService := service.NewAttachmentService(attachmentRepo, subPhaseRepo, phaseRepo, cfg.S3Client, cfg.S3Config, cfg.Metrics, cfg.Logger)

	// Handlers
	phaseHandler := handler.NewPhaseHandler(phaseService)
	subPhaseHandler := handler.NewSubPhaseHandler(subPhaseService)
	checklistHandler := handler.NewChecklistHandler(checklistService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	commentHandler := handler.NewCommentHandler(commentService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)

	healthCheck := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "delivery-service"})
	}

	// Operational endpoints stay outside the authenticated group
	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerRoutes := func(api *gin.RouterGroup) {
		// Duplicates of the root operational endpoints, skipped when the
		// group is the root itself
		if api.BasePath() != "/" {
			api.GET("/health", healthCheck)
			api.GET("/metrics", gin.WrapH(promhttp.Handler()))
		}
		api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(cfg.JWTSecret))
		{
			authenticated.GET("/projects/:projectId/phases", phaseHandler.GetProjectPhases)
			authenticated.GET("/phases/:phaseId", phaseHandler.GetPhase)
			authenticated.PATCH("/phases/:phaseId", phaseHandler.UpdatePhase)

			authenticated.GET("/sub-phases/:subPhaseId", subPhaseHandler.GetSubPhase)
			authenticated.PATCH("/sub-phases/:subPhaseId", subPhaseHandler.UpdateSubPhase)
			authenticated.POST("/sub-phases/:subPhaseId/start", subPhaseHandler.StartSubPhase)
			authenticated.POST("/sub-phases/:subPhaseId/hold", subPhaseHandler.HoldSubPhase)
			authenticated.POST("/sub-phases/:subPhaseId/resume", subPhaseHandler.ResumeSubPhase)
			authenticated.POST("/sub-phases/:subPhaseId/complete", subPhaseHandler.CompleteSubPhase)
			authenticated.POST("/sub-phases/:subPhaseId/skip", subPhaseHandler.SkipSubPhase)
			authenticated.GET("/sub-phases/:subPhaseId/status-logs", subPhaseHandler.GetStatusLogs)

			authenticated.PATCH("/sub-phases/:subPhaseId/checklist/:itemId/toggle", checklistHandler.ToggleItem)

			authenticated.POST("/sub-phases/:subPhaseId/approvals", approvalHandler.RequestApproval)
			authenticated.PATCH("/approvals/:approvalId", approvalHandler.RespondApproval)

			authenticated.POST("/sub-phases/:subPhaseId/comments", commentHandler.CreateComment)
			authenticated.GET("/sub-phases/:subPhaseId/comments", commentHandler.GetComments)

			authenticated.POST("/sub-phases/:subPhaseId/attachments/presigned-url", attachmentHandler.GeneratePresignedURL)
			authenticated.POST("/sub-phases/:subPhaseId/attachments/confirm", attachmentHandler.ConfirmAttachments)
			authenticated.DELETE("/attachments/:attachmentId", attachmentHandler.DeleteAttachment)
		}

		if cfg.Hub != nil {
			realtimeHandler := handler.NewRealtimeHandler(cfg.Hub, cfg.Logger)
			ws := api.Group("")
			ws.Use(middleware.Auth(cfg.JWTSecret))
			ws.GET("/projects/:projectId/events", realtimeHandler.Subscribe)
		}
	}

	registerRoutes(r.Group(cfg.BasePath))

	return r
}

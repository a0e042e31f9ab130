package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-delivery-api/internal/client"
	"project-delivery-api/internal/domain"
	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/metrics"
	"project-delivery-api/internal/realtime"
	"project-delivery-api/internal/repository"
	"project-delivery-api/internal/response"
)

// CommentService defines the interface for the append-only comment stream on
// sub-phases. There are no update or delete operations.
type CommentService interface {
	CreateComment(ctx context.Context, subPhaseID uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	GetComments(ctx context.Context, subPhaseID uuid.UUID) ([]dto.CommentResponse, error)
}

// commentServiceImpl is the implementation of CommentService
type commentServiceImpl struct {
	commentRepo  repository.CommentRepository
	subPhaseRepo repository.SubPhaseRepository
	phaseRepo    repository.PhaseRepository
	hub          *realtime.Hub
	notifier     client.NotificationClient
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewCommentService creates a new instance of CommentService
func NewCommentService(
	commentRepo repository.CommentRepository,
	subPhaseRepo repository.SubPhaseRepository,
	phaseRepo repository.PhaseRepository,
	hub *realtime.Hub,
	notifier client.NotificationClient,
	m *metrics.Metrics,
	logger *zap.Logger,
) CommentService {
	return &commentServiceImpl{
		commentRepo:  commentRepo,
		subPhaseRepo: subPhaseRepo,
		phaseRepo:    phaseRepo,
		hub:          hub,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
	}
}

// CreateComment appends a comment to a sub-phase
func (s *commentServiceImpl) CreateComment(ctx context.Context, subPhaseID uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sp, err := s.subPhaseRepo.FindByID(ctx, subPhaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Sub-phase not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load sub-phase", err.Error())
	}

	commentType := domain.CommentTypeGeneral
	if req.CommentType != "" {
		commentType = domain.CommentType(req.CommentType)
	}

	comment := &domain.Comment{
		SubPhaseID:  subPhaseID,
		CreatedBy:   actor,
		Content:     req.Content,
		CommentType: commentType,
		IsInternal:  req.IsInternal,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create comment", err.Error())
	}

	s.metrics.IncrementCommentCreated()
	s.broadcast(ctx, sp, comment)
	s.notify(ctx, actor, sp, comment)

	resp := dto.ToCommentResponse(comment)
	return &resp, nil
}

// GetComments returns the comment stream of a sub-phase, oldest first
func (s *commentServiceImpl) GetComments(ctx context.Context, subPhaseID uuid.UUID) ([]dto.CommentResponse, error) {
	comments, err := s.commentRepo.FindBySubPhaseID(ctx, subPhaseID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load comments", err.Error())
	}

	result := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		result = append(result, dto.ToCommentResponse(c))
	}
	return result, nil
}

func (s *commentServiceImpl) broadcast(ctx context.Context, sp *domain.SubPhase, comment *domain.Comment) {
	if s.hub == nil {
		return
	}
	phase, err := s.phaseRepo.FindByID(ctx, sp.PhaseID)
	if err != nil {
		return
	}
	s.hub.Broadcast(phase.ProjectID, realtime.Event{
		Type:       realtime.EventCommentAdded,
		EntityType: string(domain.LogEntityTypeSubPhase),
		EntityID:   sp.ID.String(),
		Payload: map[string]interface{}{
			"commentId":   comment.ID.String(),
			"commentType": string(comment.CommentType),
		},
	})
}

func (s *commentServiceImpl) notify(ctx context.Context, actor uuid.UUID, sp *domain.SubPhase, comment *domain.Comment) {
	if s.notifier == nil || sp.AssignedTo == nil || *sp.AssignedTo == actor {
		return
	}
	err := s.notifier.SendNotification(ctx, client.NotificationEvent{
		Type:         client.NotificationCommentAdded,
		ActorID:      actor,
		TargetUserID: *sp.AssignedTo,
		ResourceType: "comment",
		ResourceID:   comment.ID,
		ResourceName: sp.Name,
	})
	if err != nil {
		s.logger.Warn("Failed to send comment notification", zap.Error(err))
	}
}

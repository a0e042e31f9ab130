package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-delivery-api/internal/client"
	"project-delivery-api/internal/config"
	"project-delivery-api/internal/domain"
	"project-delivery-api/internal/dto"
	"project-delivery-api/internal/metrics"
	"project-delivery-api/internal/repository"
	"project-delivery-api/internal/response"
)

// AttachmentService defines the interface for the TEMP/CONFIRM attachment
// pipeline on sub-phases. Files go to S3 via presigned PUT; the metadata
// record starts as TEMP and is confirmed when linked to its sub-phase.
type AttachmentService interface {
	GeneratePresignedURL(ctx context.Context, subPhaseID uuid.UUID, req *dto.PresignedURLRequest) (*dto.PresignedURLResponse, error)
	ConfirmAttachments(ctx context.Context, subPhaseID uuid.UUID, req *dto.ConfirmAttachmentsRequest) ([]dto.AttachmentResponse, error)
	DeleteAttachment(ctx context.Context, attachmentID uuid.UUID) error
}

// attachmentServiceImpl is the implementation of AttachmentService
type attachmentServiceImpl struct {
	attachmentRepo repository.AttachmentRepository
	subPhaseRepo   repository.SubPhaseRepository
	phaseRepo      repository.PhaseRepository
	s3Client       client.S3ClientInterface
	s3Config       config.S3Config
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewAttachmentService creates a new instance of AttachmentService
func NewAttachmentService(
	attachmentRepo repository.AttachmentRepository,
	subPhaseRepo repository.SubPhaseRepository,
	phaseRepo repository.PhaseRepository,
	s3Client client.S3ClientInterface,
	s3Config config.S3Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) AttachmentService {
	return &attachmentServiceImpl{
		attachmentRepo: attachmentRepo,
		subPhaseRepo:   subPhaseRepo,
		phaseRepo:      phaseRepo,
		s3Client:       s3Client,
		s3Config:       s3Config,
		metrics:        m,
		logger:         logger,
	}
}

// GeneratePresignedURL validates size and content type, creates a TEMP
// attachment record, and returns the presigned PUT URL for the upload
func (s *attachmentServiceImpl) GeneratePresignedURL(ctx context.Context, subPhaseID uuid.UUID, req *dto.PresignedURLRequest) (*dto.PresignedURLResponse, error) {
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

	if req.FileSize > s.s3Config.MaxFileSize {
		return nil, response.NewAppError(response.ErrCodeSizeLimitExceeded,
			fmt.Sprintf("File exceeds the maximum size of %d bytes", s.s3Config.MaxFileSize), "")
	}
	if !s.contentTypeAllowed(req.ContentType) {
		return nil, response.NewAppError(response.ErrCodeUnsupportedType,
			fmt.Sprintf("Content type %s is not allowed", req.ContentType), "")
	}

	phase, err := s.phaseRepo.FindByID(ctx, sp.PhaseID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load owning phase", err.Error())
	}

	uploadURL, fileKey, err := s.s3Client.GeneratePresignedURL(ctx, "sub_phases", phase.ProjectID.String(), req.FileName, req.ContentType)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to generate upload URL", err.Error())
	}

	attachmentType := domain.AttachmentTypeOther
	if req.AttachmentType != "" {
		attachmentType = domain.AttachmentType(req.AttachmentType)
	}

	expiresAt := time.Now().UTC().Add(s.s3Config.TempAttachmentTTL)
	attachment := &domain.Attachment{
		EntityType:     domain.EntityTypeSubPhase,
		EntityID:       nil, // linked on confirm
		Status:         domain.AttachmentStatusTemp,
		AttachmentType: attachmentType,
		FileName:       req.FileName,
		FileURL:        fileKey,
		FileSize:       req.FileSize,
		ContentType:    req.ContentType,
		UploadedBy:     actor,
		ExpiresAt:      &expiresAt,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create attachment record", err.Error())
	}

	return &dto.PresignedURLResponse{
		AttachmentID: attachment.ID,
		UploadURL:    uploadURL,
		FileKey:      fileKey,
		ExpiresAt:    expiresAt,
	}, nil
}

// ConfirmAttachments links previously uploaded TEMP attachments to a
// sub-phase, promoting them to CONFIRMED
func (s *attachmentServiceImpl) ConfirmAttachments(ctx context.Context, subPhaseID uuid.UUID, req *dto.ConfirmAttachmentsRequest) ([]dto.AttachmentResponse, error) {
	if _, err := actorFromContext(ctx); err != nil {
		return nil, err
	}

	if _, err := s.subPhaseRepo.FindByID(ctx, subPhaseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Sub-phase not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load sub-phase", err.Error())
	}

	ids := removeDuplicateUUIDs(req.AttachmentIDs)
	if err := s.attachmentRepo.ConfirmAttachments(ctx, ids, subPhaseID); err != nil {
		return nil, response.NewAppError(response.ErrCodeValidation, "Attachments could not be confirmed", err.Error())
	}

	attachments, err := s.attachmentRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load confirmed attachments", err.Error())
	}

	result := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		result = append(result, dto.ToAttachmentResponse(a))
	}
	return result, nil
}

// DeleteAttachment removes an attachment record and its S3 object
func (s *attachmentServiceImpl) DeleteAttachment(ctx context.Context, attachmentID uuid.UUID) error {
	if _, err := actorFromContext(ctx); err != nil {
		return err
	}

	attachment, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewAppError(response.ErrCodeNotFound, "Attachment not found", "")
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to load attachment", err.Error())
	}

	if err := s.s3Client.DeleteFile(ctx, attachment.FileURL); err != nil {
		// The DB record still goes away; the cleanup job sweeps orphans
		s.logger.Warn("Failed to delete S3 object",
			zap.String("file_key", attachment.FileURL),
			zap.Error(err),
		)
	}

	if err := s.attachmentRepo.Delete(ctx, attachmentID); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete attachment", err.Error())
	}
	return nil
}

func (s *attachmentServiceImpl) contentTypeAllowed(contentType string) bool {
	for _, allowed := range s.s3Config.AllowedTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meterwatch/meter-reading-api/internal/config"
	"github.com/meterwatch/meter-reading-api/internal/db"
	"github.com/meterwatch/meter-reading-api/internal/imagestore"
	"github.com/meterwatch/meter-reading-api/internal/mq"
	"github.com/meterwatch/meter-reading-api/internal/repository"
	"github.com/meterwatch/meter-reading-api/tools/period"
)

// MeasureRepository is the persistence gateway consumed by the service.
type MeasureRepository interface {
	CreateMeasure(ctx context.Context, m *db.Measure) error
	FindByUUID(ctx context.Context, id uuid.UUID) (*db.Measure, error)
	FindExistingInPeriod(ctx context.Context, measureType string, start, end time.Time) (*db.Measure, error)
	ConfirmMeasure(ctx context.Context, id uuid.UUID, value int64) (int64, error)
	ListByFilter(ctx context.Context, filter repository.Filter) ([]db.Measure, error)
}

// Recognizer reads the numeric meter value off a base64-encoded photo.
type Recognizer interface {
	ReadMeterValue(ctx context.Context, imageBase64 string) (int64, error)
}

// ImageStore persists uploaded images under the public directory.
type ImageStore interface {
	Save(id uuid.UUID, data []byte) error
}

// EventPublisher publishes measure lifecycle events.
type EventPublisher interface {
	PublishMeasureEvent(ctx context.Context, event mq.MeasureEvent, routingKey string) error
}

// MeasureService orchestrates the upload, confirm and list workflows.
type MeasureService struct {
	repo       MeasureRepository
	recognizer Recognizer
	images     ImageStore
	publisher  EventPublisher
	cfg        *config.Config
	logger     *zap.Logger
}

// NewMeasureService creates a new measure service
func NewMeasureService(
	repo MeasureRepository,
	recognizer Recognizer,
	images ImageStore,
	publisher EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *MeasureService {
	return &MeasureService{
		repo:       repo,
		recognizer: recognizer,
		images:     images,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger,
	}
}

// UploadInput is a validated upload request.
type UploadInput struct {
	ImageBase64     string
	ImageBytes      []byte
	CustomerCode    string
	MeasureDatetime time.Time
	MeasureType     string
}

// UploadResult is the success payload of the upload workflow.
type UploadResult struct {
	ImageURL     string `json:"image_url"`
	MeasureValue int64  `json:"measure_value"`
	MeasureUUID  string `json:"measure_uuid"`
}

// ListResult is the success payload of the list workflow.
type ListResult struct {
	CustomerCode string       `json:"customer_code"`
	Measures     []db.Measure `json:"measures"`
}

// Upload runs the duplicate-period check, reads the meter value through the
// recognition service, saves the image and persists the new measure.
func (s *MeasureService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	start, end := period.MonthWindow(in.MeasureDatetime)

	existing, err := s.repo.FindExistingInPeriod(ctx, in.MeasureType, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing measures: %w", err)
	}
	if existing != nil {
		return nil, ErrDoubleReport()
	}

	id := uuid.New()

	value, err := s.recognizer.ReadMeterValue(ctx, in.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to read meter value: %w", err)
	}

	// The HTTP response does not depend on the image actually reaching
	// disk; a failed write is only logged.
	if err := s.images.Save(id, in.ImageBytes); err != nil {
		s.logger.Error("failed to save measure image",
			zap.Error(err),
			zap.String("measure_uuid", id.String()),
		)
	}

	imageURL := fmt.Sprintf("%s/%s", s.cfg.Images.BaseURL, imagestore.FileName(id))

	collision, err := s.repo.FindByUUID(ctx, id)
	if err != nil {
		return nil, ErrDatabase(err)
	}
	if collision != nil {
		return nil, ErrDatabase(fmt.Errorf("measure %s already exists", id))
	}

	measure := &db.Measure{
		MeasureUUID:     id,
		ImageURL:        imageURL,
		CustomerCode:    in.CustomerCode,
		MeasureValue:    value,
		MeasureDatetime: in.MeasureDatetime,
		MeasureType:     in.MeasureType,
		HasConfirmed:    false,
	}

	if err := s.repo.CreateMeasure(ctx, measure); err != nil {
		s.logger.Error("failed to persist measure", zap.Error(err))
		return nil, ErrDatabase(err)
	}

	s.publishEvent(ctx, measure, s.cfg.RabbitMQ.CreatedRoutingKey)

	s.logger.Info("measure created",
		zap.String("measure_uuid", id.String()),
		zap.String("customer_code", in.CustomerCode),
		zap.String("measure_type", in.MeasureType),
		zap.Int64("measure_value", value),
	)

	return &UploadResult{
		ImageURL:     imageURL,
		MeasureValue: value,
		MeasureUUID:  id.String(),
	}, nil
}

// Confirm overwrites the recognized value exactly once and marks the
// measure as confirmed.
func (s *MeasureService) Confirm(ctx context.Context, measureUUID string, confirmedValue int64) error {
	id, err := uuid.Parse(measureUUID)
	if err != nil {
		// An unparseable identifier cannot match any record.
		return ErrMeasureNotFound()
	}

	measure, err := s.repo.FindByUUID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up measure: %w", err)
	}
	if measure == nil {
		return ErrMeasureNotFound()
	}
	if measure.HasConfirmed {
		return ErrConfirmationDuplicate()
	}

	rows, err := s.repo.ConfirmMeasure(ctx, id, confirmedValue)
	if err != nil {
		return fmt.Errorf("failed to confirm measure: %w", err)
	}
	if rows == 0 {
		s.logger.Warn("confirmation matched no rows", zap.String("measure_uuid", measureUUID))
	}

	measure.MeasureValue = confirmedValue
	measure.HasConfirmed = true
	s.publishEvent(ctx, measure, s.cfg.RabbitMQ.ConfirmedRoutingKey)

	s.logger.Info("measure confirmed",
		zap.String("measure_uuid", measureUUID),
		zap.Int64("confirmed_value", confirmedValue),
	)

	return nil
}

// List returns all measures for a customer, optionally filtered by a
// case-insensitive measure type.
func (s *MeasureService) List(ctx context.Context, customerCode, measureType string) (*ListResult, error) {
	filter := repository.Filter{CustomerCode: customerCode}

	if measureType != "" {
		normalized := strings.ToUpper(measureType)
		if !db.IsValidType(normalized) {
			return nil, ErrInvalidType()
		}
		filter.MeasureType = &normalized
	}

	measures, err := s.repo.ListByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list measures: %w", err)
	}

	if len(measures) == 0 {
		return nil, ErrMeasuresNotFound()
	}

	return &ListResult{
		CustomerCode: customerCode,
		Measures:     measures,
	}, nil
}

func (s *MeasureService) publishEvent(ctx context.Context, m *db.Measure, routingKey string) {
	event := mq.MeasureEvent{
		MeasureUUID:     m.MeasureUUID.String(),
		CustomerCode:    m.CustomerCode,
		MeasureType:     m.MeasureType,
		MeasureValue:    m.MeasureValue,
		MeasureDatetime: m.MeasureDatetime.Format(time.RFC3339),
		HasConfirmed:    m.HasConfirmed,
	}

	if err := s.publisher.PublishMeasureEvent(ctx, event, routingKey); err != nil {
		// Events are best-effort; the request already succeeded.
		s.logger.Error("failed to publish measure event",
			zap.Error(err),
			zap.String("routing_key", routingKey),
			zap.String("measure_uuid", event.MeasureUUID),
		)
	}
}

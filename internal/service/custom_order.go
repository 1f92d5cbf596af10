package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MuzammilBaloch-22/Cakelora/internal/domain"
	"github.com/MuzammilBaloch-22/Cakelora/internal/event"
	apperrors "github.com/MuzammilBaloch-22/Cakelora/pkg/errors"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/validator"
)

// CustomOrderConfirmation is shown with every receipt.
const CustomOrderConfirmation = "Our team will contact you shortly to discuss your custom cake."

// CustomOrderInput holds the fields of the custom cake request form.
type CustomOrderInput struct {
	Name             string `form:"name" validate:"required,max=100"`
	Email            string `form:"email" validate:"required,email,max=254"`
	Phone            string `form:"phone" validate:"max=30"`
	EventDate        string `form:"event_date" validate:"required,datetime=2006-01-02"`
	Size             string `form:"size" validate:"required,oneof=small medium large xl"`
	Category         string `form:"category" validate:"required,oneof=birthday anniversary wedding kids custom"`
	DesignPreference string `form:"design_preference" validate:"omitempty,oneof=inspiration replicate"`
	Notes            string `form:"notes" validate:"max=2000"`

	// ReferenceImage is the uploaded photo's metadata, if one was sent.
	ReferenceImage *domain.ReferenceImage `form:"-"`
}

// CustomOrderReceipt confirms a submitted request.
type CustomOrderReceipt struct {
	Reference   string                    `json:"reference"`
	Status      domain.CustomOrderStatus  `json:"status"`
	SubmittedAt time.Time                 `json:"submitted_at"`
	Summary     domain.CustomOrderSummary `json:"summary"`
	Message     string                    `json:"message"`
}

// CustomOrderService accepts custom cake requests. Nothing is stored: a
// valid request is acknowledged and announced as an event.
type CustomOrderService struct {
	events event.Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewCustomOrderService creates a custom order service.
func NewCustomOrderService(events event.Publisher, logger *slog.Logger) *CustomOrderService {
	if events == nil {
		events = event.NoopPublisher{}
	}
	return &CustomOrderService{
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// Submit validates in and returns a receipt. Field errors are returned as a
// *validator.ValidationError; rule violations as apperrors.InvalidInput.
func (s *CustomOrderService) Submit(ctx context.Context, in CustomOrderInput) (*CustomOrderReceipt, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Notes = strings.TrimSpace(in.Notes)

	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	now := s.now()
	eventDate, err := time.ParseInLocation(domain.EventDateLayout, in.EventDate, now.Location())
	if err != nil {
		return nil, apperrors.InvalidInput("event date must be in the form YYYY-MM-DD")
	}
	y, mo, d := now.Date()
	if eventDate.Before(time.Date(y, mo, d, 0, 0, 0, 0, now.Location())) {
		return nil, apperrors.InvalidInput("event date must not be in the past")
	}

	if img := in.ReferenceImage; img != nil {
		if img.SizeBytes > domain.MaxReferenceImageBytes {
			return nil, apperrors.InvalidInput(fmt.Sprintf("reference image must be smaller than %dMB", domain.MaxReferenceImageBytes>>20))
		}
		if !strings.HasPrefix(img.ContentType, "image/") {
			return nil, apperrors.InvalidInput("reference image must be an image")
		}
	}

	// Codes were checked by the oneof rules above.
	size, _ := domain.ParseSize(in.Size)
	category, _ := domain.ParseCategory(in.Category)

	order := &domain.CustomOrder{
		Reference:        uuid.NewString(),
		Name:             in.Name,
		Email:            in.Email,
		Phone:            in.Phone,
		EventDate:        eventDate,
		Size:             size,
		Category:         category,
		DesignPreference: domain.DesignPreference(in.DesignPreference),
		ReferenceImage:   in.ReferenceImage,
		Notes:            in.Notes,
		Status:           domain.CustomOrderStatusSubmitted,
		SubmittedAt:      now.UTC(),
	}

	customOrdersSubmittedTotal.WithLabelValues(category.String()).Inc()
	s.logger.InfoContext(ctx, "custom order submitted",
		slog.String("reference", order.Reference),
		slog.String("category", category.String()),
		slog.String("size", size.String()),
		slog.String("event_date", in.EventDate),
		slog.Bool("has_image", order.ReferenceImage != nil),
	)

	if err := s.events.PublishCustomOrderSubmitted(ctx, order); err != nil {
		s.logger.WarnContext(ctx, "failed to publish custom_order.submitted event",
			slog.String("reference", order.Reference),
			slog.String("error", err.Error()),
		)
	}

	return &CustomOrderReceipt{
		Reference:   order.Reference,
		Status:      order.Status,
		SubmittedAt: order.SubmittedAt,
		Summary:     order.Summary(),
		Message:     CustomOrderConfirmation,
	}, nil
}

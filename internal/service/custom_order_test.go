package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MuzammilBaloch-22/Cakelora/internal/domain"
	apperrors "github.com/MuzammilBaloch-22/Cakelora/pkg/errors"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/logger"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/validator"
)

var orderNow = time.Date(2030, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestCustomOrderService(pub *mockPublisher) *CustomOrderService {
	s := NewCustomOrderService(pub, logger.Discard())
	s.now = func() time.Time { return orderNow }
	return s
}

func validOrderInput() CustomOrderInput {
	return CustomOrderInput{
		Name:             "  Sam Rivera ",
		Email:            "sam@example.com",
		Phone:            "+1 555 0100",
		EventDate:        "2030-04-01",
		Size:             "large",
		Category:         "wedding",
		DesignPreference: "inspiration",
		Notes:            "Blush and gold, three tiers.",
		ReferenceImage:   &domain.ReferenceImage{FileName: "idea.jpg", ContentType: "image/jpeg", SizeBytes: 1 << 20},
	}
}

func TestCustomOrderService_Submit(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishCustomOrderSubmitted", mock.Anything, mock.MatchedBy(func(o *domain.CustomOrder) bool {
		return o.Category == domain.CategoryWedding && o.Size == domain.SizeLarge && o.ReferenceImage != nil
	})).Return(nil).Once()
	svc := newTestCustomOrderService(pub)

	receipt, err := svc.Submit(context.Background(), validOrderInput())
	require.NoError(t, err)

	assert.NotEmpty(t, receipt.Reference)
	assert.Equal(t, domain.CustomOrderStatusSubmitted, receipt.Status)
	assert.Equal(t, orderNow, receipt.SubmittedAt)
	assert.Equal(t, CustomOrderConfirmation, receipt.Message)
	assert.Equal(t, domain.CustomOrderSummary{
		Name:             "Sam Rivera",
		Email:            "sam@example.com",
		Phone:            "+1 555 0100",
		EventDate:        "2030-04-01",
		Category:         "Wedding",
		Size:             `10" (16-20 servings)`,
		DesignPreference: "Use as inspiration",
	}, receipt.Summary)
	pub.AssertExpectations(t)
}

func TestCustomOrderService_SubmitToday(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishCustomOrderSubmitted", mock.Anything, mock.Anything).Return(errors.New("breaker open"))
	svc := newTestCustomOrderService(pub)

	in := validOrderInput()
	in.EventDate = "2030-03-10"
	in.ReferenceImage = nil
	in.DesignPreference = ""

	receipt, err := svc.Submit(context.Background(), in)
	require.NoError(t, err, "publish failures are not returned")
	assert.Empty(t, receipt.Summary.DesignPreference)
}

func TestCustomOrderService_ValidationErrors(t *testing.T) {
	svc := newTestCustomOrderService(new(mockPublisher))

	tests := []struct {
		name   string
		mutate func(*CustomOrderInput)
		field  string
	}{
		{"missing name", func(in *CustomOrderInput) { in.Name = "   " }, "name"},
		{"bad email", func(in *CustomOrderInput) { in.Email = "not-an-email" }, "email"},
		{"missing date", func(in *CustomOrderInput) { in.EventDate = "" }, "event_date"},
		{"bad date", func(in *CustomOrderInput) { in.EventDate = "04/01/2030" }, "event_date"},
		{"unknown size", func(in *CustomOrderInput) { in.Size = "huge" }, "size"},
		{"missing category", func(in *CustomOrderInput) { in.Category = "" }, "category"},
		{"bad preference", func(in *CustomOrderInput) { in.DesignPreference = "copy" }, "design_preference"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validOrderInput()
			tt.mutate(&in)

			_, err := svc.Submit(context.Background(), in)
			var valErr *validator.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Contains(t, valErr.Fields(), tt.field)
		})
	}
}

func TestCustomOrderService_RuleViolations(t *testing.T) {
	svc := newTestCustomOrderService(new(mockPublisher))

	tests := []struct {
		name    string
		mutate  func(*CustomOrderInput)
		message string
	}{
		{"past date", func(in *CustomOrderInput) { in.EventDate = "2030-03-09" }, "must not be in the past"},
		{"image too large", func(in *CustomOrderInput) {
			in.ReferenceImage.SizeBytes = domain.MaxReferenceImageBytes + 1
		}, "smaller than 5MB"},
		{"not an image", func(in *CustomOrderInput) {
			in.ReferenceImage.ContentType = "application/pdf"
		}, "must be an image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validOrderInput()
			tt.mutate(&in)

			_, err := svc.Submit(context.Background(), in)
			require.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

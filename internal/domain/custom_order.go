package domain

import "time"

// DesignPreference says how closely a reference image should be followed.
type DesignPreference string

// Design preference values. The empty preference means "not specified".
const (
	DesignInspiration DesignPreference = "inspiration"
	DesignReplicate   DesignPreference = "replicate"
)

// Label returns the display label, or "" when no preference was given.
func (d DesignPreference) Label() string {
	switch d {
	case DesignInspiration:
		return "Use as inspiration"
	case DesignReplicate:
		return "Replicate exactly"
	default:
		return ""
	}
}

// CustomOrderStatus is the lifecycle state of a custom cake request.
type CustomOrderStatus string

// CustomOrderStatusSubmitted is the only state a request reaches: nothing
// downstream picks it up.
const CustomOrderStatusSubmitted CustomOrderStatus = "submitted"

// MaxReferenceImageBytes caps the size of an uploaded inspiration photo.
const MaxReferenceImageBytes = 5 << 20

// EventDateLayout is the accepted format for event dates.
const EventDateLayout = "2006-01-02"

// ReferenceImage describes an uploaded photo. The bytes themselves are not kept.
type ReferenceImage struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// CustomOrder is a submitted request for a bespoke cake.
type CustomOrder struct {
	Reference        string            `json:"reference"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone,omitempty"`
	EventDate        time.Time         `json:"event_date"`
	Size             Size              `json:"size"`
	Category         Category          `json:"category"`
	DesignPreference DesignPreference  `json:"design_preference,omitempty"`
	ReferenceImage   *ReferenceImage   `json:"reference_image,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	Status           CustomOrderStatus `json:"status"`
	SubmittedAt      time.Time         `json:"submitted_at"`
}

// CustomOrderSummary is the human-readable recap shown after submission.
type CustomOrderSummary struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	EventDate        string `json:"event_date"`
	Category         string `json:"category"`
	Size             string `json:"size"`
	DesignPreference string `json:"design_preference,omitempty"`
}

// Summary renders the labelled recap of the order.
func (o *CustomOrder) Summary() CustomOrderSummary {
	return CustomOrderSummary{
		Name:             o.Name,
		Email:            o.Email,
		Phone:            o.Phone,
		EventDate:        o.EventDate.Format(EventDateLayout),
		Category:         o.Category.Label(),
		Size:             o.Size.Label(),
		DesignPreference: o.DesignPreference.Label(),
	}
}

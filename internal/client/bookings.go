// ABOUTME: Booking endpoints: create, list, cancel, reschedule, and admin listing
// ABOUTME: Uses decimal prices and backend-local timestamps without zone

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// localLayout is the backend's LocalDateTime format (no zone)
const localLayout = "2006-01-02T15:04:05"

// LocalDateTime is a wall-clock timestamp as exchanged with the backend
type LocalDateTime struct {
	time.Time
}

// ParseLocalDateTime accepts "2006-01-02T15:04[:05[.fff]]" in the local zone
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", localLayout, "2006-01-02T15:04", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return LocalDateTime{t}, nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("invalid date-time %q (want YYYY-MM-DDTHH:MM)", s)
}

func (t LocalDateTime) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(localLayout)
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(localLayout) + `"`), nil
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalYAML renders the timestamp as its backend string form
func (t LocalDateTime) MarshalYAML() (any, error) {
	return t.String(), nil
}

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	BookingPending     BookingStatus = "PENDING"
	BookingConfirmed   BookingStatus = "CONFIRMED"
	BookingCancelled   BookingStatus = "CANCELLED"
	BookingCompleted   BookingStatus = "COMPLETED"
	BookingRescheduled BookingStatus = "RESCHEDULED"
)

// BookingStatuses lists every status in lifecycle order
var BookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingRescheduled, BookingCompleted, BookingCancelled}

// ParseBookingStatus accepts a status name in any case
func ParseBookingStatus(s string) (BookingStatus, error) {
	for _, status := range BookingStatuses {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// BookingRequest is the body of POST /booking/create
type BookingRequest struct {
	BookingDateTime    LocalDateTime   `json:"bookingDateTime"`
	DurationMinutes    int             `json:"durationMinutes" validate:"gt=0"`
	ServiceName        string          `json:"serviceName" validate:"required"`
	ServiceDescription string          `json:"serviceDescription,omitempty"`
	Price              decimal.Decimal `json:"price"`
	Notes              string          `json:"notes,omitempty"`
}

// Booking is a booking as returned by the backend
type Booking struct {
	ID                    int64           `json:"id" yaml:"id"`
	UserID                int64           `json:"userId" yaml:"userId"`
	BookingDateTime       LocalDateTime   `json:"bookingDateTime" yaml:"bookingDateTime"`
	DurationMinutes       int             `json:"durationMinutes" yaml:"durationMinutes"`
	ServiceName           string          `json:"serviceName" yaml:"serviceName"`
	ServiceDescription    string          `json:"serviceDescription,omitempty" yaml:"serviceDescription,omitempty"`
	Price                 decimal.Decimal `json:"price" yaml:"price"`
	Status                BookingStatus   `json:"status" yaml:"status"`
	Notes                 string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	StripePaymentIntentID string          `json:"stripePaymentIntentId,omitempty" yaml:"stripePaymentIntentId,omitempty"`
	CreatedAt             LocalDateTime   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt             LocalDateTime   `json:"updatedAt" yaml:"updatedAt"`
}

// validateBooking applies the struct rules plus the checks validator tags cannot express
func validateBooking(req BookingRequest) error {
	if err := validate(req); err != nil {
		return err
	}
	if req.BookingDateTime.IsZero() {
		return &ValidationError{Message: "bookingDateTime is required"}
	}
	if !req.Price.IsPositive() {
		return &ValidationError{Message: "price must be greater than 0"}
	}
	return nil
}

// CreateBooking calls POST /booking/create
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error) {
	if err := validateBooking(req); err != nil {
		return nil, err
	}
	var booking Booking
	if err := c.Do(ctx, http.MethodPost, "/booking/create", req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// MyBookings calls GET /booking/my-bookings
func (c *Client) MyBookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := c.Do(ctx, http.MethodGet, "/booking/my-bookings", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// BookingsByStatus calls GET /booking/my-bookings/{status}
func (c *Client) BookingsByStatus(ctx context.Context, status BookingStatus) ([]Booking, error) {
	var bookings []Booking
	path := "/booking/my-bookings/" + url.PathEscape(string(status))
	if err := c.Do(ctx, http.MethodGet, path, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CancelBooking calls PUT /booking/{id}/cancel
func (c *Client) CancelBooking(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("/booking/%d/cancel", id), nil, nil)
}

// RescheduleBooking calls PUT /booking/{id}/reschedule?newDateTime=...
func (c *Client) RescheduleBooking(ctx context.Context, id int64, when LocalDateTime) error {
	if when.IsZero() {
		return &ValidationError{Message: "newDateTime is required"}
	}
	q := url.Values{"newDateTime": {when.String()}}
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("/booking/%d/reschedule?%s", id, q.Encode()), nil, nil)
}

// AllBookings calls GET /booking/admin/all (ADMIN only on the backend)
func (c *Client) AllBookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	if err := c.Do(ctx, http.MethodGet, "/booking/admin/all", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

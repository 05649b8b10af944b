// ABOUTME: Stub booking endpoints: create, list, cancel, reschedule, and admin listing
// ABOUTME: Bookings are owned by the account that created them

package stubapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/onlinebooking/booking-cli/internal/client"
)

var errNotOwned = errors.New("Booking not found or access denied")

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)

	var req client.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "Error creating booking: "+err.Error())
		return
	}
	switch {
	case req.BookingDateTime.IsZero():
		writeText(w, http.StatusBadRequest, "Error creating booking: booking date and time is required")
		return
	case req.DurationMinutes <= 0:
		writeText(w, http.StatusBadRequest, "Error creating booking: duration must be positive")
		return
	case req.ServiceName == "":
		writeText(w, http.StatusBadRequest, "Error creating booking: service name is required")
		return
	case !req.Price.IsPositive():
		writeText(w, http.StatusBadRequest, "Error creating booking: price must be positive")
		return
	}

	now := client.LocalDateTime{Time: s.now().Truncate(time.Second)}

	s.mu.Lock()
	s.nextBooking++
	booking := &client.Booking{
		ID:                 s.nextBooking,
		UserID:             acct.user.ID,
		BookingDateTime:    req.BookingDateTime,
		DurationMinutes:    req.DurationMinutes,
		ServiceName:        req.ServiceName,
		ServiceDescription: req.ServiceDescription,
		Price:              req.Price,
		Status:             client.BookingConfirmed,
		Notes:              req.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.bookings[booking.ID] = booking
	created := *booking
	s.mu.Unlock()

	s.log.Info("Booking created", "id", created.ID, "username", acct.user.Username, "service", created.ServiceName)
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) myBookings(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)
	writeJSON(w, http.StatusOK, s.listBookings(func(b *client.Booking) bool {
		return b.UserID == acct.user.ID
	}))
}

func (s *Server) myBookingsByStatus(w http.ResponseWriter, r *http.Request) {
	acct := accountFrom(r)
	status, err := client.ParseBookingStatus(r.PathValue("status"))
	if err != nil {
		writeText(w, http.StatusBadRequest, "Error retrieving bookings: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.listBookings(func(b *client.Booking) bool {
		return b.UserID == acct.user.ID && b.Status == status
	}))
}

func (s *Server) allBookings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.listBookings(func(*client.Booking) bool { return true }))
}

func (s *Server) cancelBooking(w http.ResponseWriter, r *http.Request) {
	err := s.updateOwnedBooking(r, func(b *client.Booking) {
		b.Status = client.BookingCancelled
	})
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	writeText(w, http.StatusOK, "Booking cancelled successfully")
}

func (s *Server) rescheduleBooking(w http.ResponseWriter, r *http.Request) {
	when, err := client.ParseLocalDateTime(r.URL.Query().Get("newDateTime"))
	if err != nil {
		writeText(w, http.StatusBadRequest, "Error rescheduling booking: "+err.Error())
		return
	}
	err = s.updateOwnedBooking(r, func(b *client.Booking) {
		b.BookingDateTime = when
		b.Status = client.BookingRescheduled
	})
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	writeText(w, http.StatusOK, "Booking rescheduled successfully")
}

// updateOwnedBooking applies fn to the {id} booking if the caller owns it
func (s *Server) updateOwnedBooking(r *http.Request, fn func(*client.Booking)) error {
	acct := accountFrom(r)
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid booking id %q", r.PathValue("id"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	booking := s.bookings[id]
	if booking == nil || booking.UserID != acct.user.ID {
		return errNotOwned
	}
	fn(booking)
	booking.UpdatedAt = client.LocalDateTime{Time: s.now().Truncate(time.Second)}
	return nil
}

// listBookings returns copies of matching bookings ordered by id
func (s *Server) listBookings(match func(*client.Booking) bool) []client.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]client.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ABOUTME: Stub payment endpoints imitating the processor's payment intent lifecycle
// ABOUTME: Intents move from requires_payment_method to succeeded or canceled

package stubapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/onlinebooking/booking-cli/internal/client"
)

const (
	intentRequiresPayment = "requires_payment_method"
	intentSucceeded       = "succeeded"
	intentCanceled        = "canceled"
)

func (s *Server) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req client.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "Error creating payment intent: "+err.Error())
		return
	}
	if !req.Amount.IsPositive() {
		writeText(w, http.StatusBadRequest, "Error creating payment intent: amount must be positive")
		return
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}

	id := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
	intent := &paymentIntent{
		id:          id,
		secret:      id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		amount:      client.MinorUnits(req.Amount),
		currency:    strings.ToLower(req.Currency),
		description: req.Description,
		status:      intentRequiresPayment,
	}

	s.mu.Lock()
	s.intents[id] = intent
	s.mu.Unlock()

	s.log.Info("Payment intent created", "id", id, "amount", intent.amount, "currency", intent.currency)
	writeJSON(w, http.StatusOK, client.PaymentIntent{ClientSecret: intent.secret, PaymentIntentID: id})
}

func (s *Server) confirmPayment(w http.ResponseWriter, r *http.Request) {
	s.transitionIntent(w, r, "Error confirming payment: ", intentSucceeded, intentCanceled)
}

func (s *Server) cancelPayment(w http.ResponseWriter, r *http.Request) {
	s.transitionIntent(w, r, "Error cancelling payment: ", intentCanceled, intentSucceeded)
}

// transitionIntent moves the intent named by ?paymentIntentId= to status,
// refusing when it is already in the terminal state blocked.
func (s *Server) transitionIntent(w http.ResponseWriter, r *http.Request, errPrefix, status, blocked string) {
	id := r.URL.Query().Get("paymentIntentId")

	s.mu.Lock()
	intent := s.intents[id]
	var current string
	if intent != nil {
		current = intent.status
		if current != blocked {
			intent.status = status
		}
	}
	s.mu.Unlock()

	switch {
	case intent == nil:
		writeText(w, http.StatusBadRequest, errPrefix+"No such payment_intent: '"+id+"'")
	case current == blocked:
		writeText(w, http.StatusBadRequest, errPrefix+"This PaymentIntent's status is "+blocked)
	default:
		writeJSON(w, http.StatusOK, client.PaymentStatus{PaymentIntentID: id, Status: status})
	}
}

func (s *Server) paymentStatus(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("paymentIntentId")

	s.mu.RLock()
	intent := s.intents[id]
	var resp client.PaymentStatus
	if intent != nil {
		resp = client.PaymentStatus{Status: intent.status, Amount: intent.amount, Currency: intent.currency}
	}
	s.mu.RUnlock()

	if intent == nil {
		writeText(w, http.StatusBadRequest, "Error retrieving payment status: No such payment_intent: '"+id+"'")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

package widget

import (
	"context"
	"errors"
)

// Alerts shown for a failed form submission.
const (
	AlertMissingFields = "Please fill in all required fields."
	AlertSubmitFailed  = "There was an error submitting your information. Please try again."
	AlertNetwork       = "Network error. Please check your connection and try again."
)

// MessageFallback replaces any backend reply that is missing or failed.
const MessageFallback = "Thank you for your message! Our partnership team will contact you shortly to discuss your inquiry in detail."

// Backend is the lead/message store the widget talks to.
type Backend interface {
	// SubmitLead returns the lead id assigned to fields.
	SubmitLead(ctx context.Context, fields LeadFields) (string, error)
	// SendMessage stores text on the lead and returns the reply to show.
	SendMessage(ctx context.Context, leadID, text string) (string, error)
}

// LeadGateway validates the collected fields and hands them to the backend.
type LeadGateway struct {
	backend Backend
}

func NewLeadGateway(backend Backend) *LeadGateway {
	return &LeadGateway{backend: backend}
}

// Validate requires all four trimmed fields.
func (g *LeadGateway) Validate(fields LeadFields) error {
	if fields.Name == "" || fields.Email == "" || fields.Phone == "" || fields.Country == "" {
		return &ValidationError{Message: AlertMissingFields}
	}
	return nil
}

// Submit sends one submit_chat_lead request for valid fields.
func (g *LeadGateway) Submit(ctx context.Context, fields LeadFields) (string, error) {
	if err := g.Validate(fields); err != nil {
		return "", err
	}
	return g.backend.SubmitLead(ctx, fields)
}

// submitAlert maps a submission error to the alert the visitor sees.
func submitAlert(err error) string {
	var validationErr *ValidationError
	var rejection *BackendRejection
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &rejection):
		return AlertSubmitFailed
	default:
		return AlertNetwork
	}
}

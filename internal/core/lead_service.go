package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/sirupsen/logrus"
	"whisp.dev/chat-widget/internal/store"
	"whisp.dev/chat-widget/internal/utils"
)

// MessageAcknowledgment is the canned reply to every stored visitor message.
const MessageAcknowledgment = "Thank you for your message! Our partnership team will contact you shortly to discuss your inquiry in detail."

const LeadsPerPage = 20

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidStatus  = errors.New("invalid lead status")
)

// FieldErrors lists every rejected lead field, one message per field.
type FieldErrors []string

func (e FieldErrors) Error() string {
	return strings.Join(e, ", ")
}

type SubmitLeadRequest struct {
	Name      string
	Email     string
	Phone     string
	Country   string
	IPAddress string
	UserAgent string
}

type LeadPage struct {
	Leads      []store.Lead `json:"leads"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	Total      int          `json:"total"`
}

type LeadService struct {
	dbStore  store.LeadStore
	notifier Notifier
	// notify runs notification work; the default detaches it from the request.
	notify func(func())
}

func NewLeadService(db store.LeadStore, notifier Notifier) *LeadService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &LeadService{
		dbStore:  db,
		notifier: notifier,
		notify:   func(fn func()) { go fn() },
	}
}

// SubmitLead validates the form fields and creates or refreshes the lead
// for that email. Validation failures come back as FieldErrors.
func (s *LeadService) SubmitLead(req SubmitLeadRequest) (*store.Lead, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Country = strings.TrimSpace(req.Country)

	var errs FieldErrors
	if req.Name == "" {
		errs = append(errs, "Name is required")
	}
	if req.Email == "" || checkmail.ValidateFormat(req.Email) != nil {
		errs = append(errs, "Valid email is required")
	}
	if req.Phone == "" {
		errs = append(errs, "Phone number is required")
	}
	if req.Country == "" {
		errs = append(errs, "Country is required")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	lead, created, err := s.dbStore.UpsertLeadByEmail(store.LeadInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Country:   req.Country,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}

	logrus.WithFields(logrus.Fields{"lead_id": lead.ID, "created": created}).Info("Lead captured")
	s.notify(func() {
		if err := s.notifier.NotifyNewLead(lead); err != nil {
			utils.LogError("lead_notification", err, map[string]interface{}{"lead_id": lead.ID})
		}
	})
	return lead, nil
}

// PostMessage stores a visitor message on the lead transcript and returns the
// canned acknowledgment.
func (s *LeadService) PostMessage(leadID, message string) (string, error) {
	leadID = strings.TrimSpace(leadID)
	message = strings.TrimSpace(message)
	if leadID == "" || message == "" {
		return "", ErrInvalidRequest
	}

	lead, err := s.dbStore.AppendChatMessage(leadID, store.ChatMessage{
		Message:   message,
		Sender:    "user",
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save message: %w", err)
	}
	if lead == nil {
		return "", store.ErrLeadNotFound
	}

	s.notify(func() {
		if err := s.notifier.NotifyNewMessage(lead, message); err != nil {
			utils.LogError("message_notification", err, map[string]interface{}{"lead_id": lead.ID})
		}
	})
	return MessageAcknowledgment, nil
}

func (s *LeadService) GetLead(leadID string) (*store.Lead, error) {
	return s.dbStore.GetLeadByID(leadID)
}

// ListLeads returns one dashboard page (1-based) newest first.
func (s *LeadService) ListLeads(status store.LeadStatus, page int) (*LeadPage, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}

	total, err := s.dbStore.CountLeads(status)
	if err != nil {
		return nil, err
	}
	leads, err := s.dbStore.ListLeads(status, LeadsPerPage, (page-1)*LeadsPerPage)
	if err != nil {
		return nil, err
	}

	return &LeadPage{
		Leads:      leads,
		Page:       page,
		TotalPages: (total + LeadsPerPage - 1) / LeadsPerPage,
		Total:      total,
	}, nil
}

func (s *LeadService) UpdateStatus(leadID string, status store.LeadStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return s.dbStore.UpdateLeadStatus(leadID, status)
}

// Stats counts leads per status, including statuses with no leads.
func (s *LeadService) Stats() (map[store.LeadStatus]int, error) {
	counts, err := s.dbStore.CountLeadsByStatus()
	if err != nil {
		return nil, err
	}
	for _, status := range store.LeadStatuses {
		if _, ok := counts[status]; !ok {
			counts[status] = 0
		}
	}
	return counts, nil
}

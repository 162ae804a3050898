package store

import "time"

type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusQualified LeadStatus = "qualified"
	StatusConverted LeadStatus = "converted"
	StatusClosed    LeadStatus = "closed"
)

// LeadStatuses lists every status in dashboard order.
var LeadStatuses = []LeadStatus{StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusClosed}

func (s LeadStatus) Valid() bool {
	for _, known := range LeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Lead struct {
	ID             string        `json:"id"` // Using UUID for external ID
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Phone          string        `json:"phone"`
	Country        string        `json:"country"`
	InitialMessage *string       `json:"initial_message"` // Nullable
	ChatMessages   []ChatMessage `json:"chat_messages"`
	Status         LeadStatus    `json:"status"`
	AssignedTo     *int64        `json:"assigned_to"` // Nullable
	IPAddress      string        `json:"ip_address"`
	UserAgent      string        `json:"user_agent"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type ChatMessage struct {
	Message   string    `json:"message"`
	Sender    string    `json:"sender"` // "user" or "bot"
	Timestamp time.Time `json:"timestamp"`
}

// LeadInput carries the fields captured by the widget form.
type LeadInput struct {
	Name      string
	Email     string
	Phone     string
	Country   string
	IPAddress string
	UserAgent string
}

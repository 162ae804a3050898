package core

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"whisp.dev/chat-widget/internal/store"
)

type recordingNotifier struct {
	leads    []string
	messages []string
	err      error
}

func (n *recordingNotifier) NotifyNewLead(lead *store.Lead) error {
	n.leads = append(n.leads, lead.ID)
	return n.err
}

func (n *recordingNotifier) NotifyNewMessage(lead *store.Lead, message string) error {
	n.messages = append(n.messages, message)
	return n.err
}

func newTestService(t *testing.T) (*LeadService, *recordingNotifier) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "leads.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	notifier := &recordingNotifier{}
	svc := NewLeadService(st, notifier)
	svc.notify = func(fn func()) { fn() }
	return svc, notifier
}

func TestSubmitLeadValidation(t *testing.T) {
	svc, notifier := newTestService(t)

	_, err := svc.SubmitLead(SubmitLeadRequest{Name: "  ", Email: "not-an-email", Phone: "", Country: ""})
	var fieldErrs FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("SubmitLead() error = %v, want FieldErrors", err)
	}
	want := FieldErrors{"Name is required", "Valid email is required", "Phone number is required", "Country is required"}
	if !reflect.DeepEqual(fieldErrs, want) {
		t.Errorf("field errors = %v, want %v", fieldErrs, want)
	}
	if len(notifier.leads) != 0 {
		t.Error("rejected submission must not notify")
	}
}

func TestSubmitLeadTwiceSameEmailUpdates(t *testing.T) {
	svc, notifier := newTestService(t)

	first, err := svc.SubmitLead(SubmitLeadRequest{Name: "Ann", Email: "a@b.com", Phone: "1", Country: "CY"})
	if err != nil {
		t.Fatalf("first SubmitLead() error = %v", err)
	}
	second, err := svc.SubmitLead(SubmitLeadRequest{Name: "Anna", Email: "a@b.com", Phone: "1", Country: "CY"})
	if err != nil {
		t.Fatalf("second SubmitLead() error = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("same email produced two leads: %s and %s", first.ID, second.ID)
	}
	stored, err := svc.GetLead(first.ID)
	if err != nil {
		t.Fatalf("GetLead() error = %v", err)
	}
	if stored.Name != "Anna" {
		t.Errorf("stored name = %q, want Anna", stored.Name)
	}

	page, err := svc.ListLeads("", 1)
	if err != nil {
		t.Fatalf("ListLeads() error = %v", err)
	}
	if page.Total != 1 {
		t.Errorf("total leads = %d, want 1", page.Total)
	}
	if len(notifier.leads) != 2 {
		t.Errorf("lead notifications = %d, want 2", len(notifier.leads))
	}
}

func TestPostMessage(t *testing.T) {
	svc, notifier := newTestService(t)
	lead, err := svc.SubmitLead(SubmitLeadRequest{Name: "Ann", Email: "ann@example.com", Phone: "1", Country: "CY"})
	if err != nil {
		t.Fatalf("SubmitLead() error = %v", err)
	}

	reply, err := svc.PostMessage(lead.ID, "  Tell me about PAMM  ")
	if err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}
	if reply != MessageAcknowledgment {
		t.Errorf("reply = %q, want the canned acknowledgment", reply)
	}

	stored, _ := svc.GetLead(lead.ID)
	if len(stored.ChatMessages) != 1 || stored.ChatMessages[0].Message != "Tell me about PAMM" || stored.ChatMessages[0].Sender != "user" {
		t.Errorf("stored transcript = %+v", stored.ChatMessages)
	}
	if stored.InitialMessage == nil || *stored.InitialMessage != "Tell me about PAMM" {
		t.Errorf("initial message = %v", stored.InitialMessage)
	}
	if len(notifier.messages) != 1 {
		t.Errorf("message notifications = %d, want 1", len(notifier.messages))
	}
}

func TestPostMessageRejections(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.PostMessage("", "hello"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("missing lead id error = %v, want ErrInvalidRequest", err)
	}
	if _, err := svc.PostMessage("some-id", "   "); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("empty message error = %v, want ErrInvalidRequest", err)
	}
	if _, err := svc.PostMessage("unknown", "hello"); !errors.Is(err, store.ErrLeadNotFound) {
		t.Errorf("unknown lead error = %v, want ErrLeadNotFound", err)
	}
}

func TestNotifierFailureDoesNotFailSubmission(t *testing.T) {
	svc, notifier := newTestService(t)
	notifier.err = errors.New("smtp down")

	if _, err := svc.SubmitLead(SubmitLeadRequest{Name: "Ann", Email: "ann@example.com", Phone: "1", Country: "CY"}); err != nil {
		t.Errorf("SubmitLead() error = %v, notification failures must be swallowed", err)
	}
}

func TestUpdateStatusAndStats(t *testing.T) {
	svc, _ := newTestService(t)
	lead, _ := svc.SubmitLead(SubmitLeadRequest{Name: "Ann", Email: "ann@example.com", Phone: "1", Country: "CY"})

	if err := svc.UpdateStatus(lead.ID, "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bogus status error = %v, want ErrInvalidStatus", err)
	}
	if err := svc.UpdateStatus(lead.ID, store.StatusContacted); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats[store.StatusContacted] != 1 || stats[store.StatusNew] != 0 {
		t.Errorf("stats = %v", stats)
	}
	if len(stats) != len(store.LeadStatuses) {
		t.Errorf("stats should list every status, got %v", stats)
	}

	if _, err := svc.ListLeads("bogus", 1); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("ListLeads(bogus) error = %v, want ErrInvalidStatus", err)
	}
}

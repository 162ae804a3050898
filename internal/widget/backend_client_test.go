package widget

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"whisp.dev/chat-widget/internal/api"
	"whisp.dev/chat-widget/internal/config"
	"whisp.dev/chat-widget/internal/core"
	"whisp.dev/chat-widget/internal/store"
)

func newLeadServer(t *testing.T) (*httptest.Server, *core.LeadService) {
	t.Helper()
	saved := config.AppConfig
	t.Cleanup(func() { config.AppConfig = saved })
	config.AppConfig = config.Config{NonceSecret: "widget-test-secret", NonceTTLHours: 1}

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "leads.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc := core.NewLeadService(st, core.LogNotifier{})
	srv := httptest.NewServer(api.NewRouter(api.NewAPIHandler(svc)))
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestHTTPBackendAgainstServer(t *testing.T) {
	srv, svc := newLeadServer(t)
	backend, err := NewHTTPBackend(srv.URL+"/", srv.Client())
	if err != nil {
		t.Fatalf("NewHTTPBackend() error = %v", err)
	}
	ctx := context.Background()

	fields := LeadFields{Name: "Ann", Email: "a@b.com", Phone: "1", Country: "Cyprus"}
	leadID, err := backend.SubmitLead(ctx, fields)
	if err != nil {
		t.Fatalf("SubmitLead() error = %v", err)
	}

	fields.Name = "Anna"
	again, err := backend.SubmitLead(ctx, fields)
	if err != nil || again != leadID {
		t.Fatalf("resubmission = %q, %v; want the same lead %q", again, err, leadID)
	}

	reply, err := backend.SendMessage(ctx, leadID, "Tell me about PAMM")
	if err != nil || reply != MessageFallback {
		t.Fatalf("SendMessage() = %q, %v", reply, err)
	}

	lead, _ := svc.GetLead(leadID)
	if lead.Name != "Anna" || len(lead.ChatMessages) != 1 {
		t.Errorf("stored lead = %+v", lead)
	}
}

func TestHTTPBackendRejections(t *testing.T) {
	srv, _ := newLeadServer(t)
	backend, _ := NewHTTPBackend(srv.URL, srv.Client())
	ctx := context.Background()

	_, err := backend.SubmitLead(ctx, LeadFields{Name: "Ann", Email: "bad", Phone: "1", Country: "CY"})
	var rejection *BackendRejection
	if !errors.As(err, &rejection) || len(rejection.Errors) != 1 || rejection.Errors[0] != "Valid email is required" {
		t.Errorf("SubmitLead(bad email) error = %v", err)
	}

	_, err = backend.SendMessage(ctx, "no-such-lead", "hi")
	if !errors.As(err, &rejection) || rejection.Message != "Lead not found" {
		t.Errorf("SendMessage(unknown lead) error = %v", err)
	}
}

func TestHTTPBackendTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	backend, _ := NewHTTPBackend(srv.URL, srv.Client())
	_, err := backend.SendMessage(context.Background(), "lead-1", "hi")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("non-JSON answer error = %v, want TransportError", err)
	}

	srv.Close()
	_, err = backend.SubmitLead(context.Background(), LeadFields{Name: "a", Email: "a@b.com", Phone: "1", Country: "c"})
	if !errors.As(err, &transportErr) {
		t.Errorf("closed server error = %v, want TransportError", err)
	}
}

func TestHTTPBackendRefreshesNonceAfterForbidden(t *testing.T) {
	var configFetches atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/widget/config", func(w http.ResponseWriter, r *http.Request) {
		configFetches.Add(1)
		w.Write([]byte(`{"ajax_url":"/api/ajax","lead_nonce":"l","message_nonce":"m"}`))
	})
	mux.HandleFunc("/api/ajax", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"data":{"message":"Security check failed"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	backend, _ := NewHTTPBackend(srv.URL, srv.Client())
	for i := 0; i < 2; i++ {
		_, err := backend.SendMessage(context.Background(), "lead-1", "hi")
		var rejection *BackendRejection
		if !errors.As(err, &rejection) {
			t.Fatalf("forbidden answer error = %v, want BackendRejection", err)
		}
	}
	if got := configFetches.Load(); got != 2 {
		t.Errorf("config fetched %d times, want 2", got)
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"whisp.dev/chat-widget/internal/auth"
	"whisp.dev/chat-widget/internal/config"
	"whisp.dev/chat-widget/internal/core"
	"whisp.dev/chat-widget/internal/store"
)

type decodedResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	saved := config.AppConfig
	t.Cleanup(func() { config.AppConfig = saved })

	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	config.AppConfig = config.Config{
		NonceSecret:       "test-secret",
		NonceTTLHours:     1,
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
	}

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return NewRouter(NewAPIHandler(core.NewLeadService(st, core.LogNotifier{})))
}

func postForm(t *testing.T, router http.Handler, form url.Values) (*httptest.ResponseRecorder, decodedResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ajax", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var resp decodedResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %q", rr.Body.String())
	}
	return rr, resp
}

func widgetNonces(t *testing.T, router http.Handler) WidgetConfigResponse {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/widget/config", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("widget config status = %d", rr.Code)
	}
	var cfg WidgetConfigResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode widget config: %v", err)
	}
	return cfg
}

func submitTestLead(t *testing.T, router http.Handler, nonce string) string {
	t.Helper()
	_, resp := postForm(t, router, url.Values{
		"action":  {ActionSubmitLead},
		"nonce":   {nonce},
		"name":    {"Ann"},
		"email":   {"ann@example.com"},
		"phone":   {"+357 1234"},
		"country": {"Cyprus"},
	})
	if !resp.Success {
		t.Fatalf("lead submission failed: %s", resp.Data)
	}
	var data struct {
		LeadID string `json:"lead_id"`
	}
	json.Unmarshal(resp.Data, &data)
	if data.LeadID == "" {
		t.Fatal("lead_id missing from response")
	}
	return data.LeadID
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("health status = %d", rr.Code)
	}
}

func TestSubmitLeadAndSendMessage(t *testing.T) {
	router := newTestRouter(t)
	nonces := widgetNonces(t, router)

	leadID := submitTestLead(t, router, nonces.LeadNonce)

	rr, resp := postForm(t, router, url.Values{
		"action":  {ActionSendMessage},
		"nonce":   {nonces.MessageNonce},
		"lead_id": {leadID},
		"message": {"Tell me about PAMM"},
	})
	if rr.Code != http.StatusOK || !resp.Success {
		t.Fatalf("send message: status %d body %s", rr.Code, rr.Body.String())
	}
	var data map[string]string
	json.Unmarshal(resp.Data, &data)
	if data["message"] != "Message saved successfully" || data["response"] != core.MessageAcknowledgment {
		t.Errorf("send message data = %v", data)
	}
}

func TestSubmitLeadValidationErrors(t *testing.T) {
	router := newTestRouter(t)
	nonces := widgetNonces(t, router)

	rr, resp := postForm(t, router, url.Values{
		"action": {ActionSubmitLead},
		"nonce":  {nonces.LeadNonce},
		"name":   {"Ann"},
		"email":  {"nope"},
	})
	if rr.Code != http.StatusOK || resp.Success {
		t.Fatalf("status %d success %v, want 200 and failure", rr.Code, resp.Success)
	}
	var data struct {
		Errors []string `json:"errors"`
	}
	json.Unmarshal(resp.Data, &data)
	want := []string{"Valid email is required", "Phone number is required", "Country is required"}
	if strings.Join(data.Errors, "|") != strings.Join(want, "|") {
		t.Errorf("errors = %v, want %v", data.Errors, want)
	}
}

func TestAjaxNonceChecks(t *testing.T) {
	router := newTestRouter(t)
	nonces := widgetNonces(t, router)

	tests := []struct {
		name  string
		form  url.Values
		code  int
		inMsg string
	}{
		{"missing nonce", url.Values{"action": {ActionSubmitLead}}, http.StatusForbidden, "Security check failed"},
		{"message nonce used for lead", url.Values{"action": {ActionSubmitLead}, "nonce": {nonces.MessageNonce}}, http.StatusForbidden, "Security check failed"},
		{"lead nonce used for message", url.Values{"action": {ActionSendMessage}, "nonce": {nonces.LeadNonce}}, http.StatusForbidden, "Security check failed"},
		{"unknown action", url.Values{"action": {"delete_everything"}}, http.StatusBadRequest, "Unknown action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := postForm(t, router, tt.form)
			if rr.Code != tt.code {
				t.Errorf("status = %d, want %d", rr.Code, tt.code)
			}
			if resp.Success || !strings.Contains(string(resp.Data), tt.inMsg) {
				t.Errorf("response = %s", rr.Body.String())
			}
		})
	}
}

func TestSendMessageRejections(t *testing.T) {
	router := newTestRouter(t)
	nonces := widgetNonces(t, router)

	tests := []struct {
		name    string
		leadID  string
		message string
		want    string
	}{
		{"empty message", "abc", "  ", "Invalid request"},
		{"missing lead", "", "hi", "Invalid request"},
		{"unknown lead", "does-not-exist", "hi", "Lead not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp := postForm(t, router, url.Values{
				"action":  {ActionSendMessage},
				"nonce":   {nonces.MessageNonce},
				"lead_id": {tt.leadID},
				"message": {tt.message},
			})
			var data map[string]string
			json.Unmarshal(resp.Data, &data)
			if resp.Success || data["message"] != tt.want {
				t.Errorf("got success=%v message=%q, want %q", resp.Success, data["message"], tt.want)
			}
		})
	}
}

func adminToken(t *testing.T, router http.Handler) string {
	t.Helper()
	rr := httptest.NewRecorder()
	body := `{"username":"admin","password":"s3cret"}`
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d body %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(rr.Body.Bytes(), &resp)
	return resp["token"]
}

func TestAdminLogin(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"admin","password":"wrong"}`)))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", rr.Code)
	}

	if adminToken(t, router) == "" {
		t.Error("login returned no token")
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)
	nonces := widgetNonces(t, router)

	for _, header := range []string{"", "Bearer " + nonces.LeadNonce} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/leads", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Authorization %q: status = %d, want 401", header, rr.Code)
		}
	}
}

func TestAdminLeadLifecycle(t *testing.T) {
	router := newTestRouter(t)
	nonces := widgetNonces(t, router)
	leadID := submitTestLead(t, router, nonces.LeadNonce)
	token := adminToken(t, router)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodGet, "/api/admin/leads?page=1", "")
	var page core.LeadPage
	json.Unmarshal(rr.Body.Bytes(), &page)
	if rr.Code != http.StatusOK || page.Total != 1 || page.Leads[0].ID != leadID {
		t.Fatalf("list leads: status %d body %s", rr.Code, rr.Body.String())
	}

	if rr := do(http.MethodGet, "/api/admin/leads/"+leadID, ""); rr.Code != http.StatusOK {
		t.Errorf("get lead status = %d", rr.Code)
	}
	if rr := do(http.MethodGet, "/api/admin/leads/missing", ""); rr.Code != http.StatusNotFound {
		t.Errorf("get missing lead status = %d, want 404", rr.Code)
	}

	if rr := do(http.MethodPut, "/api/admin/leads/"+leadID+"/status", `{"status":"bogus"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("bogus status code = %d, want 400", rr.Code)
	}
	if rr := do(http.MethodPut, "/api/admin/leads/"+leadID+"/status", `{"status":"qualified"}`); rr.Code != http.StatusNoContent {
		t.Errorf("update status code = %d, want 204", rr.Code)
	}
	if rr := do(http.MethodPut, "/api/admin/leads/missing/status", `{"status":"qualified"}`); rr.Code != http.StatusNotFound {
		t.Errorf("update missing lead code = %d, want 404", rr.Code)
	}

	rr = do(http.MethodGet, "/api/admin/stats", "")
	var stats map[string]int
	json.Unmarshal(rr.Body.Bytes(), &stats)
	if stats["qualified"] != 1 || stats["new"] != 0 {
		t.Errorf("stats = %v", stats)
	}
}

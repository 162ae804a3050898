package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Wire names shared with the server's ajax endpoint.
const (
	actionSubmitLead  = "submit_chat_lead"
	actionSendMessage = "send_chat_message"
	widgetConfigPath  = "/api/widget/config"
)

type widgetEndpoint struct {
	AjaxURL      string `json:"ajax_url"`
	LeadNonce    string `json:"lead_nonce"`
	MessageNonce string `json:"message_nonce"`
}

type ajaxResponse struct {
	Success bool `json:"success"`
	Data    struct {
		LeadID   string   `json:"lead_id"`
		Message  string   `json:"message"`
		Response string   `json:"response"`
		Errors   []string `json:"errors"`
	} `json:"data"`
}

// HTTPBackend talks to the server's form-encoded ajax endpoint. Nonces are
// fetched from the widget config route on first use and refetched after a
// rejected security check.
type HTTPBackend struct {
	baseURL *url.URL
	client  *http.Client

	mu       sync.Mutex
	endpoint *widgetEndpoint
}

func NewHTTPBackend(baseURL string, client *http.Client) (*HTTPBackend, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", baseURL, err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBackend{baseURL: u, client: client}, nil
}

func (b *HTTPBackend) SubmitLead(ctx context.Context, fields LeadFields) (string, error) {
	ep, err := b.config(ctx)
	if err != nil {
		return "", err
	}
	resp, err := b.post(ctx, ep, actionSubmitLead, url.Values{
		"action":  {actionSubmitLead},
		"nonce":   {ep.LeadNonce},
		"name":    {fields.Name},
		"email":   {fields.Email},
		"phone":   {fields.Phone},
		"country": {fields.Country},
	})
	if err != nil {
		return "", err
	}
	if !resp.Success || resp.Data.LeadID == "" {
		return "", &BackendRejection{Op: actionSubmitLead, Errors: resp.Data.Errors, Message: resp.Data.Message}
	}
	return resp.Data.LeadID, nil
}

func (b *HTTPBackend) SendMessage(ctx context.Context, leadID, text string) (string, error) {
	ep, err := b.config(ctx)
	if err != nil {
		return "", err
	}
	resp, err := b.post(ctx, ep, actionSendMessage, url.Values{
		"action":  {actionSendMessage},
		"nonce":   {ep.MessageNonce},
		"lead_id": {leadID},
		"message": {text},
	})
	if err != nil {
		return "", err
	}
	if !resp.Success || resp.Data.Response == "" {
		return "", &BackendRejection{Op: actionSendMessage, Message: resp.Data.Message}
	}
	return resp.Data.Response, nil
}

func (b *HTTPBackend) config(ctx context.Context) (*widgetEndpoint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.endpoint != nil {
		return b.endpoint, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.resolve(widgetConfigPath), nil)
	if err != nil {
		return nil, &TransportError{Op: "widget config", Err: err}
	}
	res, err := b.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "widget config", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &TransportError{Op: "widget config", Err: fmt.Errorf("unexpected status %d", res.StatusCode)}
	}
	var ep widgetEndpoint
	if err := json.NewDecoder(res.Body).Decode(&ep); err != nil {
		return nil, &TransportError{Op: "widget config", Err: err}
	}
	if ep.AjaxURL == "" {
		ep.AjaxURL = "/api/ajax"
	}
	b.endpoint = &ep
	return b.endpoint, nil
}

// forgetConfig drops cached nonces so the next call fetches fresh ones.
func (b *HTTPBackend) forgetConfig() {
	b.mu.Lock()
	b.endpoint = nil
	b.mu.Unlock()
}

func (b *HTTPBackend) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return b.baseURL.String() + ref
	}
	return b.baseURL.ResolveReference(u).String()
}

func (b *HTTPBackend) post(ctx context.Context, ep *widgetEndpoint, action string, form url.Values) (*ajaxResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.resolve(ep.AjaxURL), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Op: action, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := b.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: action, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusForbidden {
		logrus.WithField("action", action).Warn("Backend rejected the nonce, refreshing widget config")
		b.forgetConfig()
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Op: action, Err: err}
	}
	var resp ajaxResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Op: action, Err: fmt.Errorf("decoding response (status %d): %w", res.StatusCode, err)}
	}
	return &resp, nil
}

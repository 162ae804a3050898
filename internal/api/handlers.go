package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"whisp.dev/chat-widget/internal/auth"
	"whisp.dev/chat-widget/internal/config"
	"whisp.dev/chat-widget/internal/core"
	"whisp.dev/chat-widget/internal/store"
	"whisp.dev/chat-widget/internal/utils"
)

const (
	ActionSubmitLead  = "submit_chat_lead"
	ActionSendMessage = "send_chat_message"
)

type ctxKey string

const adminCtxKey ctxKey = "adminUser"

var validate = validator.New()

type APIHandler struct {
	leadService *core.LeadService
}

func NewAPIHandler(ls *core.LeadService) *APIHandler {
	return &APIHandler{leadService: ls}
}

// WidgetConfigResponse is what a page embeds so the widget can reach the backend.
type WidgetConfigResponse struct {
	AjaxURL      string `json:"ajax_url"`
	LeadNonce    string `json:"lead_nonce"`
	MessageNonce string `json:"message_nonce"`
}

func (h *APIHandler) WidgetConfigHandler(w http.ResponseWriter, r *http.Request) {
	leadNonce, err := auth.GenerateNonce(auth.NonceActionLead)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate lead nonce")
		http.Error(w, "Failed to generate nonce", http.StatusInternalServerError)
		return
	}
	messageNonce, err := auth.GenerateNonce(auth.NonceActionMessage)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate message nonce")
		http.Error(w, "Failed to generate nonce", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, WidgetConfigResponse{
		AjaxURL:      "/api/ajax",
		LeadNonce:    leadNonce,
		MessageNonce: messageNonce,
	})
}

// AjaxHandler dispatches the widget's form-encoded calls on their action field.
func (h *APIHandler) AjaxHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sendError(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	switch r.PostFormValue("action") {
	case ActionSubmitLead:
		if !h.checkNonce(w, r, auth.NonceActionLead) {
			return
		}
		h.submitLead(w, r)
	case ActionSendMessage:
		if !h.checkNonce(w, r, auth.NonceActionMessage) {
			return
		}
		h.sendChatMessage(w, r)
	default:
		sendError(w, http.StatusBadRequest, map[string]string{"message": "Unknown action"})
	}
}

func (h *APIHandler) checkNonce(w http.ResponseWriter, r *http.Request, action string) bool {
	if err := auth.VerifyNonce(r.PostFormValue("nonce"), action); err != nil {
		logrus.WithFields(logrus.Fields{"action": action, "ip": utils.ClientIP(r), "error": err}).Warn("Nonce check failed")
		sendError(w, http.StatusForbidden, map[string]string{"message": "Security check failed"})
		return false
	}
	return true
}

func (h *APIHandler) submitLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leadService.SubmitLead(core.SubmitLeadRequest{
		Name:      r.PostFormValue("name"),
		Email:     r.PostFormValue("email"),
		Phone:     r.PostFormValue("phone"),
		Country:   r.PostFormValue("country"),
		IPAddress: utils.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		var fieldErrs core.FieldErrors
		if errors.As(err, &fieldErrs) {
			sendError(w, http.StatusOK, map[string][]string{"errors": fieldErrs})
			return
		}
		utils.LogError("lead_submission", err, map[string]interface{}{"ip": utils.ClientIP(r)})
		sendError(w, http.StatusOK, map[string]string{"message": "Failed to save lead"})
		return
	}

	sendSuccess(w, map[string]string{
		"lead_id": lead.ID,
		"message": "Lead captured successfully",
	})
}

func (h *APIHandler) sendChatMessage(w http.ResponseWriter, r *http.Request) {
	leadID := r.PostFormValue("lead_id")
	reply, err := h.leadService.PostMessage(leadID, r.PostFormValue("message"))
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidRequest):
			sendError(w, http.StatusOK, map[string]string{"message": "Invalid request"})
		case errors.Is(err, store.ErrLeadNotFound):
			sendError(w, http.StatusOK, map[string]string{"message": "Lead not found"})
		default:
			utils.LogError("chat_message", err, map[string]interface{}{"lead_id": leadID})
			sendError(w, http.StatusOK, map[string]string{"message": "Failed to save message"})
		}
		return
	}

	sendSuccess(w, map[string]string{
		"message":  "Message saved successfully",
		"response": reply,
	})
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *APIHandler) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	if req.Username != config.AppConfig.AdminUsername || !auth.CheckPasswordHash(req.Password, config.AppConfig.AdminPasswordHash) {
		utils.LogEvent("admin_login_failed", map[string]interface{}{"username": req.Username, "ip": utils.ClientIP(r)})
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateAdminJWT(req.Username)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate admin JWT")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		username, err := auth.ValidateAdminJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), adminCtxKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *APIHandler) ListLeadsHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	status := store.LeadStatus(r.URL.Query().Get("status"))

	result, err := h.leadService.ListLeads(status, page)
	if err != nil {
		if errors.Is(err, core.ErrInvalidStatus) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logrus.WithError(err).Error("Error listing leads")
		http.Error(w, "Failed to list leads", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) GetLeadHandler(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")

	lead, err := h.leadService.GetLead(leadID)
	if err != nil {
		logrus.WithFields(logrus.Fields{"lead_id": leadID, "error": err}).Error("Error getting lead")
		http.Error(w, "Failed to get lead", http.StatusInternalServerError)
		return
	}
	if lead == nil {
		http.Error(w, "Lead not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified converted closed"`
}

func (h *APIHandler) UpdateLeadStatusHandler(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Invalid lead status", http.StatusBadRequest)
		return
	}

	err := h.leadService.UpdateStatus(leadID, store.LeadStatus(req.Status))
	if err != nil {
		if errors.Is(err, store.ErrLeadNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		logrus.WithFields(logrus.Fields{"lead_id": leadID, "error": err}).Error("Error updating lead status")
		http.Error(w, "Failed to update status", http.StatusInternalServerError)
		return
	}

	utils.LogEvent("lead_status_changed", map[string]interface{}{
		"lead_id": leadID,
		"status":  req.Status,
		"by":      r.Context().Value(adminCtxKey),
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.leadService.Stats()
	if err != nil {
		logrus.WithError(err).Error("Error computing lead stats")
		http.Error(w, "Failed to compute stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

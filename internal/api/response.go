package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// AjaxResponse is the {success, data} envelope the widget understands.
type AjaxResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		logrus.WithError(err).Warn("Failed to write JSON response")
	}
}

func sendSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, AjaxResponse{Success: true, Data: data})
}

func sendError(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, AjaxResponse{Success: false, Data: data})
}

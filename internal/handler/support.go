package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/menezmethod/handoff/internal/apierror"
	"github.com/menezmethod/handoff/internal/support"
)

// Submitter sends a request to the support chain.
type Submitter interface {
	Submit(req support.Request) support.Outcome
}

// SupportRequest is the body of POST /v1/support.
type SupportRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// SupportResponse reports which handler, if any, took the request.
type SupportResponse struct {
	Handler string `json:"handler,omitempty"`
	Handled bool   `json:"handled"`
	Message string `json:"message"`
}

// Support routes a request through the support chain. An unhandled request
// is still a 200; the body says it was not handled.
//
//	POST /v1/support
func Support(desk Submitter, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SupportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierror.Write(w, apierror.InvalidRequest("Invalid JSON in request body: "+err.Error()))
			return
		}

		req.Type = strings.TrimSpace(req.Type)
		if req.Type == "" {
			apierror.Write(w, apierror.InvalidParam("type", "type is required"))
			return
		}

		outcome := desk.Submit(support.NewRequest(req.Type, req.Content))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(SupportResponse{
			Handler: outcome.Handler,
			Handled: outcome.Handled,
			Message: outcome.Message,
		}); err != nil {
			logger.Error("failed to encode support response", "err", err)
		}
	}
}

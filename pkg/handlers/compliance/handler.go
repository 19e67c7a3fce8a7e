package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/de-tools/sec-atlas/pkg/adapters"
	"github.com/de-tools/sec-atlas/pkg/models/api"
	"github.com/de-tools/sec-atlas/pkg/models/domain"
	"github.com/de-tools/sec-atlas/pkg/services/assistant"
	"github.com/de-tools/sec-atlas/pkg/services/compliance"
)

type Handler struct {
	svc    compliance.Service
	bridge assistant.Bridge
}

func NewHandler(svc compliance.Service, bridge assistant.Bridge) *Handler {
	return &Handler{svc: svc, bridge: bridge}
}

func (h *Handler) RunChecks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CheckRequest
	if !decode(w, r, &req) {
		return
	}

	report, err := h.svc.RunChecks(ctx, domain.Credentials{
		ProjectURL: req.ProjectURL,
		ServiceKey: req.ServiceKey,
		DBURL:      req.DBURL,
	})
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	writeJSON(w, ctx, http.StatusOK, adapters.MapReportDomainToApi(report))
}

func (h *Handler) FixRLS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RLSFixRequest
	if !decode(w, r, &req) {
		return
	}

	fix, err := h.svc.FixRLS(ctx, domain.Credentials{
		ProjectURL: req.ProjectURL,
		ServiceKey: req.ServiceKey,
		DBURL:      req.DBURL,
	}, req.Table)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	writeJSON(w, ctx, http.StatusOK, api.RLSFixResponse{Message: fix.Message, Table: fix.Table})
}

func (h *Handler) FixMFA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.MFAFixRequest
	if !decode(w, r, &req) {
		return
	}

	fix, err := h.svc.FixMFA(ctx, domain.Credentials{
		ProjectURL: req.ProjectURL,
		ServiceKey: req.ServiceKey,
	}, req.UserID)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	writeJSON(w, ctx, http.StatusOK, api.MFAFixResponse{Message: fix.Message, UserID: fix.UserID, Email: fix.Email})
}

func (h *Handler) FixPITR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.PITRFixRequest
	if !decode(w, r, &req) {
		return
	}

	fix, err := h.svc.FixPITR(ctx, domain.Credentials{
		ProjectURL: req.ProjectURL,
		ServiceKey: req.ServiceKey,
	}, req.ProjectRef)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	writeJSON(w, ctx, http.StatusOK, api.PITRFixResponse{Message: fix.Message, ProjectRef: fix.ProjectRef})
}

func (h *Handler) Assist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.AssistantRequest
	if !decode(w, r, &req) {
		return
	}

	creds := domain.Credentials{ProjectURL: req.ProjectURL, ServiceKey: req.ServiceKey}
	if err := creds.Validate(); err != nil {
		writeError(w, ctx, err)
		return
	}

	answer, err := h.bridge.Ask(ctx, req.Question, req.Context)
	if err != nil {
		writeError(w, ctx, err)
		return
	}
	writeJSON(w, ctx, http.StatusOK, api.AssistantResponse{Answer: answer.Answer, Timestamp: answer.Timestamp})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r.Context(), http.StatusOK, map[string]string{
		"service": "sec-atlas",
		"status":  "ok",
	})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r.Context(), &domain.InvalidInputError{Message: "invalid JSON request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, ctx context.Context, status int, payload any) {
	logger := zerolog.Ctx(ctx)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := zerolog.Ctx(ctx)

	status := http.StatusInternalServerError
	var invalid *domain.InvalidInputError
	if errors.As(err, &invalid) {
		status = http.StatusBadRequest
	}

	logger.Warn().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, ctx, status, api.ErrorResponse{Error: err.Error()})
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	historyApp "github.com/felixgeelhaar/lingua/internal/history/application"
	historyDomain "github.com/felixgeelhaar/lingua/internal/history/domain"
	licensingApp "github.com/felixgeelhaar/lingua/internal/licensing/application"
	licensingDomain "github.com/felixgeelhaar/lingua/internal/licensing/domain"
	translationApp "github.com/felixgeelhaar/lingua/internal/translation/application"
	translationDomain "github.com/felixgeelhaar/lingua/internal/translation/domain"
)

const maxBodyBytes = 1 << 20

// Handler serves the translation, history and license endpoints.
type Handler struct {
	translation *translationApp.Service
	license     *licensingApp.Manager
	history     *historyApp.Store
	logger      *slog.Logger
}

// HandlerConfig holds dependencies for the handler.
type HandlerConfig struct {
	Translation *translationApp.Service
	License     *licensingApp.Manager
	History     *historyApp.Store
	Logger      *slog.Logger
}

// NewHandler creates a new handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		translation: cfg.Translation,
		license:     cfg.License,
		history:     cfg.History,
		logger:      cfg.Logger,
	}
}

// AccessRequest is the body of POST /api/v1/access.
type AccessRequest struct {
	Provider string `json:"provider"`
	Tone     string `json:"tone"`
}

// ActivateRequest is the body of POST /api/v1/license/activate.
type ActivateRequest struct {
	LicenseKey string `json:"licenseKey"`
}

// ActivateResponse reports the outcome of an activation.
type ActivateResponse struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error,omitempty"`
	Trust   *translationApp.Trust `json:"trust,omitempty"`
}

// HistoryResponse lists local history.
type HistoryResponse struct {
	Items   []historyDomain.Item `json:"items"`
	Pending int                  `json:"pending"`
}

// GetTrust handles GET /api/v1/trust
func (h *Handler) GetTrust(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.translation.GetCurrentTrust(r.Context()))
}

// CheckAccess handles POST /api/v1/access
func (h *Handler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	var req AccessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	decision, err := h.translation.CheckAccess(r.Context(), req.Provider, req.Tone)
	if err != nil {
		writeError(w, ErrBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, decision)
}

// ListFeatures handles GET /api/v1/features
func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.translation.Features(r.Context()))
}

// Translate handles POST /api/v1/translations
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translationApp.TranslateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.translation.Translate(r.Context(), req)
	if err != nil {
		h.writeTranslateError(w, req.Provider, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeTranslateError(w http.ResponseWriter, provider string, err error) {
	switch {
	case errors.Is(err, translationDomain.ErrInvalidRequest),
		errors.Is(err, translationDomain.ErrUnknownProvider):
		writeError(w, ErrBadRequest, err.Error())
	case errors.Is(err, translationDomain.ErrAccessDenied):
		writeError(w, ErrForbidden, err.Error())
	case errors.Is(err, translationDomain.ErrProviderNotConfigured):
		writeError(w, ErrPreconditionFailed, err.Error())
	default:
		h.logger.Error("translation failed", "provider", provider, "error", err)
		writeError(w, ErrBadGateway, err.Error())
	}
}

// ListHistory handles GET /api/v1/history
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	items, err := h.history.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list history", "error", err)
		writeError(w, ErrInternalServer, "Failed to list history")
		return
	}

	pending, err := h.history.PendingCount(r.Context())
	if err != nil {
		h.logger.Error("failed to count pending items", "error", err)
		writeError(w, ErrInternalServer, "Failed to list history")
		return
	}

	if items == nil {
		items = []historyDomain.Item{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Items: items, Pending: pending})
}

// ClearHistory handles DELETE /api/v1/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear history", "error", err)
		writeError(w, ErrInternalServer, "Failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncHistory handles POST /api/v1/history/sync
func (h *Handler) SyncHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result := h.history.SyncToCloud(ctx, h.translation.Session(ctx))
	writeJSON(w, cloudStatus(result.Success, result.Kind), result)
}

// FetchHistory handles POST /api/v1/history/fetch
func (h *Handler) FetchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result := h.history.FetchFromCloud(ctx, h.translation.Session(ctx))
	writeJSON(w, cloudStatus(result.Success, result.Kind), result)
}

// cloudStatus maps a structured cloud result onto an HTTP status.
func cloudStatus(success bool, kind historyDomain.FailureKind) int {
	if success {
		return http.StatusOK
	}
	switch kind {
	case historyDomain.FailureAccess:
		return http.StatusForbidden
	case historyDomain.FailureNotConfigured:
		return http.StatusPreconditionFailed
	case historyDomain.FailureStorage:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// ActivateLicense handles POST /api/v1/license/activate
func (h *Handler) ActivateLicense(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, result, err := h.license.Activate(r.Context(), req.LicenseKey)
	if err != nil {
		h.logger.Error("failed to store license", "error", err)
		writeError(w, ErrInternalServer, "Failed to store license")
		return
	}

	if !result.Valid {
		writeJSON(w, activationStatus(result), ActivateResponse{Error: result.Error})
		return
	}

	trust := h.translation.GetCurrentTrust(r.Context())
	writeJSON(w, http.StatusOK, ActivateResponse{Success: true, Trust: &trust})
}

func activationStatus(result licensingDomain.ValidationResult) int {
	err := result.Err()
	switch {
	case errors.Is(err, licensingDomain.ErrLicenseKeyRequired):
		return http.StatusBadRequest
	case errors.Is(err, licensingDomain.ErrNetworkError):
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

// DeactivateLicense handles DELETE /api/v1/license
func (h *Handler) DeactivateLicense(w http.ResponseWriter, r *http.Request) {
	if err := h.license.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear license", "error", err)
		writeError(w, ErrInternalServer, "Failed to clear license")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, ErrBadRequest, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

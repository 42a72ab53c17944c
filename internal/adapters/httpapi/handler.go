// Package httpapi serves the ripperdoc engine as JSON over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ripperdoc/internal/blob"
	"ripperdoc/internal/core"
	"ripperdoc/internal/pricing"
	"ripperdoc/pkg/domain"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Service is the engine surface the handler needs.
type Service interface {
	ListCharacters() []domain.Character
	GetCharacter(id string) (domain.Character, error)
	CreateCharacter(ctx context.Context, draft core.CharacterDraft) (domain.Character, error)
	UpdateCharacter(ctx context.Context, id string, patch core.CharacterPatch) (domain.Character, error)
	DeleteCharacter(ctx context.Context, id string) error

	ListCyberware(category domain.Category, sort string) ([]domain.CyberwareCatalogItem, error)
	GetCyberware(id string) (domain.CyberwareCatalogItem, error)
	SeedCatalog(ctx context.Context) (int, error)
	EstimateCost(ctx context.Context, cyberwareID string, opts domain.InstallationOptions) (pricing.Quote, error)
	PerformInstallation(ctx context.Context, characterID, cyberwareID string, opts domain.InstallationOptions) (core.InstallOutcome, error)
	ListInstallations(characterID string) ([]domain.Installation, error)
	ResolveComplication(ctx context.Context, installationID, complication string) (domain.Installation, error)

	CreateSave(ctx context.Context, characterID, name, description string) (domain.SaveSlot, error)
	ListSaves(characterID string) ([]domain.SaveSlot, error)
	GetSave(id string) (domain.SaveSlot, error)
	DeleteSave(ctx context.Context, id string) error
	ExportSave(ctx context.Context, id string) (blob.Info, error)
}

var _ Service = (*core.Service)(nil)

// Handler routes the /api surface plus /healthz and /metrics.
type Handler struct {
	svc     Service
	logger  core.Logger
	metrics http.Handler
	mux     *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for unexpected failures.
func WithLogger(l core.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(m http.Handler) Option {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler constructs the HTTP handler for svc.
func NewHandler(svc Service, opts ...Option) *Handler {
	h := &Handler{svc: svc, logger: nopLogger{}, mux: http.NewServeMux()}
	for _, opt := range opts {
		opt(h)
	}
	h.routes()
	return h
}

func (h *Handler) routes() {
	h.mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics)
	}

	h.mux.HandleFunc("GET /api/characters", h.handleListCharacters)
	h.mux.HandleFunc("POST /api/characters", h.handleCreateCharacter)
	h.mux.HandleFunc("GET /api/characters/{id}", h.handleGetCharacter)
	h.mux.HandleFunc("PATCH /api/characters/{id}", h.handleUpdateCharacter)
	h.mux.HandleFunc("DELETE /api/characters/{id}", h.handleDeleteCharacter)
	h.mux.HandleFunc("POST /api/characters/{id}/cyberware/install", h.handleInstall)
	h.mux.HandleFunc("GET /api/characters/{id}/cyberware/installations", h.handleListInstallations)

	h.mux.HandleFunc("GET /api/cyberware", h.handleListCyberware)
	h.mux.HandleFunc("GET /api/cyberware/{id}", h.handleGetCyberware)
	h.mux.HandleFunc("POST /api/cyberware/estimate", h.handleEstimate)
	h.mux.HandleFunc("POST /api/cyberware/seed", h.handleSeed)
	h.mux.HandleFunc("PATCH /api/cyberware/installations/{id}", h.handleResolveComplication)

	h.mux.HandleFunc("GET /api/saves/{characterId}", h.handleListSaves)
	h.mux.HandleFunc("GET /api/saves/slot/{id}", h.handleGetSave)
	h.mux.HandleFunc("POST /api/saves", h.handleCreateSave)
	h.mux.HandleFunc("DELETE /api/saves/{id}", h.handleDeleteSave)
	h.mux.HandleFunc("POST /api/saves/{id}/export", h.handleExportSave)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Message  string            `json:"message"`
	Code     domain.Code       `json:"code"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.CodeOf(err)
	status := code.HTTPStatus()
	body := errorBody{Message: err.Error(), Code: code}
	var derr *domain.Error
	if errors.As(err, &derr) {
		body.Metadata = derr.Metadata
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "code", code, "error", err)
		if code == domain.CodeUnknown {
			body.Message = "internal error"
		}
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads one JSON object from the body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return domain.WrapError(domain.CodeInvalidArgument, "read body", err)
	}
	return decodeBytes(data, dst)
}

func decodeBytes(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewError(domain.CodeInvalidArgument, fmt.Sprintf("invalid request body: %v", err))
	}
	if dec.More() {
		return domain.NewError(domain.CodeInvalidArgument, "invalid request body: trailing data")
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewError(domain.CodeInvalidArgument, field+" is required")
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Package handler is the thin HTTP layer over the client service. It
// delegates to the service without embedding business logic so transport
// concerns remain isolated.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clientele/internal/client/models"
	id "clientele/pkg/domain"
	dErrors "clientele/pkg/domain-errors"
	"clientele/pkg/requestcontext"
)

// ClientService is the application surface the handler depends on.
type ClientService interface {
	List(ctx context.Context) ([]models.Client, error)
	Get(ctx context.Context, clientID id.ClientID) (models.Client, error)
	Create(ctx context.Context, newData models.Client) (models.Client, error)
	Replace(ctx context.Context, clientID id.ClientID, newData models.Client) (models.Client, error)
	ChangeAddress(ctx context.Context, clientID id.ClientID, addr models.Address) (models.Client, error)
	ChangeFamilySituation(ctx context.Context, clientID id.ClientID, situation models.FamilySituation, children models.ChildrenCount) (models.Client, error)
	Delete(ctx context.Context, clientID id.ClientID) error
}

// Handler serves the client records API.
type Handler struct {
	svc    ClientService
	logger *slog.Logger
}

// New creates the handler.
func New(svc ClientService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the client routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/clients", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Route("/{clientID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleReplace)
			r.Delete("/", h.handleDelete)
			r.Put("/address", h.handleChangeAddress)
			r.Put("/situation", h.handleChangeSituation)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toResponses(clients))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	client, err := h.svc.Get(r.Context(), clientID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toResponse(client))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	newData, err := req.ToDomain()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	saved, err := h.svc.Create(r.Context(), newData)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, toResponse(saved))
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	newData, err := req.ToDomain()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	saved, err := h.svc.Replace(r.Context(), clientID, newData)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toResponse(saved))
}

func (h *Handler) handleChangeAddress(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req AddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	addr, err := req.ToDomain()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	saved, err := h.svc.ChangeAddress(r.Context(), clientID, addr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toResponse(saved))
}

func (h *Handler) handleChangeSituation(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req SituationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	situation, err := models.ParseFamilySituation(req.FamilySituation)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	children, err := models.NewChildrenCount(req.Children)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	saved, err := h.svc.ChangeFamilySituation(r.Context(), clientID, situation, children)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toResponse(saved))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), clientID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (id.ClientID, error) {
	return id.ParseClientID(chi.URLParam(r, "clientID"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write response",
			"error", err,
			"correlation_id", requestcontext.CorrelationID(r.Context()))
	}
}

// writeError centralizes domain error translation to HTTP responses so all
// endpoints share one JSON error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	status := statusOf(code)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"correlation_id", requestcontext.CorrelationID(r.Context()))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": string(code),
	})
}

func statusOf(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeInvalidAddress:
		return http.StatusUnprocessableEntity
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Package dbentry exposes a base64-safe debug surface over the engine's
// get/put/delete operations. It is not a binary wire protocol server,
// just a convenience surface for operators to poke the engine over
// HTTP. Keys and values are
// arbitrary bytes, so they travel as []byte fields, which the standard
// encoding/json package already marshals as base64 strings.
package dbentry

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"atlaskv/internal/application/service"
	"atlaskv/internal/domain"
)

type Handler struct {
	saveService   *service.SaveEntryService
	deleteService *service.DeleteEntryService
	getService    *service.GetEntryService
}

func NewHandler(saveService *service.SaveEntryService,
	deleteService *service.DeleteEntryService,
	getService *service.GetEntryService) *Handler {
	return &Handler{
		saveService:   saveService,
		deleteService: deleteService,
		getService:    getService,
	}
}

type entryResponse struct {
	Key   []byte `json:"key,omitempty"`
	Value []byte `json:"value,omitempty"`
}

type putRequest struct {
	Value []byte `json:"value"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	key := []byte(chi.URLParam(r, "key"))
	result := h.getService.Execute(service.GetEntryQuery{Key: key})
	if result.Err != nil {
		writeError(w, result.Err)
		return
	}
	if !result.Found {
		http.Error(w, "key not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entryResponse{Key: key, Value: result.Value})
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	key := []byte(chi.URLParam(r, "key"))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req putRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := h.saveService.Execute(service.SaveEntryCommand{Key: key, Value: req.Value})
	if result.Err != nil {
		writeError(w, result.Err)
		return
	}
	writeJSON(w, http.StatusOK, entryResponse{Key: result.Key, Value: result.Value})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key := []byte(chi.URLParam(r, "key"))
	result := h.deleteService.Execute(service.DeleteEntryCommand{Key: key})
	if result.Err != nil {
		writeError(w, result.Err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

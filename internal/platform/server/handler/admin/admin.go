// Package admin serves the engine's operational surface: a liveness
// probe and a snapshot of internal counters, used by operators rather
// than by any storage client.
package admin

import (
	"encoding/json"
	"net/http"

	"atlaskv/internal/platform/repository"
)

type Handler struct {
	repository *repository.EngineRepository
}

func NewHandler(repository *repository.EngineRepository) *Handler {
	return &Handler{repository: repository}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statsResponse struct {
	DataDir       string `json:"data_dir"`
	MemTableBytes int    `json:"memtable_bytes"`
	SSTableCount  int    `json:"sstable_count"`
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	s := h.repository.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(statsResponse{
		DataDir:       s.DataDir,
		MemTableBytes: s.MemTableBytes,
		SSTableCount:  s.SSTableCount,
	})
}

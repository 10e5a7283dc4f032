package board

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/whiteboard/backend-go/internal/engine"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name   string `json:"name"`
	Sample bool   `json:"sample"`
}

type selectionRequest struct {
	IDs []string `json:"ids"`
}

type resizeRequest struct {
	Property string  `json:"property"`
	Value    float64 `json:"value"`
	engine.Options
}

type resizeResponse struct {
	engine.Result
	Dimensions engine.Dimensions `json:"dimensions"`
	Errors     []string          `json:"errors,omitempty"`
}

// Routes registers the board API on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/boards", h.Create).Methods("POST")
	r.HandleFunc("/boards/{boardId}", h.Get).Methods("GET")
	r.HandleFunc("/boards/{boardId}/dimensions", h.Dimensions).Methods("GET")
	r.HandleFunc("/boards/{boardId}/selection", h.SetSelection).Methods("POST")
	r.HandleFunc("/boards/{boardId}/resize", h.Resize).Methods("POST")
	r.HandleFunc("/boards/{boardId}/snapshots", h.Save).Methods("POST")
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	b, err := h.service.Create(r.Context(), req.Name, req.Sample)
	if err != nil {
		slog.Error("create board failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Open(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, e.Board())
}

func (h *Handler) Dimensions(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Open(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, e.Dimensions())
}

func (h *Handler) SetSelection(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Open(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := e.SetSelection(req.IDs); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, e.Dimensions())
}

func (h *Handler) Resize(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Open(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	res, err := e.SetDimension(req.Property, req.Value, req.Options)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := resizeResponse{Result: res, Dimensions: e.Dimensions()}
	for _, f := range res.Failed {
		resp.Errors = append(resp.Errors, f.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["boardId"]
	if _, err := h.service.Open(r.Context(), boardID); err != nil {
		handleServiceError(w, err)
		return
	}

	written, err := h.service.Save(r.Context(), boardID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"saved": written})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, engine.ErrNoBoard):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid board id"})
	case errors.Is(err, engine.ErrInvalidProperty), errors.Is(err, engine.ErrNonNumericInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, engine.ErrNoGesture), errors.Is(err, engine.ErrResizeInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

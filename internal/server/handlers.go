package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/swapstudio/swapstudio-api/internal/config"
	"github.com/swapstudio/swapstudio-api/internal/generator"
	"github.com/swapstudio/swapstudio-api/internal/job"
	"github.com/swapstudio/swapstudio-api/internal/orchestrator"
)

const (
	serviceName    = "Swap Studio API"
	serviceVersion = "1.0.0"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	orchestrator *orchestrator.Orchestrator
	cfg          *config.Config
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(o *orchestrator.Orchestrator, cfg *config.Config, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		orchestrator: o,
		cfg:          cfg,
		validator:    validator.New(),
		logger:       logger,
	}
}

// Root handles GET / requests.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Message:  serviceName,
		Version:  serviceVersion,
		Provider: h.cfg.Provider(),
	})
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:              "healthy",
		Provider:            h.cfg.Provider(),
		FalConfigured:       h.cfg.FalEnabled(),
		KlingConfigured:     h.cfg.KlingEnabled(),
		ReplicateConfigured: h.cfg.ReplicateEnabled(),
	})
}

// CreateSwap handles POST /api/swap requests.
func (h *Handlers) CreateSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	quality := req.Quality
	if quality == "" {
		quality = "std"
	}

	created, err := h.orchestrator.StartSwap(r.Context(), generator.Request{
		Mode:      job.Mode(req.SwapMode),
		ImageData: req.ImageData,
		VideoData: req.VideoData,
		Prompt:    req.Prompt,
		Quality:   quality,
	})
	if err != nil {
		h.writeStartError(w, err)
		return
	}

	h.logger.Info("swap job created",
		slog.String("job_id", created.ID),
		slog.String("mode", string(created.Mode)),
		slog.String("provider", string(created.Provider)),
	)

	writeJSON(w, http.StatusOK, jobStatusResponse(created))
}

// GetSwap handles GET /api/swap/{id} requests.
func (h *Handlers) GetSwap(w http.ResponseWriter, r *http.Request) {
	h.getJob(w, r)
}

// CancelSwap handles DELETE /api/swap/{id} requests.
func (h *Handlers) CancelSwap(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	if err := h.orchestrator.CancelJob(r.Context(), jobID); err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		h.logger.Error("failed to cancel job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to cancel job", "JOB_CANCEL_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Job canceled"})
}

// CreateLipSync handles POST /api/lipsync requests.
func (h *Handlers) CreateLipSync(w http.ResponseWriter, r *http.Request) {
	var req LipSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	created, err := h.orchestrator.StartLipSync(r.Context(), generator.Request{
		VideoData: req.VideoData,
		AudioData: req.AudioData,
	})
	if err != nil {
		h.writeStartError(w, err)
		return
	}

	h.logger.Info("lipsync job created", slog.String("job_id", created.ID))

	writeJSON(w, http.StatusOK, jobStatusResponse(created))
}

// GetLipSync handles GET /api/lipsync/{id} requests.
func (h *Handlers) GetLipSync(w http.ResponseWriter, r *http.Request) {
	h.getJob(w, r)
}

func (h *Handlers) getJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	found, err := h.orchestrator.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get job", "JOB_FETCH_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, jobStatusResponse(found))
}

// writeStartError maps provider selection errors to responses. Missing
// credentials are a server misconfiguration, not a caller mistake.
func (h *Handlers) writeStartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrFalNotConfigured),
		errors.Is(err, orchestrator.ErrNoMotionProvider):
		writeError(w, http.StatusInternalServerError, err.Error(), "PROVIDER_NOT_CONFIGURED")
	default:
		h.logger.Error("failed to start job", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to start job", "JOB_CREATION_FAILED")
	}
}

// jobStatusResponse snapshots a job into its HTTP representation.
func jobStatusResponse(j *job.Job) JobStatusResponse {
	snapshot := j.Clone()
	return JobStatusResponse{
		JobID:     snapshot.ID,
		Status:    string(snapshot.Status),
		Progress:  snapshot.Progress,
		OutputURL: snapshot.OutputURL,
		Error:     snapshot.Error,
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

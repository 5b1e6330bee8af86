package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"neuroassist/internal/chat"
	"neuroassist/internal/detection"
	"neuroassist/internal/preview"
)

// App holds the wired orchestration core behind the HTTP surface.
type App struct {
	Previews      *preview.Store
	Controller    *detection.Controller
	Session       *chat.Session
	Logger        *zap.Logger
	MaxUploadSize int64
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

type scanResponse struct {
	Tumor         string             `json:"tumor"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Description   string             `json:"description"`
	FileName      string             `json:"fileName"`
	Preview       string             `json:"preview,omitempty"`
}

// ScanHandler receives a scan image, issues a preview handle for it and
// submits it for classification. The response mirrors the submission
// outcome; the chat session picks the outcome up through the bridge.
func (app *App) ScanHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "File too large (max 10MB)")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Please select an image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	sel := detection.Selection{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		FileName:    header.Filename,
	}

	// The preview handle tracks the selection, not the outcome: a scan
	// that fails classification still shows its preview, and the previous
	// handle is released either way.
	handle, err := app.Previews.Set(sel.FileName, sel.ContentType, bytes.NewReader(data))
	if err != nil {
		app.Logger.Warn("failed to store preview", zap.Error(err))
	}

	outcome := app.Controller.Submit(r.Context(), sel)
	if outcome.Kind == detection.KindFailure {
		status := http.StatusBadGateway
		if detection.ValidateSelection(sel) != nil {
			status = http.StatusBadRequest
		}
		respondError(w, status, outcome.Message)
		return
	}

	resp := scanResponse{
		Tumor:         outcome.Result.Tumor,
		Confidence:    outcome.Result.Confidence,
		Probabilities: outcome.Result.Probabilities,
		Description:   outcome.Result.Description,
		FileName:      outcome.Result.FileName,
	}
	if handle != nil {
		resp.Preview = "/preview/" + handle.Token
	}
	respondJSON(w, http.StatusOK, resp)
}

// RemoveScanHandler clears the current selection: the preview handle is
// released and an Absent outcome is published.
func (app *App) RemoveScanHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.Previews.Clear(); err != nil {
		app.Logger.Warn("failed to clear preview", zap.Error(err))
	}
	app.Controller.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// PreviewHandler serves the bytes behind the current preview handle.
func (app *App) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	file, handle, err := app.Previews.Open(token)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	stat, err := file.(interface{ Stat() (os.FileInfo, error) }).Stat()
	if err != nil {
		http.Error(w, "Error accessing preview file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", handle.ContentType)
	http.ServeContent(w, r, handle.FileName, stat.ModTime(), file)
}

type chatRequest struct {
	Message string `json:"message"`
}

// ChatHandler submits a user question to the session. Blank input is a
// no-op; questions without a current successful analysis are rejected.
func (app *App) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := app.Session.Ask(req.Message); err != nil {
		if errors.Is(err, chat.ErrNoAnalysis) {
			respondError(w, http.StatusConflict, "Upload a brain scan to begin")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to submit question")
		return
	}

	respondJSON(w, http.StatusAccepted, app.Session.Snapshot())
}

// TranscriptHandler returns the current session snapshot.
func (app *App) TranscriptHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, app.Session.Snapshot())
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

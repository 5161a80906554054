package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-review/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-review/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
)

// streamKeepalive is how often an idle review stream receives a ping
const streamKeepalive = 30 * time.Second

type ReviewHandler interface {
	OpenSession(w http.ResponseWriter, r *http.Request)
	CloseSession(w http.ResponseWriter, r *http.Request)
	ListRows(w http.ResponseWriter, r *http.Request)
	GetRow(w http.ResponseWriter, r *http.Request)
	SubmitEdit(w http.ResponseWriter, r *http.Request)
	Compare(w http.ResponseWriter, r *http.Request)
	ImportRaw(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

// SessionOwnership tells the stream endpoint whether a session is still open for a reviewer
type SessionOwnership interface {
	OwnedBy(sessionID, userID string) bool
}

type reviewHandlerImpl struct {
	reviewService attendance.ReviewService
	jwtService    jwt.Service
	sessions      SessionOwnership
	hub           *sse.Hub
}

func NewReviewHandler(reviewService attendance.ReviewService, jwtService jwt.Service, sessions SessionOwnership, hub *sse.Hub) ReviewHandler {
	return &reviewHandlerImpl{
		reviewService: reviewService,
		jwtService:    jwtService,
		sessions:      sessions,
		hub:           hub,
	}
}

// OpenSession implements ReviewHandler.
func (h *reviewHandlerImpl) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req attendance.OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.reviewService.OpenSession(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Review session opened", result)
}

// CloseSession implements ReviewHandler.
func (h *reviewHandlerImpl) CloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.reviewService.CloseSession(r.Context(), sessionID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Review session closed", nil)
}

// ListRows implements ReviewHandler.
func (h *reviewHandlerImpl) ListRows(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	rows, err := h.reviewService.ListRows(r.Context(), sessionID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, rows, &response.Meta{Total: len(rows)})
}

// GetRow implements ReviewHandler.
func (h *reviewHandlerImpl) GetRow(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	date := chi.URLParam(r, "date")

	row, err := h.reviewService.GetRow(r.Context(), sessionID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, row)
}

// SubmitEdit implements ReviewHandler.
func (h *reviewHandlerImpl) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	var req attendance.EditFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.SessionID = chi.URLParam(r, "sessionID")

	result, err := h.reviewService.SubmitEdit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Edit saved", result)
}

// Compare implements ReviewHandler.
func (h *reviewHandlerImpl) Compare(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := attendance.ComparisonFilter{
		EmployeeID: query.Get("employee_id"),
		StartDate:  query.Get("start_date"),
		EndDate:    query.Get("end_date"),
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}

	result, err := h.reviewService.Compare(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ImportRaw implements ReviewHandler.
func (h *reviewHandlerImpl) ImportRaw(w http.ResponseWriter, r *http.Request) {
	var req attendance.ImportRawRequest

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	dataJSON := r.FormValue("data")
	if dataJSON == "" {
		response.BadRequest(w, "Field 'data' is required", nil)
		return
	}

	if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
		slog.Error("Failed to unmarshal JSON data", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Attendance spreadsheet is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	req.File = file
	req.Filename = fileHeader.Filename
	req.Size = fileHeader.Size

	result, err := h.reviewService.ImportRaw(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Raw attendance imported", result)
}

// Stream sends overlay events for one review session over SSE
func (h *reviewHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the token comes in the query
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	sessionID, userID, err := h.jwtService.ValidateStreamToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	if !h.sessions.OwnedBy(sessionID, userID) {
		http.Error(w, "Review session not found", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(sessionID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"session_id\":\"%s\"}\n\n", sessionID)
	flusher.Flush()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Failed to encode review event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

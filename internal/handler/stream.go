package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/msomdec/student-roster/internal/channel"
	"github.com/msomdec/student-roster/internal/domain"
	"github.com/msomdec/student-roster/internal/service"
	"github.com/msomdec/student-roster/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

// StreamHandler pushes the student table to the browser over SSE.
type StreamHandler struct {
	students *service.StudentService
	layer    channel.Layer
	refresh  time.Duration
}

// NewStreamHandler creates a new StreamHandler. When refresh is positive the
// rows are also re-sent on that period, which is how open pages pick up
// scheduled expiry; zero disables it.
func NewStreamHandler(students *service.StudentService, layer channel.Layer, refresh time.Duration) *StreamHandler {
	return &StreamHandler{students: students, layer: layer, refresh: refresh}
}

// HandleStream sends the current rows on connect, after every event in the
// students group and on each refresh tick, until the client disconnects.
// GET /students/stream
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	events, leave := h.layer.Subscribe(domain.GroupStudents)
	defer leave()

	sse := datastar.NewSSE(w, r)
	if err := h.patchRows(r.Context(), sse); err != nil {
		slog.Error("send initial student rows", "error", err)
		return
	}

	var tick <-chan time.Time
	if h.refresh > 0 {
		ticker := time.NewTicker(h.refresh)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-tick:
		}
		if err := h.patchRows(r.Context(), sse); err != nil {
			slog.Debug("student stream closed", "error", err)
			return
		}
	}
}

func (h *StreamHandler) patchRows(ctx context.Context, sse *datastar.ServerSentEventGenerator) error {
	students, err := h.students.List(ctx)
	if err != nil {
		return err
	}
	return sse.PatchElementTempl(view.StudentRows(students))
}

package server

import (
	"encoding/json"
	"net/http"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// The streaming protocol is newline-delimited JSON: zero or more
// progress lines, then exactly one complete or error line.

type progressEvent struct {
	Type       string `json:"type"`
	Year       int    `json:"year"`
	TotalYears int    `json:"total_years"`
}

type completeEvent struct {
	Type   string                   `json:"type"`
	Result *domain.SimulationResult `json:"result"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// eventStream writes NDJSON simulation events, flushing after every
// line so clients see progress while paths are still running.
type eventStream struct {
	w       http.ResponseWriter
	enc     *json.Encoder
	flusher http.Flusher // nil when the writer cannot flush
	started bool
}

func newEventStream(w http.ResponseWriter) *eventStream {
	f, _ := w.(http.Flusher)
	return &eventStream{w: w, enc: json.NewEncoder(w), flusher: f}
}

func (s *eventStream) begin(status int) {
	if s.started {
		return
	}
	s.started = true
	s.w.Header().Set("Content-Type", "application/x-ndjson")
	s.w.WriteHeader(status)
}

func (s *eventStream) send(ev any) {
	_ = s.enc.Encode(ev)
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

func (s *eventStream) Progress(year, totalYears int) {
	s.begin(http.StatusOK)
	s.send(progressEvent{Type: "progress", Year: year, TotalYears: totalYears})
}

func (s *eventStream) Complete(res *domain.SimulationResult) {
	s.begin(http.StatusOK)
	s.send(completeEvent{Type: "complete", Result: res})
}

// Fail ends the stream with an error event. When nothing has been sent
// yet the mapped HTTP status still applies; mid-stream the error rides
// on the already-committed 200.
func (s *eventStream) Fail(err error) {
	status, resp := errorStatus(err)
	s.begin(status)
	s.send(errorEvent{Type: "error", Code: resp.Code, Field: resp.Field, Message: resp.Message})
}

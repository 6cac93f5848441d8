package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/sandevgo/docchat/internal/core"
)

const doneSentinel = "[DONE]"

type tokenEvent struct {
	Data string `json:"data"`
}

type sourcesEvent struct {
	SourceDocs []core.ScoredChunk `json:"sourceDocs"`
}

type errorEvent struct {
	Error string `json:"error"`
}

// eventStream writes server-sent events. Headers go out with the first event,
// so a handler can still answer with a plain status before streaming starts.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
	err     error
}

func newEventStream(w http.ResponseWriter) *eventStream {
	f, _ := w.(http.Flusher)
	return &eventStream{w: w, flusher: f}
}

func (s *eventStream) start() {
	if s.started {
		return
	}
	s.started = true
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
}

func (s *eventStream) send(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.err = err
		return
	}
	s.write(data)
}

func (s *eventStream) write(data []byte) {
	s.start()
	if s.err != nil {
		return
	}
	if _, err := s.w.Write([]byte("data: ")); err != nil {
		s.err = err
		return
	}
	if _, err := s.w.Write(append(data, '\n', '\n')); err != nil {
		s.err = err
		return
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// OnToken makes the stream a core.TokenSink.
func (s *eventStream) OnToken(text string) {
	s.send(tokenEvent{Data: text})
}

func (s *eventStream) done() {
	s.write([]byte(doneSentinel))
}

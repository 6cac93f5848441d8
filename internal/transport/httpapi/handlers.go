package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/internal/service/session"
	"github.com/sandevgo/docchat/pkg/log"
)

type uploadResponse struct {
	Message    string `json:"message"`
	ChatID     string `json:"chatId"`
	ChunkCount int    `json:"chunkCount"`
}

type messageRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	ChatID   string           `json:"chatId"`
	Phase    session.Phase    `json:"phase"`
	Typing   bool             `json:"typing"`
	Messages []core.Message   `json:"messages"`
	History  core.ChatHistory `json:"history"`
	Pending  *core.Message    `json:"pending,omitempty"`
	Error    string           `json:"lastError,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const maxQuestionBytes = 64 << 10

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": core.AppVersion})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	chatID := r.PathValue("chatId")
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	res, err := s.ingester.IngestReader(r.Context(), header.Filename, file, chatID)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("chat_id", chatID).Str("file", header.Filename).Msg("ingestion failed")
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:    "File uploaded and indexed successfully",
		ChatID:     chatID,
		ChunkCount: res.ChunkCount,
	})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	chatID := r.PathValue("chatId")

	var req messageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuestionBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if chat.SanitizeQuestion(req.Question) == "" {
		writeError(w, http.StatusBadRequest, core.ErrEmptyQuestion.Error())
		return
	}

	sess, err := s.sessions.Get(ctx, chatID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	stream := newEventStream(w)
	res, err := s.asker.Ask(ctx, sess, req.Question, stream)
	if err != nil {
		if !stream.started && (errors.Is(err, core.ErrTurnInProgress) || errors.Is(err, core.ErrEmptyQuestion)) {
			writeError(w, statusFor(err), err.Error())
			return
		}
		if ctx.Err() != nil {
			log.FromCtx(ctx).Info().Str("chat_id", chatID).Msg("client went away, turn aborted")
			return
		}
		stream.send(errorEvent{Error: userMessage(err)})
		stream.done()
		return
	}

	stream.send(sourcesEvent{SourceDocs: res.Sources})
	stream.done()
	if stream.err != nil {
		log.FromCtx(ctx).Debug().Err(stream.err).Str("chat_id", chatID).Msg("stream write failed")
	}
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	chatID := r.PathValue("chatId")
	sess, err := s.sessions.Get(r.Context(), chatID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	st := sess.Snapshot()
	if st.Messages == nil {
		st.Messages = []core.Message{}
	}
	if st.History == nil {
		st.History = core.ChatHistory{}
	}
	writeJSON(w, http.StatusOK, chatResponse{
		ChatID:   chatID,
		Phase:    st.Phase,
		Typing:   st.Typing(),
		Messages: st.Messages,
		History:  st.History,
		Pending:  st.Pending,
		Error:    st.LastError,
	})
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID := r.PathValue("chatId")
	purge := r.URL.Query().Get("purge") == "true"
	if purge && s.purger == nil {
		writeError(w, http.StatusNotImplemented, "purge is not supported by this vector store")
		return
	}

	ended, err := s.sessions.Reset(r.Context(), chatID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if purge {
		if err := s.purger.DeleteNamespace(r.Context(), chatID); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"chatId": chatID, "ended": ended, "purged": purge})
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"chats": s.sessions.List()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrEmptyDocument),
		errors.Is(err, core.ErrLoadError),
		errors.Is(err, core.ErrNamespaceRequired),
		errors.Is(err, core.ErrEmptyQuestion),
		errors.Is(err, core.ErrEmbeddingInputTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTurnInProgress):
		return http.StatusConflict
	case errors.Is(err, core.ErrIngestionFailed),
		errors.Is(err, core.ErrEmbeddingServiceUnavailable),
		errors.Is(err, core.ErrVectorStoreUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrGenerationInterrupted):
		return "The answer was interrupted. Please try again."
	case errors.Is(err, core.ErrEmbeddingServiceUnavailable), errors.Is(err, core.ErrVectorStoreUnavailable):
		return "The document search is unavailable right now. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.FromCtx(r.Context()).Debug().
			Str("component", "http").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

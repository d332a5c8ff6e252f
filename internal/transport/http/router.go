package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// API exposes the attempt use cases as JSON over HTTP.
type API struct {
	service *app.QuizService
	logger  *slog.Logger
}

func NewAPI(service *app.QuizService, logger *slog.Logger) *API {
	return &API{service: service, logger: logger}
}

// NewRouter wires the REST routes, the websocket endpoint and health check.
func NewRouter(api *API, ws *WSHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if ws != nil {
		r.Get("/ws", ws.ServeWS)
	}

	r.Post("/quizzes/{quizID}/attempts", api.startAttempt)
	r.Get("/quizzes/{quizID}/results", api.listResults)
	r.Route("/attempts/{attemptID}", func(r chi.Router) {
		r.Get("/", api.getAttempt)
		r.Delete("/", api.abandon)
		r.Get("/review", api.review)
		r.Put("/answers/{questionID}", api.selectAnswer)
		r.Post("/flags/{questionID}", api.toggleFlag)
		r.Post("/navigate", api.navigate)
		r.Post("/submit", api.submit)
	})
	return r
}

type answerRequest struct {
	Option *int `json:"option"`
}

type navigateRequest struct {
	Index     *int   `json:"index"`
	Direction string `json:"direction"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (a *API) startAttempt(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.StartAttempt(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (a *API) getAttempt(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.View(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) abandon(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Abandon(r.Context(), chi.URLParam(r, "attemptID")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) review(w http.ResponseWriter, r *http.Request) {
	review, err := a.service.Review(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (a *API) selectAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Option == nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "body must be {\"option\": <index>}"})
		return
	}
	view, err := a.service.SelectAnswer(r.Context(), chi.URLParam(r, "attemptID"), chi.URLParam(r, "questionID"), *req.Option)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) toggleFlag(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.ToggleFlag(r.Context(), chi.URLParam(r, "attemptID"), chi.URLParam(r, "questionID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid navigate payload"})
		return
	}
	attemptID := chi.URLParam(r, "attemptID")

	var (
		view domain.AttemptView
		err  error
	)
	switch {
	case req.Index != nil:
		view, err = a.service.GoTo(r.Context(), attemptID, *req.Index)
	case req.Direction == "next":
		view, err = a.service.Next(r.Context(), attemptID)
	case req.Direction == "previous":
		view, err = a.service.Previous(r.Context(), attemptID)
	default:
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "navigate needs an index or a direction of next or previous"})
		return
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) submit(w http.ResponseWriter, r *http.Request) {
	record, err := a.service.Submit(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (a *API) listResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorPayload{Message: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	results, err := a.service.History(r.Context(), chi.URLParam(r, "quizID"), limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, status, struct {
			Message string                  `json:"message"`
			Errors  domain.ValidationErrors `json:"errors"`
		}{Message: err.Error(), Errors: verrs})
		return
	}
	writeJSON(w, status, errorPayload{Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrAttemptNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuizDefinition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnknownQuestion), errors.Is(err, domain.ErrOptionOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidSessionState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

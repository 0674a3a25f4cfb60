// Package httpapi — HTTP API поверх тех же сервисов, что и бот:
// каталог бустов, день, неделя, серия и засчитывание буста.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/common"
	"healthrocket.app/rocket-bot/internal/features/boosts"
	"healthrocket.app/rocket-bot/internal/features/streak"
	"healthrocket.app/rocket-bot/internal/metrics"
)

// Deps — сервисы, с которыми работает API.
type Deps struct {
	Catalog     *boosts.Catalog
	Coordinator *boosts.Coordinator
	Daily       *boosts.DailyTracker
	Weekly      *boosts.WeeklyTracker
	Streaks     *streak.Service
	Calendar    *common.Calendar
	Metrics     *metrics.Metrics // может быть nil
	// Token — статический bearer-токен. Пустой отключает проверку.
	Token string
}

// Server обрабатывает HTTP-запросы.
type Server struct {
	deps   Deps
	router *mux.Router
}

// NewServer собирает роутер.
func NewServer(deps Deps) *Server {
	s := &Server{deps: deps, router: mux.NewRouter()}

	s.router.Use(s.recoverMiddleware, s.metricsMiddleware)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if deps.Metrics != nil {
		s.router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/boosts", s.handleCatalog).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/today", s.handleToday).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/week", s.handleWeek).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/streak", s.handleStreak).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}/boosts/{boostID}", s.handleComplete).Methods(http.MethodPost)

	return s
}

// ServeHTTP реализует http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe запускает сервер и останавливает его при отмене ctx.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("HTTP API запущен")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("HTTP API остановлен")
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCatalog — GET /api/boosts[?category=sleep]
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		writeJSON(w, http.StatusOK, s.deps.Catalog.All())
		return
	}
	cat, ok := boosts.ParseCategory(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Catalog.ByCategory(cat))
}

// handleToday — GET /api/users/{id}/today
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	sel, err := s.deps.Daily.Today(r.Context(), userID, s.deps.Calendar.Now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

type weekResponse struct {
	Window      boosts.WeeklyWindow     `json:"window"`
	Completions []boosts.CompletedBoost `json:"completions"`
}

// handleWeek — GET /api/users/{id}/week
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	completions, win, err := s.deps.Weekly.Completions(r.Context(), userID, s.deps.Calendar.Now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weekResponse{Window: win, Completions: completions})
}

type streakResponse struct {
	streak.State
	Streak int  `json:"streak"`
	AtRisk bool `json:"atRisk"`
}

// handleStreak — GET /api/users/{id}/streak
func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	st, err := s.deps.Streaks.GetState(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, streakResponse{State: st, Streak: st.Current, AtRisk: st.AtRisk()})
}

// handleComplete — POST /api/users/{id}/boosts/{boostID}
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	boostID := mux.Vars(r)["boostID"]

	res, err := s.deps.Coordinator.Complete(r.Context(), userID, boostID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// fail переводит доменную ошибку в HTTP-статус.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Error("Ошибка HTTP API")
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Reason: boosts.RejectionReason(err)})
}

// StatusFor возвращает HTTP-статус для ошибки бустов.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrDailyLimitExceeded), errors.Is(err, common.ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, common.ErrTierLocked):
		return http.StatusForbidden
	case errors.Is(err, common.ErrUnknownBoost):
		return http.StatusNotFound
	case errors.Is(err, common.ErrDataUnavailable), errors.Is(err, common.ErrPersistenceFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func userIDFrom(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(s.deps.Token)) != 1 {
			log.WithField("path", r.URL.Path).Warn("Запрос к API без верного токена")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.ObserveHTTP(r.Method, endpoint, rec.status, time.Since(start))
		}
		log.WithFields(log.Fields{
			"method":   r.Method,
			"endpoint": endpoint,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("HTTP запрос")
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				log.WithFields(log.Fields{
					"component": "httpapi",
					"panic":     rv,
					"path":      r.URL.Path,
				}).Error("ПАНИКА в HTTP-обработчике — восстановлено")
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// --- JSON ---

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Ошибка кодирования JSON ответа")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

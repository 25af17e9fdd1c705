package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/usecase"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

type warningResponse struct {
	Warning string `json:"warning"`
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	SessionID string            `json:"session_id"`
	Answer    string            `json:"answer,omitempty"`
	Error     string            `json:"error,omitempty"`
	Turns     []entity.ChatTurn `json:"turns"`
	Pending   bool              `json:"pending"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError traduz a taxonomia de erros em status HTTP.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var queryErr *types.QueryExecutionError
	var completionErr *types.CompletionError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrNoData):
		writeJSON(w, http.StatusOK, warningResponse{Warning: usecase.NoDataMessage})
		return
	case errors.Is(err, errBadRequest), errors.Is(err, types.ErrEmptyQuestion):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrTurnPending):
		status = http.StatusConflict
	case errors.As(err, &queryErr), errors.As(err, &completionErr):
		status = http.StatusBadGateway
	}

	s.log.Warn().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

var errBadRequest = errors.New("bad request")

// filterFromRequest lê start, end, days, warehouse, cost_per_credit e discount da query string.
func (s *Server) filterFromRequest(r *http.Request) (entity.FilterState, error) {
	q := r.URL.Query()
	in := usecase.FilterInput{
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
		Warehouse: q.Get("warehouse"),
	}

	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return entity.FilterState{}, fmt.Errorf("%w: invalid days %q", errBadRequest, v)
		}
		in.Days = &n
	}
	if v := q.Get("cost_per_credit"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return entity.FilterState{}, fmt.Errorf("%w: invalid cost_per_credit %q", errBadRequest, v)
		}
		in.CostPerCredit = &f
	}
	if v := q.Get("discount"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return entity.FilterState{}, fmt.Errorf("%w: invalid discount %q", errBadRequest, v)
		}
		in.DiscountPct = &n
	}

	f, err := usecase.BuildFilter(s.cfg.Dashboard, s.now(), in)
	if err != nil {
		return entity.FilterState{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return f, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"chat_sessions": s.sessions.Len(),
	})
}

func (s *Server) listWarehouses(w http.ResponseWriter, r *http.Request) {
	names, err := s.uc.ListWarehouses(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"warehouses": names})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	f, err := s.filterFromRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var panels []string
	if v := r.URL.Query().Get("panels"); v != "" {
		panels = lo.Compact(lo.Map(strings.Split(v, ","), func(p string, _ int) string {
			return strings.TrimSpace(p)
		}))
		if unknown := lo.Without(panels, usecase.AllPanels...); len(unknown) > 0 {
			s.writeError(w, r, fmt.Errorf("%w: unknown panels %s", errBadRequest, strings.Join(unknown, ",")))
			return
		}
	}

	report, err := s.uc.Dashboard(r.Context(), f, panels...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	f, err := s.filterFromRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.uc.Summary(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) warehouseUsage(w http.ResponseWriter, r *http.Request) {
	f, err := s.filterFromRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.uc.WarehouseUsage(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) queryPerformance(w http.ResponseWriter, r *http.Request) {
	f, err := s.filterFromRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.uc.QueryPerformance(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) storage(w http.ResponseWriter, r *http.Request) {
	f, err := s.filterFromRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.uc.Storage(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) statements(w http.ResponseWriter, r *http.Request) {
	f, err := s.filterFromRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stmts, err := s.uc.Statements(f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stmts)
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	f, err := s.filterFromRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	text, err := s.uc.Insights(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"model": s.uc.Model(), "insights": text})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.Create()
	s.log.Debug().Str("session_id", id).Msg("chat session created")
	writeJSON(w, http.StatusCreated, chatResponse{SessionID: id, Turns: []entity.ChatTurn{}})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.sessions.get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.mu.Lock()
	resp := chatResponse{SessionID: id, Turns: sess.history.Turns(), Pending: sess.history.Pending()}
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// postMessage executa um turno. Enquanto um turno da mesma sessão está em
// andamento, novas mensagens recebem 409.
func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.sessions.get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid request body", errBadRequest))
		return
	}
	f, err := s.filterFromRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if !sess.mu.TryLock() {
		s.writeError(w, r, types.ErrTurnPending)
		return
	}
	defer sess.mu.Unlock()

	answer, err := s.uc.Ask(r.Context(), sess.history, f, req.Question)
	resp := chatResponse{SessionID: id, Answer: answer, Turns: sess.history.Turns(), Pending: sess.history.Pending()}

	var completionErr *types.CompletionError
	switch {
	case errors.As(err, &completionErr):
		s.log.Warn().Err(err).Str("session_id", id).Msg("completion failed")
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
	case err != nil:
		s.writeError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"babitune/internal/config"
	"babitune/internal/corpus"
	"babitune/internal/storage"
	"babitune/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

// Server exposes the search runs over HTTP. It owns the Postgres repos and a
// Temporal client; workers do the actual training.
type Server struct {
	cfg       config.Config
	db        *storage.DB
	runRepo   *storage.RunRepo
	trialRepo *storage.TrialRepo
	temporal  tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	return &Server{
		cfg:       cfg,
		db:        db,
		runRepo:   storage.NewRunRepo(db),
		trialRepo: storage.NewTrialRepo(db),
		temporal:  tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/runs", s.handleRuns)
	mux.HandleFunc("/runs/", s.handleRunScoped)
	mux.HandleFunc("/tasks", s.handleTasks)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": corpus.Tasks, "current": s.cfg.Task})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		runs, err := s.runRepo.ListRuns(r.Context())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	case http.MethodPost:
		s.handleStartRun(w, r)
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxIterations  int   `json:"max_iterations"`
		ParallelTrials int   `json:"parallel_trials"`
		InitPoints     int   `json:"init_points"`
		Seed           int64 `json:"seed"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
			return
		}
	}
	if req.MaxIterations <= 0 {
		req.MaxIterations = s.cfg.MaxIterations
	}
	if req.ParallelTrials <= 0 {
		req.ParallelTrials = s.cfg.ParallelTrials
	}
	if req.InitPoints <= 0 {
		req.InitPoints = s.cfg.InitPoints
	}
	if req.Seed == 0 {
		req.Seed = s.cfg.Seed
	}

	runID := uuid.NewString()
	if err := s.runRepo.CreateRun(r.Context(), storage.Run{
		RunID:          runID,
		Task:           s.cfg.Task,
		DatasetSize:    s.cfg.DatasetSize,
		Status:         "pending",
		MaxIterations:  req.MaxIterations,
		ParallelTrials: req.ParallelTrials,
	}); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:        "search-" + runID,
		TaskQueue: s.cfg.TemporalTaskQueue,
	}, workflows.SearchWorkflow, workflows.SearchInput{
		RunID:          runID,
		MaxIterations:  req.MaxIterations,
		ParallelTrials: req.ParallelTrials,
		InitPoints:     req.InitPoints,
		Seed:           req.Seed,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"run_id":      runID,
		"task":        s.cfg.Task,
		"workflow_id": we.GetID(),
	})
}

func (s *Server) handleRunScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/runs/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	runID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		run, err := s.runRepo.GetRun(r.Context(), runID)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		resp := map[string]any{
			"run":            run,
			"workflow_state": s.workflowState(r.Context(), runID),
		}
		if best, err := s.trialRepo.BestTrial(r.Context(), runID); err == nil {
			resp["best_trial"] = best
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	switch parts[1] {
	case "trials":
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		trials, err := s.trialRepo.ListTrialsByRun(r.Context(), runID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"trials": trials})
	case "progress":
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		var prog workflows.SearchProgress
		resp, err := s.temporal.QueryWorkflow(r.Context(), "search-"+runID, "", workflows.QueryGetSearchProgress)
		if err != nil {
			// No live workflow to query; fall back to the recorded trials.
			trials, tErr := s.trialRepo.ListTrialsByRun(r.Context(), runID)
			if tErr != nil {
				writeErr(w, http.StatusInternalServerError, tErr)
				return
			}
			prog = workflows.SearchProgress{RunID: runID, Trials: len(trials)}
			for _, tr := range trials {
				if tr.Failed {
					prog.Failed++
					continue
				}
				if !prog.HaveBest || tr.Score > prog.BestScore {
					prog.HaveBest = true
					prog.BestScore = tr.Score
				}
			}
			if run, rErr := s.runRepo.GetRun(r.Context(), runID); rErr == nil {
				prog.Status = run.Status
				prog.TotalRounds = run.MaxIterations
			}
			writeJSON(w, http.StatusOK, prog)
			return
		}
		if err := resp.Get(&prog); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, prog)
	default:
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	}
}

// workflowState reports the Temporal execution status for a run, or "" when
// the execution is unknown to the server.
func (s *Server) workflowState(ctx context.Context, runID string) string {
	desc, err := s.temporal.DescribeWorkflowExecution(ctx, "search-"+runID, "")
	if err != nil {
		return ""
	}
	info := desc.GetWorkflowExecutionInfo()
	if info == nil {
		return ""
	}
	switch info.GetStatus() {
	case enumspb.WORKFLOW_EXECUTION_STATUS_RUNNING:
		return "running"
	case enumspb.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return "completed"
	case enumspb.WORKFLOW_EXECUTION_STATUS_FAILED:
		return "failed"
	case enumspb.WORKFLOW_EXECUTION_STATUS_CANCELED:
		return "canceled"
	case enumspb.WORKFLOW_EXECUTION_STATUS_TERMINATED:
		return "terminated"
	case enumspb.WORKFLOW_EXECUTION_STATUS_TIMED_OUT:
		return "timed_out"
	default:
		return "unknown"
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, code, map[string]any{"error": msg})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

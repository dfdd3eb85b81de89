package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/scorecraft/sctl/pkg/data"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
	serverPortDefault         = 8080
)

var (
	portFlag = &cli.IntFlag{
		Name:     "port",
		Usage:    "Port on which the server will listen",
		Value:    serverPortDefault,
		Required: false,
	}

	serverCmd = &cli.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start local scorecard API server",
		Action:  cmdStartServer,
		Flags: []cli.Flag{
			portFlag,
			debugFlag,
		},
	}
)

func cmdStartServer(c *cli.Context) error {
	cfg := getConfig(c)
	port := c.Int(portFlag.Name)
	address := fmt.Sprintf("127.0.0.1:%d", port)

	mux := makeRouter(cfg.DB)
	s := &http.Server{
		Addr:           address,
		Handler:        mux,
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("error starting server", "error", err)
		}
	}()

	slog.Info("server started", "address", fmt.Sprintf("http://%s", address))

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	return nil
}

func makeRouter(db *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /scorecards", listScorecardsAPIHandler(db))
	mux.HandleFunc("GET /scorecards/{id}", getScorecardAPIHandler(db))
	mux.HandleFunc("POST /scorecards/{id}/score", scoreAPIHandler(db))

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryParamInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	var i int
	if _, err := fmt.Sscanf(v, "%d", &i); err != nil || i < 1 {
		return def
	}
	return i
}

func listScorecardsAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		like := r.URL.Query().Get("like")
		limit := queryParamInt(r, "limit", queryResultLimitDefault)

		list, err := data.QueryScorecards(db, like, limit)
		if err != nil {
			slog.Error("failed to query scorecards", "error", err)
			writeError(w, http.StatusInternalServerError, "error querying scorecards")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func getScorecardAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		s, err := data.GetScorecard(db, id)
		if err != nil {
			if errors.Is(err, data.ErrNotFound) {
				writeError(w, http.StatusNotFound, "scorecard not found")
				return
			}
			slog.Error("failed to get scorecard", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "error getting scorecard")
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

type scoreRequest struct {
	Bins map[string]int `json:"bins"`
}

func scoreAPIHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		s, err := data.GetScorecard(db, id)
		if err != nil {
			if errors.Is(err, data.ErrNotFound) {
				writeError(w, http.StatusNotFound, "scorecard not found")
				return
			}
			slog.Error("failed to get scorecard", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "error getting scorecard")
			return
		}

		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Bins) == 0 {
			writeError(w, http.StatusBadRequest, "bins are required")
			return
		}

		score, err := s.Table.Score(req.Bins, s.Intercept)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, &scoreResult{
			ID:    s.ID,
			Name:  s.Name,
			Bins:  req.Bins,
			Score: score,
		})
	}
}

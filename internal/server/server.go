// Package server orchestrates all components: NATS client, DB, agent registry, dispatcher, HTTP status.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	comms "github.com/nats-io/nats.go"

	"github.com/sahayak-ai/agent-orchestrator/internal/config"
	"github.com/sahayak-ai/agent-orchestrator/pkg/agents"
	"github.com/sahayak-ai/agent-orchestrator/pkg/bootstrap"
	"github.com/sahayak-ai/agent-orchestrator/pkg/commsutil"
	"github.com/sahayak-ai/agent-orchestrator/pkg/db"
	"github.com/sahayak-ai/agent-orchestrator/pkg/dispatch"
	"github.com/sahayak-ai/agent-orchestrator/pkg/events"
	"github.com/sahayak-ai/agent-orchestrator/pkg/llm"
	"github.com/sahayak-ai/agent-orchestrator/pkg/routing"
	"github.com/sahayak-ai/agent-orchestrator/pkg/telemetry"
)

const logPrefix = "server:server"

// Server is the agent orchestrator.
type Server struct {
	cfg        *config.Config
	nc         *comms.Conn
	pool       *pgxpool.Pool
	httpServer *http.Server
	registry   *agents.Registry
	dispatcher *dispatch.Dispatcher
	stats      *telemetry.Store
	history    *telemetry.History
}

// Run starts the server, blocks until shutdown signal, then cleans up.
func Run() error {
	// Setup structured logging
	var logLevel slog.Level
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info(fmt.Sprintf("%s - Starting agent-orchestrator", logPrefix))

	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Server{cfg: cfg}

	// Step 1: Load routing rules
	rules, err := bootstrap.LoadRulesConfig(cfg.RulesFile)
	if err != nil {
		return fmt.Errorf("%s - failed to load routing rules: %w", logPrefix, err)
	}

	orchestratorSubject := cfg.OrchestratorSubject
	if orchestratorSubject == "" {
		orchestratorSubject = commsutil.SubjectOrchestrator
	}
	slog.Info(fmt.Sprintf("%s - Orchestrator subject: %s", logPrefix, orchestratorSubject))

	// Step 2: Connect to NATS
	nc, err := commsutil.Connect(cfg.COMMSURL, cfg.COMMSName)
	if err != nil {
		return fmt.Errorf("%s - failed to connect to NATS: %w", logPrefix, err)
	}
	s.nc = nc
	slog.Info(fmt.Sprintf("%s - Connected to NATS at %s", logPrefix, cfg.COMMSURL))

	// Step 3: Connect to database (optional; enables the history archive)
	var archiver telemetry.Archiver
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			nc.Close()
			return fmt.Errorf("%s - failed to connect to database: %w", logPrefix, err)
		}
		s.pool = pool

		if cfg.RunMigrations {
			if err := db.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				nc.Close()
				return fmt.Errorf("%s - failed to run migrations: %w", logPrefix, err)
			}
		}
		archiver = db.NewHistoryArchive(pool)
	} else {
		slog.Info(fmt.Sprintf("%s - DATABASE_URL not set, dispatch history archive disabled", logPrefix))
	}

	// Step 4: Model clients. Each agent gets its own client so the request
	// throttle applies per agent instance.
	newGenerator := func() llm.Generator {
		if cfg.LLMAPIKey == "" {
			return nil
		}
		return llm.NewClient(llm.Options{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
		})
	}

	// Step 4b: Knowledge store. Requires an embedder, so it degrades to nil
	// without model credentials; the knowledge agent then fails construction
	// and the registry continues without it.
	var knowledge *agents.KnowledgeStore
	if cfg.LLMAPIKey != "" {
		embedder, err := llm.NewEmbedder(llm.EmbedderOptions{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
		})
		if err != nil {
			slog.Error(fmt.Sprintf("%s - embedder init failed, knowledge base disabled: %v", logPrefix, err))
		} else {
			knowledge, err = agents.NewKnowledgeStore(agents.KnowledgeStoreConfig{
				PersistPath: cfg.KnowledgePath,
			}, embedder.Embed)
			if err != nil {
				slog.Error(fmt.Sprintf("%s - knowledge store init failed, continuing without it: %v", logPrefix, err))
				knowledge = nil
			}
		}
	}

	// Step 5: Build the agent registry. Builders are attempted independently;
	// partial availability is fine.
	reg := agents.NewRegistry(agents.DefaultBuilders(agents.Deps{
		NewGenerator: newGenerator,
		DataDir:      cfg.DataDir,
		Knowledge:    knowledge,
	}))
	s.registry = reg
	if err := dispatch.ValidateRegistry(reg); err != nil {
		nc.Close()
		if s.pool != nil {
			s.pool.Close()
		}
		return fmt.Errorf("%s - registry validation failed: %w", logPrefix, err)
	}

	// Step 6: Classifier, telemetry, dispatcher
	classifier := routing.NewClassifier(newGenerator(), rules)
	s.stats = telemetry.NewStore()
	s.history = telemetry.NewHistory(archiver)

	publisherOpts := &events.CommsPublisherOpts{}
	if cfg.DispatchEventSubject != "" {
		publisherOpts.GlobalSubject = cfg.DispatchEventSubject
	}
	disp := dispatch.NewDispatcher(classifier, reg, s.stats, s.history, &dispatch.Opts{
		Publisher: events.NewCommsPublisher(nc, publisherOpts),
		Knowledge: knowledge,
	})
	s.dispatcher = disp

	// Step 7: Subscribe
	requestTimeout := cfg.RequestTimeout
	sub, err := nc.Subscribe(orchestratorSubject, func(msg *comms.Msg) {
		var req dispatch.OrchestratorRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			slog.Error(fmt.Sprintf("%s - failed to decode request: %v", logPrefix, err))
			resp := &dispatch.OrchestratorResponse{
				Ok: false,
				Error: &dispatch.ErrorDetail{
					Code:    "INVALID_REQUEST",
					Message: "Failed to decode request",
				},
			}
			data, _ := json.Marshal(resp)
			msg.Respond(data)
			return
		}

		// Per-request context with timeout; a tighter client deadline wins
		timeout := requestTimeout
		if req.Ctx != nil && req.Ctx.TimeoutMs > 0 {
			if d := time.Duration(req.Ctx.TimeoutMs) * time.Millisecond; d < timeout {
				timeout = d
			}
		}
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		resp := disp.Dispatch(reqCtx, &req)

		data, err := json.Marshal(resp)
		if err != nil {
			slog.Error(fmt.Sprintf("%s - failed to encode response: %v", logPrefix, err))
			return
		}
		msg.Respond(data)
	})
	if err != nil {
		if s.pool != nil {
			s.pool.Close()
		}
		nc.Close()
		return fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, orchestratorSubject, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, orchestratorSubject))

	// Step 8: Start HTTP status server
	healthTimeout := cfg.HealthCheckTimeout
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		healthCtx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		report := reg.HealthCheck(healthCtx)
		w.Header().Set("Content-Type", "application/json")
		if report.SystemStatus != agents.HealthHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(report)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.stats.Snapshot(s.history.Len()))
	})

	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = fmt.Sprintf(":%d", cfg.HTTPPort)
	}
	s.httpServer = &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP status server listening on %s", logPrefix, httpAddr))
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - Agent orchestrator is ready (%d agents)", logPrefix, reg.Len()))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	// Graceful shutdown
	sub.Unsubscribe()
	s.httpServer.Shutdown(ctx)
	nc.Drain()
	if s.pool != nil {
		s.pool.Close()
	}

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

// homePageTemplate is the HTML for the orchestrator home page (white bg, black/blue text).
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Agent Orchestrator</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    a { color: #0066cc; }
    h1, h2, h3 { color: #0066cc; }
    .status-healthy { color: #0066cc; font-weight: bold; }
    .status-degraded { color: #cc6600; font-weight: bold; }
    table { border-collapse: collapse; width: 100%; max-width: 900px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f4f8; color: #0066cc; }
    .stat { font-weight: bold; color: #0066cc; }
    .meta { color: #333; font-size: 0.9rem; margin-top: 1rem; }
    section { margin-bottom: 2rem; }
    .error { color: #cc0000; }
  </style>
</head>
<body>
  <h1>Agent Orchestrator</h1>
  <p class="meta">Orchestrator health, dispatch statistics, and registered agents.</p>

  <section>
    <h2>Health</h2>
    <p>Status: <span class="status-{{.Health.SystemStatus}}">{{.Health.SystemStatus}}</span></p>
    <p>Timestamp: {{.Health.Timestamp}}</p>
    {{if .Health.Issues}}
    <ul>
      {{range .Health.Issues}}<li class="error">{{.}}</li>{{end}}
    </ul>
    {{end}}
  </section>

  <section>
    <h2>Statistics</h2>
    <p>Total dispatches: <span class="stat">{{.Stats.TotalRequests}}</span></p>
    <p>History entries: <span class="stat">{{.Stats.HistoryEntries}}</span></p>
    {{if .Stats.AgentUsage}}
    <table>
      <thead>
        <tr><th>Agent</th><th>Total</th><th>Succeeded</th><th>Failed</th><th>Avg time (s)</th></tr>
      </thead>
      <tbody>
        {{range $type, $usage := .Stats.AgentUsage}}
        <tr>
          <td>{{$type}}</td>
          <td>{{$usage.TotalRequests}}</td>
          <td>{{$usage.SuccessfulRequests}}</td>
          <td>{{$usage.FailedRequests}}</td>
          <td>{{printf "%.3f" $usage.AverageExecutionTime}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{end}}
  </section>

  <section>
    <h2>Registered agents</h2>
    {{if not .Agents}}
    <p>No agents registered.</p>
    {{else}}
    <table>
      <thead>
        <tr><th>Type</th><th>Name</th><th>Description</th><th>Version</th><th>Status</th></tr>
      </thead>
      <tbody>
        {{range .Agents}}
        <tr>
          <td>{{.Type}}</td>
          <td>{{.Name}}</td>
          <td>{{.Description}}</td>
          <td>{{.Version}}</td>
          <td>{{index $.Health.AgentStatus .Type}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{end}}
  </section>
</body>
</html>
`

// homeData is the data passed to the home page template.
type homeData struct {
	Health *agents.HealthReport
	Stats  telemetry.Snapshot
	Agents []agents.AgentInfo
}

// handleHome returns an HTTP handler for the orchestrator home page.
func (s *Server) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
		defer cancel()

		data := homeData{
			Health: s.registry.HealthCheck(ctx),
			Stats:  s.stats.Snapshot(s.history.Len()),
			Agents: s.registry.List(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

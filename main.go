// Command rollblock starts the Rolling Block game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, preset and session directories, debug logging,
// version output, and optional ngrok tunneling for external access during
// development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jpillora/backoff"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/rollblock/api"
	"github.com/wricardo/rollblock/game/config"
	"github.com/wricardo/rollblock/game/service"
	"github.com/wricardo/rollblock/game/session"
	"github.com/wricardo/rollblock/transport/mcp"
	"github.com/wricardo/rollblock/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Rolling Block Server"
)

const (
	sessionMaxAge   = 24 * time.Hour
	cleanupInterval = 1 * time.Hour
	syncInterval    = 5 * time.Second
)

var log = logrus.WithField("component", "main")

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", envOr("CONFIG_DIR", "configs"), "Directory containing level presets")
	sessionsDir  = flag.String("sessions-dir", envOr("SESSIONS_DIR", "sessions"), "Directory for persisted sessions")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// envOr returns the environment variable key, or fallback when it is unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090         # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp          # Run MCP stdio server\n", os.Args[0])
	}
}

// setupLogging configures the process-wide logrus logger. Stdio MCP mode
// owns stdout, so logs always go to stderr.
func setupLogging(debug bool) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetReportCaller(true)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	envErr := godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	setupLogging(*debug)

	if envErr == nil {
		log.Info("loaded environment variables from .env file")
	} else if !errors.Is(envErr, os.ErrNotExist) {
		log.WithError(envErr).Warn("error loading .env file")
	}

	args := flag.Args()
	mode := "server"
	if len(args) > 0 {
		mode = args[0]
	}

	log.WithFields(logrus.Fields{"version": Version, "mode": mode}).Infof("starting %s", AppName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := initializeServices()
	if err != nil {
		log.WithError(err).Fatal("failed to initialize services")
	}
	services.startBackground(ctx)

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(ctx, services.game)

	case "server", "http":
		runHTTPServer(ctx, services.game)

	default:
		log.Fatalf("unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}

	// stdio mode returns when stdin closes, without a signal
	stop()
	services.shutdown()
}

// services holds the wired game stack and the session store behind it.
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	wg          sync.WaitGroup
}

// initializeServices wires the preset and session managers and the game service.
func initializeServices() (*services, error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(*sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.WithError(err).Warn("failed to load persisted sessions")
	}

	return &services{
		game:        service.NewGameService(sessionManager, configManager),
		sessions:    sessionManager,
		persistence: persistence,
	}, nil
}

// startBackground runs the cleanup and filesystem sync loops until ctx ends.
func (s *services) startBackground(ctx context.Context) {
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		sessionCleanupRoutine(ctx, s.sessions, cleanupInterval, sessionMaxAge)
	}()
	go func() {
		defer s.wg.Done()
		filesystemSyncRoutine(ctx, s.sessions, s.persistence, syncInterval)
	}()
}

// shutdown waits for the background loops and flushes every session to disk.
func (s *services) shutdown() {
	s.wg.Wait()
	if err := s.sessions.SaveAllSessions(); err != nil {
		log.WithError(err).Warn("failed to save sessions on shutdown")
	}
}

// sessionCleanupRoutine periodically evicts sessions that have not been
// accessed within maxAge. Evicted sessions stay on disk.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(maxAge)
		}
	}
}

// filesystemSyncRoutine periodically drops in-memory sessions whose files
// were deleted from the sessions directory.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration) {
	if persistence == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneOrphans(manager, persistence)
		}
	}
}

func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.WithField("session", sess.ID).Debug("pruned session from memory (file deleted)")
		}
	}

	if pruned > 0 {
		log.WithField("pruned", pruned).Info("filesystem sync removed orphaned sessions")
	}
	return pruned
}

// mcpHandler serves single JSON-RPC MCP messages over HTTP POST.
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter mounts the REST API, WebSocket and /mcp endpoint on one mux.
func newRouter(gameService service.GameService, hub *websocket.Hub, baseURL string) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(gameService, hub))
	mainRouter.HandleFunc("/mcp", mcpHandler(mcp.NewClient(baseURL)))
	return mainRouter
}

// runHTTPServer starts the HTTP server and, when enabled, an ngrok tunnel,
// then blocks until ctx is cancelled.
func runHTTPServer(ctx context.Context, gameService service.GameService) {
	hub := websocket.NewHub()
	go hub.Run()

	addr := fmt.Sprintf("%s:%d", *host, *port)
	mainRouter := newRouter(gameService, hub, fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithFields(logrus.Fields{
			"api":       fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Infof("HTTP server listening on %s", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	if ngrokRequested() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, mainRouter)
		}()
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("server stopped")
}

// ngrokRequested reports whether the tunnel is enabled by flag or NGROK_ENABLED.
func ngrokRequested() bool {
	if *ngrokEnabled {
		return true
	}
	env := os.Getenv("NGROK_ENABLED")
	return env == "true" || env == "1"
}

func runNgrok(ctx context.Context, handler http.Handler) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = envOr("NGROK_AUTHTOKEN", os.Getenv("NGROK_AUTH_TOKEN"))
	}
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.WithField("domain", domain).Info("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Error("failed to start ngrok tunnel")
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.WithFields(logrus.Fields{
		"api":       ngrokURL + "/api",
		"websocket": ngrokURL + "/ws?session=<session_id>",
		"mcp":       ngrokURL + "/mcp",
	}).Infof("ngrok tunnel established: %s", ngrokURL)

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Debug("ngrok server stopped")
	}
	log.Info("ngrok tunnel closed")
}

// waitForAPI polls the health endpoint with exponential backoff until it
// answers 200 or ctx ends.
func waitForAPI(ctx context.Context, baseURL string, maxAttempts int) error {
	client := &http.Client{Timeout: 2 * time.Second}
	b := &backoff.Backoff{
		Min:    20 * time.Millisecond,
		Max:    500 * time.Millisecond,
		Factor: 2,
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			err = fmt.Errorf("health check returned %d", resp.StatusCode)
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
	return fmt.Errorf("API at %s not ready after %d attempts: %w", baseURL, maxAttempts, lastErr)
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses an API
// already listening on localhost:8080; otherwise it starts an internal one on
// a random loopback port and waits for it to answer before serving.
func runStdioMCPWithInternalServer(ctx context.Context, gameService service.GameService) {
	externalURL := "http://localhost:8080"
	baseURL := externalURL

	if err := waitForAPI(ctx, externalURL, 1); err == nil {
		log.WithField("url", externalURL).Info("external API server found, using it for MCP")
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.WithError(err).Fatal("failed to get available port")
		}
		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())

		hub := websocket.NewHub()
		go hub.Run()

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		if err := waitForAPI(ctx, baseURL, 10); err != nil {
			log.WithError(err).Fatal("internal HTTP server did not start")
		}
		log.WithField("url", baseURL).Info("started internal HTTP server for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.WithError(err).Error("MCP stdio server error")
	}
}

package main

import (
	"html/template"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/oszuidwest/zwfm-avatar/internal/audio"
	"github.com/oszuidwest/zwfm-avatar/internal/avatar"
	"github.com/oszuidwest/zwfm-avatar/internal/capture"
	"github.com/oszuidwest/zwfm-avatar/internal/config"
	"github.com/oszuidwest/zwfm-avatar/internal/server"
	"github.com/oszuidwest/zwfm-avatar/internal/types"
	"github.com/oszuidwest/zwfm-avatar/internal/util"
)

var loginTmpl = template.Must(template.New("login").Parse(loginHTML))
var indexTmpl = template.Must(template.New("index").Parse(indexHTML))
var faviconTmpl = template.Must(template.New("favicon").Parse(faviconSVG))

type loginData struct {
	Error       bool
	CSRFToken   string
	Version     string
	Year        int
	StationName string
	PrimaryCSS  template.CSS
}

type indexData struct {
	Version     string
	Year        int
	StationName string
	PrimaryCSS  template.CSS
}

// Server is an HTTP server that provides the avatar display and settings interface.
type Server struct {
	config     *config.Config
	engine     *capture.Engine
	controller *avatar.Controller
	sessions   *server.SessionManager
	commands   *server.CommandHandler
	version    *VersionChecker
}

// NewServer returns a new Server wired to the capture engine and avatar controller.
func NewServer(cfg *config.Config, engine *capture.Engine, controller *avatar.Controller) *Server {
	sessions := server.NewSessionManager()
	commands := server.NewCommandHandler(cfg, engine)

	return &Server{
		config:     cfg,
		engine:     engine,
		controller: controller,
		sessions:   sessions,
		commands:   commands,
		version:    NewVersionChecker(),
	}
}

// handleWebSocket handles bidirectional WebSocket communication for real-time updates.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := server.UpgradeConnection(w, r)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	// Create buffered send channel for thread-safe writes.
	// Only the writer goroutine writes to the connection, preventing race conditions.
	send := make(chan any, 16)
	done := make(chan struct{})
	statusUpdate := make(chan struct{}, 1)

	// Writer goroutine - sole writer to the connection
	go s.runWebSocketWriter(conn, send)

	// Reader goroutine - handles incoming commands
	go s.runWebSocketReader(conn, send, done, statusUpdate)

	s.runWebSocketEventLoop(send, done, statusUpdate)
}

// runWebSocketWriter writes messages from the send channel to the connection.
func (s *Server) runWebSocketWriter(conn server.WebSocketConn, send <-chan any) {
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("WebSocket close error", "error", err)
		}
	}()
	for msg := range send {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// runWebSocketReader reads commands from the connection and dispatches them.
func (s *Server) runWebSocketReader(conn server.WebSocketConn, send chan<- any, done, statusUpdate chan<- struct{}) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in WebSocket reader", "panic", r)
		}
		close(done)
	}()

	for {
		var cmd server.WSCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		s.commands.Handle(cmd, send, func() {
			select {
			case statusUpdate <- struct{}{}:
			default:
			}
		})
	}
}

// runWebSocketEventLoop handles periodic updates and pose change pushes.
func (s *Server) runWebSocketEventLoop(send chan any, done, statusUpdate <-chan struct{}) {
	levelsTicker := time.NewTicker(100 * time.Millisecond)  // 10 fps for VU meters
	statusTicker := time.NewTicker(3000 * time.Millisecond) // Status updates every 3s
	defer levelsTicker.Stop()
	defer statusTicker.Stop()

	// Pose changes are pushed as they happen rather than polled. The
	// subscription delivers the current pose first so the client renders
	// the right image immediately.
	poses, cancelPoses := s.controller.Subscribe()
	defer cancelPoses()

	// trySend attempts to send a message, returning false if done is closed
	trySend := func(msg any) bool {
		select {
		case send <- msg:
			return true
		case <-done:
			return false
		}
	}

	// Send initial status
	if !trySend(s.buildWSStatus()) {
		close(send)
		return
	}

	for {
		select {
		case <-done:
			close(send)
			return
		case <-statusUpdate:
			if !trySend(s.buildWSStatus()) {
				close(send)
				return
			}
		case pose := <-poses:
			if !trySend(types.WSActivityResponse{
				Type:   "activity",
				Active: pose == types.PoseTalking,
				Pose:   pose.String(),
			}) {
				close(send)
				return
			}
		case <-levelsTicker.C:
			if !trySend(types.WSLevelsResponse{Type: "levels", Levels: s.engine.AudioLevels()}) {
				close(send)
				return
			}
		case <-statusTicker.C:
			if !trySend(s.buildWSStatus()) {
				close(send)
				return
			}
		}
	}
}

// buildWSStatus returns the current WebSocket status response.
func (s *Server) buildWSStatus() types.WSStatusResponse {
	cfg := s.config.Snapshot()

	return types.WSStatusResponse{
		Type:               "status",
		Capture:            s.engine.Status(),
		Devices:            listAudioDevices(),
		Threshold:          cfg.DetectorThreshold,
		DeadbandFactor:     cfg.DeadbandFactor,
		FlickerEnabled:     cfg.FlickerEnabled,
		DeadAirThresholdDB: cfg.DeadAirThresholdDB,
		DeadAirDurationMs:  cfg.DeadAirDurationMs,
		DeadAirRecoveryMs:  cfg.DeadAirRecoveryMs,
		AlertWebhook:       cfg.WebhookURL,
		AlertLogPath:       cfg.LogPath,
		GraphTenantID:      cfg.GraphTenantID,
		GraphClientID:      cfg.GraphClientID,
		GraphFromAddress:   cfg.GraphFromAddress,
		GraphRecipients:    cfg.GraphRecipients,
		Settings: types.WSSettings{
			AudioInput: cfg.AudioInput,
			Platform:   runtime.GOOS,
		},
		Version: s.version.Info(),
	}
}

// listAudioDevices converts platform devices to the wire representation.
func listAudioDevices() []types.AudioDevice {
	devices := audio.ListDevices()
	out := make([]types.AudioDevice, 0, len(devices))
	for _, d := range devices {
		out = append(out, types.AudioDevice{ID: d.ID, Name: d.Name})
	}
	return out
}

// SetupRoutes returns an [http.Handler] configured with all application routes.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()
	auth := s.sessions.AuthMiddleware()

	// Public routes (no auth required)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	// Public static assets (needed for login page styling)
	mux.HandleFunc("/style.css", s.handlePublicStatic)
	mux.HandleFunc("/favicon.svg", s.handleFavicon)

	// Protected routes
	mux.HandleFunc("/ws", auth(s.handleWebSocket))
	mux.HandleFunc("/avatar/{pose}", auth(s.handleAvatarImage))
	mux.HandleFunc("/", auth(s.handleStatic))

	return securityHeaders(mux)
}

// securityHeaders returns middleware that wraps handlers with security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// handleAvatarImage serves the idle or talking pose image.
// GET /avatar/idle, GET /avatar/talking
func (s *Server) handleAvatarImage(w http.ResponseWriter, r *http.Request) {
	var pose types.Pose
	switch r.PathValue("pose") {
	case "idle":
		pose = types.PoseIdle
	case "talking":
		pose = types.PoseTalking
	default:
		http.NotFound(w, r)
		return
	}

	img := s.controller.Image(pose)
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	// Images are loaded once at startup; let the browser cache them per session.
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(img.Data); err != nil {
		slog.Error("failed to write avatar image", "pose", pose.String(), "error", err)
	}
}

// handlePublicStatic handles requests for static files without authentication.
func (s *Server) handlePublicStatic(w http.ResponseWriter, r *http.Request) {
	if !serveStaticFile(w, r.URL.Path) {
		http.NotFound(w, r)
	}
}

// handleFavicon serves the favicon with the configured station color.
func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	cfg := s.config.Snapshot()
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := faviconTmpl.Execute(w, struct{ Color string }{Color: cfg.StationColorLight}); err != nil {
		slog.Error("failed to render favicon", "error", err)
	}
}

// serveStaticFile serves a static file by path and reports whether it was found.
func serveStaticFile(w http.ResponseWriter, path string) bool {
	file, ok := staticFiles[path]
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", file.contentType)
	if _, err := w.Write([]byte(file.content)); err != nil {
		slog.Error("failed to write static file", "file", file.name, "error", err)
	}
	return true
}

// handleLogin handles login page display and form submission.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("avatar_session"); err == nil {
		if s.sessions.Validate(cookie.Value) {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}

	cfg := s.config.Snapshot()
	data := loginData{
		Version:     Version,
		Year:        time.Now().Year(),
		CSRFToken:   s.sessions.CreateCSRFToken(),
		StationName: cfg.StationName,
		PrimaryCSS:  template.CSS(util.GenerateBrandCSS(cfg.StationColorLight, cfg.StationColorDark)),
	}

	if r.Method == http.MethodPost {
		csrfToken := r.FormValue("csrf_token")
		if !s.sessions.ValidateCSRFToken(csrfToken) {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		username := r.FormValue("username")
		password := r.FormValue("password")

		if s.sessions.Login(w, r, username, password, cfg.WebUser, cfg.WebPassword) {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		data.Error = true
		data.CSRFToken = s.sessions.CreateCSRFToken() // New token for retry
	}

	w.Header().Set("Content-Type", "text/html")
	if err := loginTmpl.Execute(w, data); err != nil {
		slog.Error("failed to render login page", "error", err)
	}
}

// handleLogout handles user logout requests.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// staticFile is an embedded static file with content type and data.
type staticFile struct {
	contentType string
	content     string
	name        string
}

// staticFiles is a map from URL paths to static file definitions.
var staticFiles = map[string]staticFile{
	"/style.css": {
		contentType: "text/css",
		content:     styleCSS,
		name:        "style.css",
	},
	"/app.js": {
		contentType: "application/javascript",
		content:     appJS,
		name:        "app.js",
	},
	// favicon.svg is served dynamically via handleFavicon
}

// handleStatic handles requests for embedded static web interface files.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	// Serve index.html with dynamic placeholders.
	if path == "/index.html" {
		cfg := s.config.Snapshot()
		w.Header().Set("Content-Type", "text/html")
		if err := indexTmpl.Execute(w, indexData{
			Version:     Version,
			Year:        time.Now().Year(),
			StationName: cfg.StationName,
			PrimaryCSS:  template.CSS(util.GenerateBrandCSS(cfg.StationColorLight, cfg.StationColorDark)),
		}); err != nil {
			slog.Error("failed to write index.html", "error", err)
		}
		return
	}

	if serveStaticFile(w, path) {
		return
	}

	http.NotFound(w, r)
}

// Start begins the HTTP server.
// Returns an *http.Server that can be used for graceful shutdown.
func (s *Server) Start() *http.Server {
	addr := ":" + strconv.Itoa(s.config.Snapshot().WebPort)
	slog.Info("starting web server", "addr", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.SetupRoutes(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	return srv
}

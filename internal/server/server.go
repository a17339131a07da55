// Package server assembles the stores, handlers, and middleware into the
// application's HTTP handler.
package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/awillits/marginalia/internal/backup"
	"github.com/awillits/marginalia/internal/email"
	"github.com/awillits/marginalia/internal/handler"
	"github.com/awillits/marginalia/internal/imagestore"
	"github.com/awillits/marginalia/internal/middleware"
	"github.com/awillits/marginalia/internal/model"
	"github.com/awillits/marginalia/internal/ocr"
	"github.com/awillits/marginalia/internal/store"
	"github.com/awillits/marginalia/internal/websocket"
)

// Config carries the dependencies built in main.
type Config struct {
	DB            *sql.DB
	DBPath        string
	Images        *imagestore.Store
	OCREngine     ocr.Engine
	Mailer        *email.Client
	SecureCookies bool
	Logger        *slog.Logger

	// OnOCRLanguage is called when the recognition language setting changes.
	OnOCRLanguage func(string)
}

type Server struct {
	cfg     Config
	logger  *slog.Logger
	hub     *websocket.Hub
	limiter *middleware.RateLimiter

	users     *store.UserStore
	sessions  *store.SessionStore
	codes     *store.LoginCodeStore
	notes     *store.NoteStore
	settings  *store.SettingsStore
	snapshots *store.SnapshotStore

	Backups *backup.Manager
}

func New(cfg Config) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    cfg.Logger,
		hub:       websocket.NewHub(cfg.Logger),
		limiter:   middleware.NewRateLimiter(),
		users:     store.NewUserStore(cfg.DB),
		sessions:  store.NewSessionStore(cfg.DB),
		codes:     store.NewLoginCodeStore(cfg.DB),
		notes:     store.NewNoteStore(cfg.DB),
		settings:  store.NewSettingsStore(cfg.DB),
		snapshots: store.NewSnapshotStore(cfg.DB),
	}

	s.Backups = backup.NewManager(cfg.DB, cfg.DBPath, s.snapshots, s.settings, cfg.Logger)
	if settings, err := s.settings.GetS3Settings(); err == nil {
		s.Backups.UpdateS3Config(backup.S3ConfigFromSettings(settings))
	}
	s.Backups.OnStatus(func(snap *model.Snapshot) {
		s.hub.Broadcast(websocket.NewMessage("snapshot", "status",
			strconv.FormatInt(snap.ID, 10),
			map[string]any{"status": string(snap.Status)}))
	})

	return s
}

// Sessions exposes the session store for the maintenance loop in main.
func (s *Server) Sessions() *store.SessionStore { return s.sessions }

// LoginCodes exposes the login code store for the maintenance loop in main.
func (s *Server) LoginCodes() *store.LoginCodeStore { return s.codes }

// Limiter exposes the rate limiter for the maintenance loop in main.
func (s *Server) Limiter() *middleware.RateLimiter { return s.limiter }

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	auth := handler.NewAuthHandler(s.users, s.sessions, s.codes, s.cfg.Mailer, s.cfg.SecureCookies, s.logger)
	notes := handler.NewNoteHandler(s.notes, s.cfg.Images, s.hub, s.logger)
	exports := handler.NewExportHandler(s.notes, s.logger)
	topics := handler.NewTopicHandler(s.notes, s.logger)
	recognition := handler.NewOCRHandler(s.cfg.OCREngine, s.cfg.Images, s.logger)
	settings := handler.NewSettingsHandler(s.settings, s.Backups, s.cfg.OnOCRLanguage, s.logger)
	snapshots := handler.NewSnapshotHandler(s.Backups, s.snapshots, s.logger)

	// Sending codes hits Postmark, so the public auth endpoints get a tight
	// per-IP budget.
	limitByIP := middleware.RateLimit(s.limiter, middleware.RealIP, 10, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("POST /api/auth/register", limitByIP(http.HandlerFunc(auth.Register)))
	mux.Handle("POST /api/auth/login", limitByIP(http.HandlerFunc(auth.Login)))
	mux.Handle("POST /api/auth/verify", limitByIP(http.HandlerFunc(auth.Verify)))

	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/auth/me", auth.Me)
	protected.HandleFunc("POST /api/auth/logout", auth.Logout)

	protected.HandleFunc("GET /api/notes", notes.List)
	protected.HandleFunc("POST /api/notes", notes.Create)
	protected.HandleFunc("GET /api/notes/export", exports.Export)
	protected.HandleFunc("GET /api/notes/{id}", notes.Get)
	protected.HandleFunc("PUT /api/notes/{id}", notes.Update)
	protected.HandleFunc("DELETE /api/notes/{id}", notes.Delete)

	protected.HandleFunc("GET /api/topics", topics.List)
	protected.HandleFunc("POST /api/topics/suggest", topics.Suggest)

	protected.HandleFunc("POST /api/ocr", recognition.Recognize)
	protected.Handle("GET /api/images/", http.StripPrefix("/api/images/",
		http.FileServer(http.Dir(s.cfg.Images.Dir()))))

	protected.HandleFunc("GET /api/settings/ocr", settings.GetOCR)
	protected.HandleFunc("PUT /api/settings/ocr", settings.UpdateOCR)
	protected.HandleFunc("GET /api/settings/storage", settings.GetStorage)
	protected.HandleFunc("PUT /api/settings/storage", settings.UpdateStorage)
	protected.HandleFunc("GET /api/settings/snapshots", settings.GetSnapshots)
	protected.HandleFunc("PUT /api/settings/snapshots", settings.UpdateSnapshots)

	protected.HandleFunc("GET /api/snapshots", snapshots.List)
	protected.HandleFunc("POST /api/snapshots", snapshots.Run)
	protected.HandleFunc("POST /api/snapshots/{id}/restore", snapshots.Restore)

	protected.Handle("GET /ws", websocket.HandleWebSocket(s.hub, s.logger))

	requireAuth := middleware.RequireAuth(s.sessions)
	mux.Handle("/", requireAuth(protected))

	return middleware.RequestLogger(s.logger)(mux)
}

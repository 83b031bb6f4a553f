package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"rental-marketplace/internal/intake"
	"rental-marketplace/internal/listing"
	"rental-marketplace/internal/session"
	"rental-marketplace/internal/storage"
	"syscall"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"
)

// Deps are the marketplace components the HTTP layer calls into
type Deps struct {
	Store   *storage.Store
	Listing *listing.Service
	Gate    *session.Gate
	Desk    *intake.Desk
}

// Server defines fields used in HTTP processing
type Server struct {
	logger        *zap.SugaredLogger
	httpServer    *http.Server
	afterShutdown []func()
}

// NewServer returns new Server struct with provided zap.SugaredLogger and marketplace components
func NewServer(logger *zap.SugaredLogger, deps Deps, opts ...Option) (*Server, error) {
	if deps.Store == nil || deps.Listing == nil || deps.Gate == nil || deps.Desk == nil {
		return nil, fmt.Errorf("server: incomplete dependencies")
	}

	h := &handler{
		logger:  logger,
		store:   deps.Store,
		listing: deps.Listing,
		gate:    deps.Gate,
		desk:    deps.Desk,
		parsers: &fastjson.ParserPool{},
	}

	cfg := &config{
		httpServer: &http.Server{Addr: "0.0.0.0:9000"},
		handlers: map[string]http.Handler{
			"/properties/get":          http.HandlerFunc(h.filterProperties),
			"/properties/find":         http.HandlerFunc(h.findProperty),
			"/properties/add":          http.HandlerFunc(h.createProperty),
			"/properties/update":       http.HandlerFunc(h.updateProperty),
			"/properties/delete":       http.HandlerFunc(h.deleteProperty),
			"/properties/mine":         http.HandlerFunc(h.myProperties),
			"/chats/add":               http.HandlerFunc(h.createChat),
			"/chats/get":               http.HandlerFunc(h.listChats),
			"/chats/find":              http.HandlerFunc(h.findChat),
			"/chats/mine":              http.HandlerFunc(h.myChats),
			"/chats/read":              http.HandlerFunc(h.markChatRead),
			"/messages/add":            http.HandlerFunc(h.createMessage),
			"/session/login":           http.HandlerFunc(h.login),
			"/session/register":        http.HandlerFunc(h.register),
			"/session/logout":          http.HandlerFunc(h.logout),
			"/session/current":         http.HandlerFunc(h.currentUser),
			"/dashboard/user":          http.HandlerFunc(h.userDashboard),
			"/dashboard/admin":         http.HandlerFunc(h.adminDashboard),
			"/admin/properties/status": http.HandlerFunc(h.setPropertyStatus),
			"/services/get":            http.HandlerFunc(h.listServices),
			"/intake/add":              http.HandlerFunc(h.submitIntake),
		},
	}

	for _, opt := range opts {
		opt.apply(cfg)
	}

	m := newMetrics()
	internal := []Option{
		applyEnforcePostJson(),
		applyMetrics(m),
		applyLog(logger.Desugar()),
		registerHandlers(m),
	}
	for _, opt := range internal {
		opt.apply(cfg)
	}

	return &Server{
		logger:        logger,
		httpServer:    cfg.httpServer,
		afterShutdown: cfg.afterShutdown,
	}, nil
}

// Handler returns the root http.Handler, useful to serve the API from tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start calls ListenAndServe on http.Server instance inside Server struct
// and implements graceful shutdown via goroutine waiting for signals
func (s *Server) Start() error {
	idleConnsClosed := make(chan struct{})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		s.logger.Info("Shutting down HTTP server")

		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			s.logger.Errorf("srv.Shutdown: %v", err)
		}
		s.logger.Info("HTTP server is stopped")

		close(idleConnsClosed)
	}()

	s.logger.Infof("Starting HTTP server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("s.httpServer.ListenAndServe: %v", err)
	}

	<-idleConnsClosed

	for _, f := range s.afterShutdown {
		f()
	}

	return nil
}

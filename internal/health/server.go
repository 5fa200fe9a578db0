// Package health serves liveness and usage counters over HTTP.
package health

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// UserCounter reports the number of known users.
type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

// DialogueCounter reports the number of open dialogues.
type DialogueCounter interface {
	Len() int
}

// Stats is the body of GET /stats.
type Stats struct {
	Users         int64 `json:"users"`
	OpenDialogues int   `json:"open_dialogues"`
}

// Server exposes /healthz and /stats.
type Server struct {
	echo      *echo.Echo
	addr      string
	users     UserCounter
	dialogues DialogueCounter
}

// NewServer registers the routes. Nothing listens until Start.
func NewServer(addr string, users UserCounter, dialogues DialogueCounter) (*Server, error) {
	if addr == "" {
		return nil, fmt.Errorf("health server address cannot be empty")
	}
	if users == nil || dialogues == nil {
		return nil, fmt.Errorf("health server counters cannot be nil")
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, addr: addr, users: users, dialogues: dialogues}
	e.GET("/healthz", s.healthz)
	e.GET("/stats", s.stats)
	return s, nil
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) stats(c echo.Context) error {
	users, err := s.users.CountUsers(c.Request().Context())
	if err != nil {
		log.Printf("[Health] Failed to count users: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "store unavailable"})
	}
	return c.JSON(http.StatusOK, Stats{Users: users, OpenDialogues: s.dialogues.Len()})
}

// Start serves until the server is shut down.
func (s *Server) Start() error {
	log.Printf("[Health] Listening on %s", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting up to 5 seconds for open requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

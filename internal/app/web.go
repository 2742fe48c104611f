// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/relabs-tech/motion_events/internal/config"
	"github.com/relabs-tech/motion_events/internal/events"
	"github.com/relabs-tech/motion_events/internal/store"
)

// defaultEventLimit is used when /api/events has no limit parameter.
const defaultEventLimit = 50

// EventHistory is the read side of the event store.
type EventHistory interface {
	Recent(ctx context.Context, limit int, kind events.Kind) ([]events.Event, error)
	Counts(ctx context.Context) (map[events.Kind]int, error)
}

// WebServer keeps the latest report from MQTT and serves it, the event
// history and a live event stream.
type WebServer struct {
	mu         sync.RWMutex
	lastReport ReportMessage
	haveReport bool

	hub     *Hub
	history EventHistory // nil when no store is configured
}

func NewWebServer(history EventHistory) *WebServer {
	return &WebServer{hub: NewHub(), history: history}
}

// HandleReport records the latest report.
func (s *WebServer) HandleReport(msg ReportMessage) {
	s.mu.Lock()
	s.lastReport = msg
	s.haveReport = true
	s.mu.Unlock()
}

// HandleEvent pushes ev to websocket clients.
func (s *WebServer) HandleEvent(ev events.Event) {
	s.hub.Broadcast(ev)
}

// Router builds the HTTP API.
func (s *WebServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)
	api := r.Group("/api")
	{
		api.GET("/motion", s.motion)
		api.GET("/events", s.events)
		api.GET("/events/stats", s.stats)
	}
	r.GET("/ws", gin.WrapH(s.hub))

	// static files from ./web as the root
	r.NoRoute(gin.WrapH(http.FileServer(http.Dir("web"))))
	return r
}

func (s *WebServer) health(c *gin.Context) {
	s.mu.RLock()
	have := s.haveReport
	s.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"have_report": have,
		"ws_clients":  s.hub.Len(),
		"history":     s.history != nil,
	})
}

func (s *WebServer) motion(c *gin.Context) {
	s.mu.RLock()
	msg, have := s.lastReport, s.haveReport
	s.mu.RUnlock()

	if !have {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data yet"})
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (s *WebServer) events(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event history disabled"})
		return
	}

	limit := defaultEventLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > store.MaxLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be 1-%d", store.MaxLimit)})
			return
		}
		limit = n
	}

	var kind events.Kind
	if v := c.Query("kind"); v != "" {
		k, err := events.ParseKind(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		kind = k
	}

	evs, err := s.history.Recent(c.Request.Context(), limit, kind)
	if err != nil {
		log.Printf("web: event query error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": evs, "count": len(evs)})
}

func (s *WebServer) stats(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event history disabled"})
		return
	}
	counts, err := s.history.Counts(c.Request.Context())
	if err != nil {
		log.Printf("web: event count error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event count failed"})
		return
	}
	c.JSON(http.StatusOK, counts)
}

// RunWeb subscribes to the producer's topics and serves the web API until
// ctx is cancelled.
func RunWeb(ctx context.Context) error {
	cfg := config.Get()

	var history EventHistory
	if cfg.EventDBPath != "" {
		st, err := store.Open(cfg.EventDBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		history = st
	}
	srv := NewWebServer(history)
	defer srv.hub.Close()

	client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribeJSON(client, "web", cfg.TopicMotionReport, srv.HandleReport); err != nil {
		return err
	}
	if err := subscribeJSON(client, "web", cfg.TopicMotionEvents, srv.HandleEvent); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	return serveHTTP(ctx, "web", fmt.Sprintf(":%d", cfg.WebServerPort), srv.Router())
}

// serveHTTP runs handler on addr and shuts it down when ctx ends.
func serveHTTP(ctx context.Context, component, addr string, handler http.Handler) error {
	server := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("%s: listening on %s", component, addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

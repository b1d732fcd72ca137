// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/itsatony/homehub/api"
	"github.com/itsatony/homehub/internal/config"
	"github.com/itsatony/homehub/internal/hubservice"
	"github.com/itsatony/homehub/internal/models"
	"github.com/itsatony/homehub/internal/monitoring"
	"github.com/itsatony/homehub/internal/relay"
	"github.com/itsatony/homehub/internal/state"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
	closers    []io.Closer
}

// New creates a new server instance with a fresh, empty hub state
func New(cfg *config.Config) *Server {
	svc := hubservice.New(state.NewStore(), state.NewFrameBuffer())

	var mon *monitoring.Service
	if cfg.Monitoring.MetricsEnabled {
		mon = monitoring.NewService()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(svc, mon, cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		srv:        srv,
		hubservice: svc,
		monitoring: mon,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	if err := s.hubservice.Validate(); err != nil {
		return err
	}

	// Set up state event handlers
	s.setupEventHandlers()
	if err := s.setupRelays(); err != nil {
		return err
	}
	defer s.closeRelays()

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) setupEventHandlers() {
	if s.monitoring == nil {
		return
	}

	s.hubservice.OnControlChanged(func(c models.ControlState) {
		s.monitoring.RecordEvent(hubservice.EventControlChanged, map[string]string{
			"revision": fmt.Sprint(c.Revision),
		})
		s.monitoring.ObserveControlRevision(c.Revision)
	})

	s.hubservice.OnSensorUpdated(func(snap models.SensorSnapshot) {
		s.monitoring.RecordEvent(hubservice.EventSensorUpdated, map[string]string{
			"last_seen": snap.LastSeen,
		})
	})

	s.hubservice.OnFrameReceived(func(f *models.Frame) {
		s.monitoring.RecordEvent(hubservice.EventFrameReceived, map[string]string{
			"sequence": fmt.Sprint(f.Sequence),
		})
		s.monitoring.ObserveFrame(f.Size)
	})
}

// setupRelays connects the optional MQTT and Redis relays and subscribes them
// to state changes. The current control state is published once on connect.
func (s *Server) setupRelays() error {
	cfg := s.config

	if cfg.MQTT.Enabled {
		client, err := relay.ConnectMQTT(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("mqtt relay: %w", err)
		}
		s.closers = append(s.closers, closerFunc(func() error {
			client.Disconnect(250)
			return nil
		}))

		r := relay.NewMQTTRelay(client, cfg.MQTT.ControlTopic, cfg.MQTT.QoS, cfg.MQTT.ConnectTimeout)
		publish := func(c models.ControlState) {
			if err := r.PublishControl(c); err != nil {
				nuts.L.Warnf("[Server] MQTT relay: %v", err)
				s.relayFailed("mqtt")
			}
		}
		s.hubservice.OnControlChanged(publish)
		publish(s.hubservice.ControlState())
		nuts.L.Infof("[Server] MQTT relay publishing control state on %s", cfg.MQTT.ControlTopic)
	}

	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		client, err := relay.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis relay: %w", err)
		}
		s.closers = append(s.closers, client)

		r := relay.NewRedisRelay(client, cfg.Redis, cfg.Server.WriteTimeout)
		s.hubservice.OnControlChanged(func(c models.ControlState) {
			if err := r.PublishControl(context.Background(), c); err != nil {
				nuts.L.Warnf("[Server] Redis relay: %v", err)
				s.relayFailed("redis")
			}
		})
		s.hubservice.OnSensorUpdated(func(snap models.SensorSnapshot) {
			if err := r.PublishSensor(context.Background(), snap); err != nil {
				nuts.L.Warnf("[Server] Redis relay: %v", err)
				s.relayFailed("redis")
			}
		})
		nuts.L.Infof("[Server] Redis relay publishing on %s and %s", cfg.Redis.ControlChannel, cfg.Redis.SensorChannel)
	}
	return nil
}

func (s *Server) relayFailed(transport string) {
	if s.monitoring != nil {
		s.monitoring.RelayFailed(transport)
	}
}

func (s *Server) closeRelays() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			nuts.L.Warnf("[Server] Error closing relay: %v", err)
		}
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

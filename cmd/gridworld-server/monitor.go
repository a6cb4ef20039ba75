package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"gridworld/shared"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

// Monitor serves read-only world snapshots to external viewers: a JSON
// status endpoint and a websocket stream that receives every published
// snapshot. It never feeds anything back into the simulation.
type Monitor struct {
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[*websocket.Conn]bool
	latest shared.Snapshot

	server *http.Server
}

// NewMonitor creates a monitor listening on addr.
func NewMonitor(addr string) *Monitor {
	m := &Monitor{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow connections from any origin
			},
		},
		conns: make(map[*websocket.Conn]bool),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", m.handleHealth)
	mux.HandleFunc("/status", m.handleStatus)
	mux.HandleFunc("/ws", m.handleWS)
	m.server = &http.Server{Addr: addr, Handler: mux}
	return m
}

// Publish records the latest snapshot and broadcasts it to every connected
// viewer. It is called from inside the tick loop, so slow connections are
// dropped rather than waited on.
func (m *Monitor) Publish(snap shared.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = snap
	for conn := range m.conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(snap); err != nil {
			logrus.Warnf("monitor: dropping viewer: %v", err)
			conn.Close()
			delete(m.conns, conn)
		}
	}
}

// handleWS upgrades the connection and registers it for snapshot broadcasts.
func (m *Monitor) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Errorf("monitor: failed to upgrade connection: %v", err)
		return
	}

	m.mu.Lock()
	m.conns[conn] = true
	latest := m.latest
	m.mu.Unlock()

	// Send the current state immediately so the viewer doesn't wait a tick.
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(latest); err != nil {
		logrus.Warnf("monitor: initial snapshot write failed: %v", err)
		m.drop(conn)
		return
	}

	logrus.Infof("monitor: viewer connected from %s", r.RemoteAddr)
	go m.keepAlive(conn)
}

// keepAlive pings the viewer and reads (and discards) incoming frames so the
// connection's close state is noticed.
func (m *Monitor) keepAlive(conn *websocket.Conn) {
	defer m.drop(conn)

	conn.SetPongHandler(func(string) error { return nil })
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				m.drop(conn)
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for range ticker.C {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

func (m *Monitor) drop(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conns[conn] {
		conn.Close()
		delete(m.conns, conn)
		logrus.Info("monitor: viewer disconnected")
	}
}

func (m *Monitor) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func (m *Monitor) handleStatus(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	latest := m.latest
	m.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(latest)
}

// Serve runs the HTTP server until Shutdown.
func (m *Monitor) Serve() error {
	logrus.Infof("monitor listening on %s", m.server.Addr)
	if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown closes all viewer connections and stops the HTTP server.
func (m *Monitor) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	for conn := range m.conns {
		conn.Close()
		delete(m.conns, conn)
	}
	m.mu.Unlock()
	return m.server.Shutdown(ctx)
}

// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"net/http"
	"sync"

	"neonviz/internal/log"
	"neonviz/internal/visualizer"

	"github.com/gorilla/websocket"
)

var errTransportClosed = errors.New("transport closed")

// WebSocketPath is where clients connect to receive JSON frames.
const WebSocketPath = "/ws"

// WebSocketTransport broadcasts every frame as JSON to all connected clients.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan *visualizer.Frame
	done      chan struct{}
	server    *http.Server
	closeOnce sync.Once
}

// NewWebSocketTransport creates a WebSocketTransport and starts serving on
// addr (for example ":8080").
func NewWebSocketTransport(addr string) *WebSocketTransport {
	wst := newWebSocketTransport(addr)

	// Start server
	wst.start()
	return wst
}

func newWebSocketTransport(addr string) *WebSocketTransport {
	return &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // Renderers may be served from anywhere
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan *visualizer.Frame, 16),
		done:      make(chan struct{}),
	}
}

// start begins the WebSocket server
func (wst *WebSocketTransport) start() {
	mux := http.NewServeMux()
	mux.Handle(WebSocketPath, wst)

	wst.server = &http.Server{
		Addr:    wst.addr,
		Handler: mux,
	}

	go func() {
		log.Infof("WebSocketTransport: starting server on %s%s", wst.addr, WebSocketPath)
		if err := wst.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("WebSocketTransport: server error: %v", err)
		}
	}()

	go wst.handleBroadcasts()
}

// ServeHTTP upgrades the request and registers the client.
func (wst *WebSocketTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocketTransport: upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	log.Infof("WebSocketTransport: client connected from %s, total: %d", r.RemoteAddr, total)

	// Clients never send; a read error means they went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.removeClient(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) removeClient(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	if wst.clients[conn] {
		delete(wst.clients, conn)
		conn.Close()
		log.Infof("WebSocketTransport: client disconnected, total: %d", len(wst.clients))
	}
	wst.clientsMu.Unlock()
}

// ClientCount returns the number of connected clients.
func (wst *WebSocketTransport) ClientCount() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// handleBroadcasts sends queued frames to all connected clients
func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		var frame *visualizer.Frame
		select {
		case <-wst.done:
			return
		case frame = <-wst.broadcast:
		}

		wst.clientsMu.Lock()
		for client := range wst.clients {
			if err := client.WriteJSON(frame); err != nil {
				log.Warnf("WebSocketTransport: error sending to client: %v", err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
	}
}

// Send queues a copy of frame for broadcast. Frames are dropped while the
// queue is full or no client is connected.
func (wst *WebSocketTransport) Send(frame *visualizer.Frame) error {
	if wst.ClientCount() == 0 {
		return nil
	}
	select {
	case <-wst.done:
		return errTransportClosed
	case wst.broadcast <- frame.Clone():
	default:
		log.Debugf("WebSocketTransport: queue full, dropped frame %d", frame.Number)
	}
	return nil
}

// Close shuts down the WebSocket server and disconnects every client.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		log.Info("WebSocketTransport: closing server")

		if wst.server != nil {
			err = wst.server.Close()
		}

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		wst.clients = make(map[*websocket.Conn]bool)
		wst.clientsMu.Unlock()

		close(wst.done)
	})
	return err
}

// Ensure WebSocketTransport satisfies the interface
var _ Transport = (*WebSocketTransport)(nil)

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/internal/viewer"
)

const (
	// commandQueueSize bounds the commands waiting for the UI thread.
	commandQueueSize = 64
	// clientQueueSize bounds the messages waiting for one client. Newer
	// frames are dropped while it is full.
	clientQueueSize = 16
	writeWait       = 5 * time.Second
)

// Remote errors.
var (
	ErrQueueFull = errors.New("command queue full")
	ErrNoState   = errors.New("no state published yet")
)

// client is one connection and its outgoing queue. Only writeLoop writes
// to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

type errorReply struct {
	Error string `json:"error"`
}

// Server accepts commands on /ws and broadcasts session snapshots.
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	commands chan Command
	log      *zap.Logger

	mu        sync.Mutex
	clients   map[*client]bool
	lastState []byte

	httpServer *http.Server
	listener   net.Listener
}

// New creates a server for cfg. It does not listen until Start.
func New(cfg config.RemoteConfig) *Server {
	s := &Server{
		addr:     cfg.Addr,
		commands: make(chan Command, commandQueueSize),
		clients:  make(map[*client]bool),
		log:      logger.Named("remote"),
	}
	if len(cfg.AllowedOrigins) > 0 {
		allowed := make(map[string]bool, len(cfg.AllowedOrigins))
		for _, o := range cfg.AllowedOrigins {
			allowed[o] = true
		}
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[origin]
		}
	}
	return s
}

// Handler returns the HTTP handler serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.httpServer = &http.Server{Handler: s.Handler()}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("remote server stopped", zap.Error(err))
		}
	}()
	s.log.Info("remote control listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown stops the listener and closes every client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for c := range s.clients {
		c.conn.Close()
		s.removeLocked(c)
	}
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Commands delivers validated commands in arrival order.
func (s *Server) Commands() <-chan Command {
	return s.commands
}

// Drain hands every queued command to fn without blocking and returns how
// many there were. Call it from the UI thread.
func (s *Server) Drain(fn func(Command)) int {
	n := 0
	for {
		select {
		case cmd := <-s.commands:
			fn(cmd)
			n++
		default:
			return n
		}
	}
}

// Publish queues snap for every client without blocking. A client whose
// queue is full misses the frame. New clients receive the last snapshot on
// connect.
func (s *Server) Publish(snap viewer.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Error("marshaling state", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastState = data
	for c := range s.clients {
		s.queueLocked(c, data)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientQueueSize)}
	go s.writeLoop(c)

	s.mu.Lock()
	s.clients[c] = true
	if s.lastState != nil {
		s.queueLocked(c, s.lastState)
	}
	s.mu.Unlock()
	s.log.Debug("client connected", zap.String("remote", r.RemoteAddr))

	defer func() {
		s.mu.Lock()
		s.removeLocked(c)
		s.mu.Unlock()
		conn.Close()
		s.log.Debug("client disconnected", zap.String("remote", r.RemoteAddr))
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.reply(c, err)
			continue
		}
		if err := cmd.Validate(); err != nil {
			s.reply(c, err)
			continue
		}
		if cmd.Action == ActionState {
			s.replyState(c)
			continue
		}

		select {
		case s.commands <- cmd:
		default:
			s.reply(c, ErrQueueFull)
		}
	}
}

// writeLoop drains the client's queue until it is closed. A write that
// misses writeWait closes the connection, which ends the read loop.
func (s *Server) writeLoop(c *client) {
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.log.Debug("websocket write failed", zap.Error(err))
			c.conn.Close()
			return
		}
	}
}

func (s *Server) queueLocked(c *client, data []byte) {
	if !s.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
		s.log.Debug("client queue full, dropping message")
	}
}

func (s *Server) removeLocked(c *client) {
	if s.clients[c] {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) reply(c *client, err error) {
	data, _ := json.Marshal(errorReply{Error: err.Error()})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queueLocked(c, data)
}

// replyState sends the last published snapshot to c alone.
func (s *Server) replyState(c *client) {
	s.mu.Lock()
	state := s.lastState
	if state != nil {
		s.queueLocked(c, state)
	}
	s.mu.Unlock()

	if state == nil {
		s.reply(c, ErrNoState)
	}
}

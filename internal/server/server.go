// Package server contains the connection listeners, the per-connection
// reader and writer loops, and the coordination engine that owns all
// room and session state.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"

	"github.com/chatwire/chatwire/internal/config"
	"github.com/chatwire/chatwire/internal/protocol"
)

// ChatServer accepts framed TCP connections and websocket upgrades and
// hands each one to the engine as an independent client session.
type ChatServer struct {
	log         *log.Logger
	cfg         *config.Config
	engine      *Engine
	codec       protocol.Codec
	listener    net.Listener
	httpSrv     *http.Server
	clients     map[*Client]struct{}
	clientsLock sync.Mutex
	stop        chan struct{}
	wg          sync.WaitGroup
}

func NewChatServer(logger *log.Logger, cfg *config.Config, engine *Engine, codec protocol.Codec, mux *http.ServeMux) *ChatServer {
	s := &ChatServer{
		log:     logger,
		cfg:     cfg,
		engine:  engine,
		codec:   codec,
		clients: make(map[*Client]struct{}),
		stop:    make(chan struct{}),
	}

	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
	)(mux)

	s.httpSrv = &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: h,
	}

	return s
}

// Start opens the TCP listener and serves the HTTP gateway. It blocks
// until the HTTP server stops.
func (s *ChatServer) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = ln
	s.log.Printf("listening for framed connections on %s", ln.Addr())

	s.wg.Add(1)
	go s.acceptLoop()

	s.log.Printf("starting http gateway on %s", s.cfg.HTTPAddr)
	return s.httpSrv.ListenAndServe()
}

func (s *ChatServer) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stop:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Println("accept:", err)
			continue
		}

		s.startClient(newTCPTransport(conn))
	}
}

func (s *ChatServer) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(s.cfg.AllowedOrigins) == 0 {
				return true
			}

			return slices.Contains(s.cfg.AllowedOrigins, origin)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	s.startClient(newWSTransport(conn))
}

func (s *ChatServer) startClient(t Transport) {
	client := NewClient(uuid.NewString(), t, s.engine, s.codec, s.log, s.cfg.SendQueueSize)
	client.onClose = s.removeClient

	s.addClient(client)
	s.engine.Connect(client)

	go client.Write()
	go client.Read()
}

func (s *ChatServer) addClient(c *Client) {
	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()
	s.clients[c] = struct{}{}
}

func (s *ChatServer) removeClient(c *Client) {
	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()
	delete(s.clients, c)
}

// Shutdown stops accepting connections, tears down the gateway and closes
// every live client transport, which feeds each reader's disconnect into
// the engine. The engine itself is drained separately by its own
// Shutdown.
func (s *ChatServer) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down listeners")
	close(s.stop)

	if s.listener != nil {
		s.listener.Close()
	}

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.clientsLock.Lock()
	for c := range s.clients {
		c.stopClient()
		c.transport.Close()
	}
	s.clientsLock.Unlock()

	s.wg.Wait()
	return nil
}

package server

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/chatwire/chatwire/internal/protocol"
)

// Client is one live transport session. The reader and writer goroutines
// run independently of every other connection; handle and currentRoom are
// session state owned exclusively by the engine loop.
type Client struct {
	id        string
	transport Transport
	engine    *Engine
	codec     protocol.Codec
	log       *log.Logger
	send      chan *protocol.Event
	stop      chan struct{}
	stopOnce  sync.Once
	onClose   func(*Client)

	// written only inside the engine loop
	handle      string
	currentRoom string
}

func NewClient(id string, transport Transport, engine *Engine, codec protocol.Codec, l *log.Logger, queueSize int) *Client {
	return &Client{
		id:        id,
		transport: transport,
		engine:    engine,
		codec:     codec,
		log:       l,
		send:      make(chan *protocol.Event, queueSize),
		stop:      make(chan struct{}),
	}
}

func (c *Client) Id() string { return c.id }

// Read consumes payloads from the transport, decodes them and forwards
// the commands to the engine. It exits on the first protocol error, which
// feeds exactly one disconnect notification to the engine.
func (c *Client) Read() {
	defer func() {
		c.transport.Close()
		c.engine.Disconnect(c)
		c.stopClient()
		if c.onClose != nil {
			c.onClose(c)
		}
		c.log.Printf("client %s: read exiting", c.id)
	}()

	for {
		payload, err := c.transport.ReadPayload()
		if err != nil {
			if !errors.Is(err, protocol.ErrConnectionClosed) {
				c.log.Printf("client %s: read: %v", c.id, err)
			}
			return
		}

		cmd, err := c.codec.DecodeCommand(payload)
		if err != nil {
			c.log.Printf("client %s: decode: %v", c.id, err)
			c.queueEvent(protocol.NewErrorEvent("invalid command payload"))
			continue
		}

		c.engine.Submit(c, cmd)
	}
}

// Write drains the send queue onto the transport and keeps the
// connection alive with transport-level pings.
func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.transport.Close()
		c.log.Printf("client %s: write exiting", c.id)
	}()

	for {
		select {
		case evt, ok := <-c.send:
			if !ok {
				return
			}

			data, err := c.codec.EncodeEvent(evt)
			if err != nil {
				c.log.Printf("client %s: encode: %v", c.id, err)
				continue
			}

			if err := c.transport.WritePayload(data); err != nil {
				c.log.Printf("client %s: write: %v", c.id, err)
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if err := c.transport.Ping(); err != nil {
				return
			}
		}
	}
}

// queueEvent enqueues an event for delivery without blocking. A client
// whose queue is full loses the event; delivery stays best effort and one
// stalled connection never holds up a broadcast.
func (c *Client) queueEvent(evt *protocol.Event) bool {
	select {
	case c.send <- evt:
	case <-c.stop:
		return false
	default:
		c.log.Printf("client %s: send queue full, dropping event %s", c.id, evt.Type)
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

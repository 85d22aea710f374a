package websocketPkg

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Status uint8

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusError
)

var statusMap = map[Status]string{
	StatusDisconnected: "disconnected",
	StatusConnecting:   "connecting",
	StatusConnected:    "connected",
	StatusError:        "error",
}

func (s Status) String() string {
	return statusMap[s]
}

const (
	initialBackoff   = 500 * time.Millisecond
	maxBackoff       = 30 * time.Second
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second

	// Outgoing frame ceiling. The detection loop already paces itself via
	// its adaptive interval; this only guards against a misconfigured
	// interval flooding the service.
	maxSendRate = 40
)

type IChannel interface {
	Connect()
	Disconnect()
	Send(payload []byte)
	Status() <-chan Status
	Messages() <-chan map[string]interface{}
	Diagnostics() <-chan string
	CurrentStatus() Status
}

// Channel maintains one logical connection to the remote detection service.
// Connection loss is recovered with exponential backoff; callers that did
// not create the channel must not call Connect or Disconnect.
type Channel struct {
	url     string
	log     *logrus.Logger
	dialer  *websocket.Dialer
	limiter *rate.Limiter

	mu        sync.Mutex
	conn      *websocket.Conn
	status    Status
	attempts  int
	reconnect *time.Timer
	closed    bool

	statusCh chan Status
	msgCh    chan map[string]interface{}
	errCh    chan string
}

func NewChannel(url string, logger *logrus.Logger) IChannel {
	return &Channel{
		url:     url,
		log:     logger,
		dialer:  &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		limiter: rate.NewLimiter(rate.Limit(maxSendRate), maxSendRate),

		statusCh: make(chan Status, 8),
		msgCh:    make(chan map[string]interface{}, 8),
		errCh:    make(chan string, 8),
	}
}

func (c *Channel) Status() <-chan Status                   { return c.statusCh }
func (c *Channel) Messages() <-chan map[string]interface{} { return c.msgCh }
func (c *Channel) Diagnostics() <-chan string              { return c.errCh }

func (c *Channel) CurrentStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Channel) Connect() {
	c.mu.Lock()
	if c.closed || c.status == StatusConnecting || c.status == StatusConnected {
		c.mu.Unlock()
		return
	}
	c.setStatusLocked(StatusConnecting)
	c.mu.Unlock()

	go c.dial()
}

func (c *Channel) dial() {
	conn, _, err := c.dialer.Dial(c.url, nil)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		c.setStatusLocked(StatusError)
		c.reportLocked(fmt.Sprintf("connect to %s failed: %v", c.url, err))
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		return
	}

	c.conn = conn
	c.attempts = 0
	c.setStatusLocked(StatusConnected)
	c.mu.Unlock()

	c.log.Debugf("Connected to detection service at %s", c.url)

	go c.readLoop(conn)
}

// Send transmits one binary payload. Frames are dropped silently while the
// channel is not connected; there is no queueing.
func (c *Channel) Send(payload []byte) {
	c.mu.Lock()
	conn := c.conn
	connected := c.status == StatusConnected && conn != nil
	c.mu.Unlock()

	if !connected {
		return
	}

	if !c.limiter.Allow() {
		c.log.Debug("Send rate ceiling hit, dropping frame")
		return
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		c.handleConnError(conn, fmt.Sprintf("send failed: %v", err))
	}
}

// Disconnect tears the channel down. It is idempotent and cancels any
// pending reconnect so a disposed session cannot be resurrected.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	c.setStatusLocked(StatusDisconnected)
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.handleConnError(conn, fmt.Sprintf("connection lost: %v", err))
			return
		}

		msg, err := decodeMessage(payload)
		if err != nil {
			c.report(fmt.Sprintf("dropping undecodable message: %v", err))
			continue
		}

		c.deliver(msg)
	}
}

func (c *Channel) handleConnError(conn *websocket.Conn, diag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.conn != conn {
		return
	}

	conn.Close()
	c.conn = nil
	c.setStatusLocked(StatusError)
	c.reportLocked(diag)
	c.scheduleReconnectLocked()
}

func (c *Channel) scheduleReconnectLocked() {
	delay := backoffDelay(c.attempts)
	c.attempts++

	c.log.Debugf("Scheduling reconnect attempt %d in %s", c.attempts, delay)

	c.reconnect = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.closed || c.status == StatusConnecting || c.status == StatusConnected {
			c.mu.Unlock()
			return
		}
		c.setStatusLocked(StatusConnecting)
		c.mu.Unlock()

		c.dial()
	})
}

// backoffDelay doubles per attempt starting at 500ms, capped at 30s. The
// attempt counter itself is uncapped and resets on a successful connect.
func backoffDelay(attempt int) time.Duration {
	delay := initialBackoff
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// decodeMessage parses an inbound text or UTF-8 binary payload into a JSON
// object. The remote service sometimes double-encodes its payload as a JSON
// string; a decoded string is decoded once more.
func decodeMessage(payload []byte) (map[string]interface{}, error) {
	var decoded interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, err
	}

	if inner, ok := decoded.(string); ok {
		if err := json.Unmarshal([]byte(inner), &decoded); err != nil {
			return nil, fmt.Errorf("double-encoded payload: %w", err)
		}
	}

	msg, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected JSON object, got %T", decoded)
	}

	return msg, nil
}

func (c *Channel) deliver(msg map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.msgCh <- msg:
	default:
		c.log.Warn("Message subscriber lagging, dropping detection result")
	}
}

func (c *Channel) setStatusLocked(status Status) {
	c.status = status
	select {
	case c.statusCh <- status:
	default:
	}
}

func (c *Channel) report(diag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.reportLocked(diag)
}

func (c *Channel) reportLocked(diag string) {
	c.log.Debugf("Detection channel: %s", diag)
	select {
	case c.errCh <- diag:
	default:
	}
}

// Package stream subscribes to conversation push updates over a WebSocket.
package stream

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/messenger-api-go/internal/constants"
	"github.com/kapu/messenger-api-go/internal/util"
	"github.com/kapu/messenger-api-go/pkg/naming"
	"go.uber.org/zap"
)

// ErrStopped is returned by Connect once the subscriber has shut down.
var ErrStopped = errors.New("stream subscriber stopped")

type EventCallback func(event *Event)

type StateCallback func(state State)

type eventEntry struct {
	id       int
	callback EventCallback
}

type stateEntry struct {
	id       int
	callback StateCallback
}

// Subscriber keeps one WebSocket open and reconnects a bounded number of
// times with a fixed delay. It cannot be restarted after Stop or after the
// context given to Connect ends.
type Subscriber struct {
	url                  string
	header               http.Header
	maxReconnectAttempts int
	reconnectDelay       time.Duration
	logger               *zap.Logger

	state   State
	stateMu sync.RWMutex

	conn    *websocket.Conn
	running bool
	closed  bool
	connMu  sync.Mutex

	eventCallbacks []eventEntry
	stateCallbacks []stateEntry
	nextCallbackID int
	callbacksMu    sync.RWMutex

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSubscriber(url string, header http.Header, maxReconnectAttempts int, reconnectDelay time.Duration, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		url:                  url,
		header:               header,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		logger:               logger,
		state:                StateDisconnected,
		stopCh:               make(chan struct{}),
		nextCallbackID:       1,
	}
}

// Connect dials once and, on success, starts the read loop in the
// background. A failed first dial is returned and not retried.
func (s *Subscriber) Connect(ctx context.Context) error {
	s.connMu.Lock()
	if s.closed {
		s.connMu.Unlock()
		return ErrStopped
	}
	if s.running {
		s.connMu.Unlock()
		s.logger.Warn("Stream already connected or connecting")
		return nil
	}
	s.running = true
	s.connMu.Unlock()

	s.setState(StateConnecting)
	conn, err := s.dial(ctx)
	if err != nil {
		s.logger.Error("Failed to connect stream", zap.Error(err))
		s.setState(StateFailed)
		s.connMu.Lock()
		s.running = false
		s.connMu.Unlock()
		return err
	}

	// Add under connMu so it cannot race the Wait in Stop, which only runs
	// after shutdownConn has marked the subscriber closed.
	s.connMu.Lock()
	if s.closed {
		s.running = false
		s.connMu.Unlock()
		_ = conn.Close()
		return ErrStopped
	}
	s.wg.Add(2)
	s.connMu.Unlock()

	done := make(chan struct{})
	go s.run(ctx, conn, done)
	go s.watch(ctx, done)
	return nil
}

func (s *Subscriber) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: constants.WebSocketConfig.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, s.url, s.header)
	return conn, err
}

// watch closes the live connection when ctx ends so a blocked read returns.
func (s *Subscriber) watch(ctx context.Context, done <-chan struct{}) {
	defer s.wg.Done()
	select {
	case <-ctx.Done():
		s.shutdownConn()
	case <-s.stopCh:
	case <-done:
	}
}

func (s *Subscriber) run(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer s.wg.Done()
	defer func() {
		s.connMu.Lock()
		s.running = false
		s.connMu.Unlock()
		close(done)
		s.logger.Info("Stream listener stopped")
	}()

	attempts := 0
	for {
		if !s.setConn(conn) {
			return
		}
		s.setState(StateConnected)
		s.logger.Info("Stream connected", zap.String("url", s.url))

		// A connection that delivered something counts as healthy.
		if s.read(conn) > 0 {
			attempts = 0
		}
		s.closeConn()

		s.setState(StateDisconnected)
		if s.stopping(ctx) {
			return
		}

		next, ok := s.reconnect(ctx, &attempts)
		if !ok {
			return
		}
		conn = next
	}
}

// read consumes frames until the connection fails and returns how many
// arrived.
func (s *Subscriber) read(conn *websocket.Conn) int {
	received := 0
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.stopCh:
			default:
				s.logger.Warn("Stream read error", zap.Error(err))
			}
			return received
		}
		received++
		s.handleMessage(data)
	}
}

func (s *Subscriber) reconnect(ctx context.Context, attempts *int) (*websocket.Conn, bool) {
	for {
		*attempts++
		attempt := *attempts
		if attempt > s.maxReconnectAttempts {
			s.logger.Error("Max reconnect attempts reached",
				zap.Int("attempts", s.maxReconnectAttempts),
			)
			s.setState(StateFailed)
			return nil, false
		}

		s.setState(StateReconnecting)
		s.logger.Info("Scheduling reconnect",
			zap.Int("attempt", attempt),
			zap.Int("max", s.maxReconnectAttempts),
			zap.Duration("delay", s.reconnectDelay),
		)

		timer := time.NewTimer(s.reconnectDelay)
		select {
		case <-timer.C:
		case <-s.stopCh:
			timer.Stop()
			return nil, false
		case <-ctx.Done():
			timer.Stop()
			return nil, false
		}

		s.setState(StateConnecting)
		conn, err := s.dial(ctx)
		if err == nil {
			return conn, true
		}
		s.logger.Warn("Reconnect failed", zap.Int("attempt", attempt), zap.Error(err))
	}
}

func (s *Subscriber) handleMessage(data []byte) {
	var event Event
	if err := naming.JSON().Unmarshal(data, &event); err != nil {
		s.logger.Error("Failed to parse stream event",
			zap.Error(err),
			zap.String("data", util.Truncate(string(data), 200)),
		)
		return
	}

	s.callbacksMu.RLock()
	callbacks := make([]eventEntry, len(s.eventCallbacks))
	copy(callbacks, s.eventCallbacks)
	s.callbacksMu.RUnlock()

	for _, entry := range callbacks {
		entry.callback(&event)
	}
}

func (s *Subscriber) OnEvent(callback EventCallback) func() {
	s.callbacksMu.Lock()
	id := s.nextCallbackID
	s.nextCallbackID++
	s.eventCallbacks = append(s.eventCallbacks, eventEntry{id: id, callback: callback})
	s.callbacksMu.Unlock()

	return func() {
		s.callbacksMu.Lock()
		defer s.callbacksMu.Unlock()
		for i, entry := range s.eventCallbacks {
			if entry.id == id {
				s.eventCallbacks = append(s.eventCallbacks[:i], s.eventCallbacks[i+1:]...)
				break
			}
		}
	}
}

func (s *Subscriber) OnStateChange(callback StateCallback) func() {
	s.callbacksMu.Lock()
	id := s.nextCallbackID
	s.nextCallbackID++
	s.stateCallbacks = append(s.stateCallbacks, stateEntry{id: id, callback: callback})
	s.callbacksMu.Unlock()

	return func() {
		s.callbacksMu.Lock()
		defer s.callbacksMu.Unlock()
		for i, entry := range s.stateCallbacks {
			if entry.id == id {
				s.stateCallbacks = append(s.stateCallbacks[:i], s.stateCallbacks[i+1:]...)
				break
			}
		}
	}
}

func (s *Subscriber) setState(newState State) {
	s.stateMu.Lock()
	oldState := s.state
	s.state = newState
	s.stateMu.Unlock()

	if oldState == newState {
		return
	}

	s.logger.Info("Stream state changed",
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
	)

	s.callbacksMu.RLock()
	callbacks := make([]stateEntry, len(s.stateCallbacks))
	copy(callbacks, s.stateCallbacks)
	s.callbacksMu.RUnlock()

	for _, entry := range callbacks {
		entry.callback(newState)
	}
}

func (s *Subscriber) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Subscriber) IsConnected() bool {
	return s.State() == StateConnected
}

// setConn publishes conn to closeConn. After a shutdown it closes conn
// instead and reports false.
func (s *Subscriber) setConn(conn *websocket.Conn) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.closed {
		_ = conn.Close()
		return false
	}
	s.conn = conn
	return true
}

// shutdownConn closes the live connection and refuses any later one.
func (s *Subscriber) shutdownConn() {
	s.connMu.Lock()
	s.closed = true
	s.connMu.Unlock()
	s.closeConn()
}

func (s *Subscriber) closeConn() {
	s.connMu.Lock()
	conn := s.conn
	s.conn = nil
	s.connMu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			s.logger.Debug("Stream close error", zap.Error(err))
		}
	}
}

func (s *Subscriber) stopping(ctx context.Context) bool {
	select {
	case <-s.stopCh:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// Stop closes the connection and waits for the background goroutines.
func (s *Subscriber) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.shutdownConn()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Stream stopped cleanly")
	case <-time.After(constants.WebSocketConfig.StopTimeout):
		s.logger.Warn("Timeout waiting for stream listener to stop")
	}

	s.setState(StateDisconnected)
}

// Wait blocks until the read loop exits, either because Stop was called, the
// context ended, or reconnecting gave up.
func (s *Subscriber) Wait() {
	s.wg.Wait()
}

func (s *Subscriber) RemoveAllListeners() {
	s.callbacksMu.Lock()
	defer s.callbacksMu.Unlock()
	s.eventCallbacks = nil
	s.stateCallbacks = nil
}

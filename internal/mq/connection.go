package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNoChannel — соединение потеряно и ещё не восстановлено.
var ErrNoChannel = errors.New("no amqp channel available")

const (
	initialReconnectDelay = time.Second
	maxReconnectDelay     = 30 * time.Second
)

// Connection — AMQP соединение с одним каналом и автоматическим reconnect.
//
// Пока идёт переподключение, WithChannel возвращает ErrNoChannel:
// события теряются, запросы API не ждут брокер.
type Connection struct {
	url    string
	logger *slog.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel

	closed   bool
	closedCh chan struct{}
}

// NewConnection подключается к RabbitMQ. Первая попытка синхронная,
// её ошибка возвращается вызывающему.
func NewConnection(url string, logger *slog.Logger) (*Connection, error) {
	c := &Connection{
		url:      url,
		logger:   logger.With("component", "amqp"),
		closedCh: make(chan struct{}),
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	go c.watchConnection()

	return c, nil
}

func (c *Connection) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = ch
	c.mu.Unlock()

	c.logger.Info("connected to RabbitMQ")
	return nil
}

// closeEvent — что закрылось у текущей пары соединение/канал.
type closeEvent int

const (
	closeShutdown   closeEvent = iota // вызван Close
	closeChannel                      // брокер закрыл только канал
	closeConnection                   // закрыто соединение
)

// awaitClose ждёт первого события закрытия.
// Канал закрывается и вместе с соединением, поэтому его событие не
// означает, что соединение живо: это проверяет вызывающий.
func (c *Connection) awaitClose(connClosed, chanClosed <-chan *amqp.Error) closeEvent {
	var (
		err   *amqp.Error
		event closeEvent
	)
	select {
	case <-c.closedCh:
		return closeShutdown
	case err = <-chanClosed:
		event = closeChannel
	case err = <-connClosed:
		event = closeConnection
	}

	select {
	case <-c.closedCh:
		return closeShutdown
	default:
	}

	if err != nil {
		c.logger.Warn("amqp close notification", "channel_only", event == closeChannel, "error", err)
	}
	return event
}

// watchConnection следит за соединением и каналом.
// Закрытый брокером канал переоткрывается на живом соединении,
// закрытое соединение восстанавливается через reconnect.
func (c *Connection) watchConnection() {
	for {
		c.mu.RLock()
		conn, ch := c.conn, c.channel
		c.mu.RUnlock()

		connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
		chanClosed := ch.NotifyClose(make(chan *amqp.Error, 1))

		event := c.awaitClose(connClosed, chanClosed)
		if event == closeShutdown {
			return
		}

		c.mu.Lock()
		c.channel = nil
		c.mu.Unlock()

		if event == closeChannel && !conn.IsClosed() {
			err := c.reopenChannel(conn)
			if err == nil {
				c.logger.Info("channel reopened")
				continue
			}
			if errors.Is(err, ErrNoChannel) {
				return
			}
			c.logger.Warn("reopen channel failed", "error", err)
		}

		if !c.reconnect() {
			return
		}
	}
}

// reopenChannel открывает новый канал на conn.
// После Close возвращает ErrNoChannel и канал не сохраняет.
func (c *Connection) reopenChannel(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		ch.Close()
		return ErrNoChannel
	}
	c.channel = ch
	return nil
}

// reconnect повторяет connect с экспоненциальной задержкой до успеха
// или Close. Возвращает false, если соединение закрыто.
func (c *Connection) reconnect() bool {
	delay := initialReconnectDelay

	for {
		c.logger.Info("attempting to reconnect", "delay", delay)

		select {
		case <-c.closedCh:
			return false
		case <-time.After(delay):
		}

		if err := c.connect(); err != nil {
			c.logger.Warn("reconnect failed", "error", err)
			delay = min(delay*2, maxReconnectDelay)
			continue
		}

		c.logger.Info("reconnected to RabbitMQ")
		return true
	}
}

// Close закрывает канал и соединение.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.closedCh)

	var errs []error

	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}

	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.logger.Info("connection closed")
	return nil
}

// IsConnected проверяет, установлено ли соединение.
func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.conn != nil && !c.conn.IsClosed() && c.channel != nil
}

// WithChannel выполняет fn с текущим каналом.
func (c *Connection) WithChannel(ctx context.Context, fn func(ch *amqp.Channel) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.RLock()
	ch := c.channel
	c.mu.RUnlock()

	if ch == nil {
		return ErrNoChannel
	}

	return fn(ch)
}

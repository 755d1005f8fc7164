package events

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Client wraps the NATS connection and JetStream context.
type Client struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	logger *logrus.Logger
}

// NewClient connects to NATS with production-ready reconnect settings and
// ensures the STUDIO_EVENTS stream exists.
func NewClient(url string, logger *logrus.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("studio-admin-service"),
		nats.Timeout(10 * time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	client := &Client{conn: conn, js: js, logger: logger}
	if err := client.ensureStream(); err != nil {
		logger.WithError(err).Warn("Failed to ensure events stream (may already exist)")
	}

	logger.WithField("url", url).Info("Connected to NATS")
	return client, nil
}

// Close drains and closes the NATS connection.
func (c *Client) Close() {
	if c != nil && c.conn != nil {
		c.conn.Drain()
		c.conn.Close()
	}
}

// IsConnected returns true if connected to NATS
func (c *Client) IsConnected() bool {
	return c != nil && c.conn != nil && c.conn.IsConnected()
}

// ensureStream creates the STUDIO_EVENTS stream if it doesn't exist.
func (c *Client) ensureStream() error {
	streamCfg := nats.StreamConfig{
		Name:        "STUDIO_EVENTS",
		Description: "Admin auth and project lifecycle events",
		Subjects:    []string{"studio.>"},
		Storage:     nats.FileStorage,
		Retention:   nats.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		MaxMsgs:     100000,
		Discard:     nats.DiscardOld,
		Replicas:    1,
	}

	_, err := c.js.StreamInfo(streamCfg.Name)
	if err == nats.ErrStreamNotFound {
		if _, err = c.js.AddStream(&streamCfg); err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
		c.logger.Info("Created STUDIO_EVENTS stream")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check stream: %w", err)
	}
	return nil
}

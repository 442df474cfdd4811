package client

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/vitrealabs/vbox/internal/logging"
)

// reconnectLoop re-establishes the connection with exponential backoff.
// It runs until a connection is open again or the client is closed; only
// one loop runs at a time, guarded by the reconnecting flag.
func (c *Client) reconnectLoop() {
	// On exit, clear the flag; if the link dropped again while this loop was
	// winding down, take over the retry instead of leaving the client dead.
	defer func() {
		c.mu.Lock()
		c.reconnecting = false
		again := c.sockCfg.ShouldReconnect && !c.closed && c.conn == nil
		if again {
			c.reconnecting = true
		}
		c.mu.Unlock()
		if again {
			go c.reconnectLoop()
		}
	}()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.reconnectInitial
	bo.MaxInterval = c.reconnectMax
	bo.MaxElapsedTime = 0 // retry until closed

	for {
		c.mu.Lock()
		closed := c.closed
		connected := c.conn != nil
		c.mu.Unlock()
		if closed || connected {
			return
		}

		err := c.reconnectOnce()
		if err == nil {
			logging.Info("Reconnected to vBox", zap.String("remote_addr", c.connCfg.Addr()))
			return
		}
		if errors.Is(err, ErrClientClosed) || errors.Is(err, ErrConnectionExists) {
			return
		}

		wait := bo.NextBackOff()
		logging.Warn("Reconnect attempt failed",
			zap.Error(err),
			zap.Duration("retry_in", wait),
		)
		time.Sleep(wait)
	}
}

func (c *Client) reconnectOnce() error {
	// Connect already bounds the dial and handshake with RequestTimeout.
	return c.Connect(context.Background())
}

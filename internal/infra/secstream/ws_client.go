// Package secstream consumes the regulatory filing websocket feed. The feed
// pushes JSON arrays of filing headlines; everything else on the wire is
// ignored.
package secstream

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/insiderwatch/insiderwatch/internal/domain"
	"go.uber.org/zap"
)

type WSFactory struct {
	url         string
	apiKey      string
	dialer      *websocket.Dialer
	readTimeout time.Duration
	logger      *zap.Logger
}

func NewWSFactory(url, apiKey string, readTimeout time.Duration, logger *zap.Logger) *WSFactory {
	return &WSFactory{
		url:    url,
		apiKey: apiKey,
		dialer: &websocket.Dialer{
			Proxy: http.ProxyFromEnvironment,
		},
		readTimeout: readTimeout,
		logger:      logger,
	}
}

func (f *WSFactory) Connect(ctx context.Context) (domain.FilingStreamClient, error) {
	endpoint := f.url + "?apiKey=" + f.apiKey
	f.logger.Info("filing stream connect start", zap.String("url", f.url))
	conn, _, err := f.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		f.logger.Error("filing stream connect failed", zap.String("url", f.url), zap.Error(err))
		return nil, err
	}
	f.logger.Info("filing stream connect success", zap.String("url", f.url))
	return &WSClient{conn: conn, readTimeout: f.readTimeout, logger: f.logger}, nil
}

type WSClient struct {
	conn        *websocket.Conn
	readTimeout time.Duration
	logger      *zap.Logger
}

// Receive blocks for the next message. Heartbeats and undecodable frames
// yield an empty slice with a nil error.
func (c *WSClient) Receive(ctx context.Context) ([]domain.Filing, error) {
	if c.readTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	filings, err := decodeFilings(data)
	if err != nil {
		c.logger.Debug("filing stream message ignored", zap.Error(err))
		return nil, nil
	}
	return filings, nil
}

func (c *WSClient) Close() error {
	c.logger.Info("filing stream close")
	return c.conn.Close()
}

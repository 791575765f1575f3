package services

import (
	"context"

	"go.uber.org/zap"
)

// Shutdown stops the HTTP server, waits for background tasks within the
// context's deadline, and closes the sink clients.
func (m *Manager) Shutdown(ctx context.Context) {
	if m.httpServer != nil {
		m.log.Info("stopping http server")
		if err := m.httpServer.Shutdown(ctx); err != nil {
			m.log.Error("error shutting down http server", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.log.Info("background tasks finished")
	case <-ctx.Done():
		m.log.Warn("timeout waiting for background tasks")
	}

	if m.rpc != nil {
		if err := m.rpc.Close(); err != nil {
			m.log.Error("error closing rpc connections", zap.Error(err))
		}
	}
	if m.redisClient != nil {
		if err := m.redisClient.Close(); err != nil {
			m.log.Error("error closing redis client", zap.Error(err))
		}
	}
	if m.natsConn != nil {
		m.log.Info("closing NATS connection")
		m.natsConn.Close()
	}
}

// Graceful shutdown для сервера и CLI утилит.
//
// При SIGINT (Ctrl+C) или SIGTERM контекст отменяется, HTTP сервер
// дожидается активных запросов, лог-файл закрывается.
//
// Использование:
//
//	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
//	defer shutdown()
package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// SetupGracefulShutdown устанавливает обработчик сигналов.
//
// При получении сигнала логирует его и вызывает cancel.
// Возвращает функцию очистки для defer: снимает обработчик и закрывает лог.
func SetupGracefulShutdown(cancel context.CancelFunc) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			Info("Received signal, shutting down gracefully", "signal", sig.String())
			cancel()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
		Close()
	}
}

// SetupGracefulShutdownWithContext создаёт контекст и настраивает graceful shutdown.
func SetupGracefulShutdownWithContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	shutdown := SetupGracefulShutdown(cancel)
	return ctx, func() {
		cancel()
		shutdown()
	}
}

// Shutdowner — всё, что умеет корректно останавливаться (например, *http.Server).
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ShutdownWithTimeout останавливает s, давая ему не больше timeout.
func ShutdownWithTimeout(s Shutdowner, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(ctx)
}

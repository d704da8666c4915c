// Package server owns the HTTP listener lifecycle: startup, graceful stop and
// OS signal handling shared by the daemon commands.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

type Config struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port string `env:"PORT" envDefault:"7070"`
}

type Server interface {
	Start() error
	Stop() error
}

// BaseServer carries what every concrete server needs; embed it.
type BaseServer struct {
	Ctx     context.Context
	Cancel  context.CancelFunc
	Name    string
	Address string
	Config  Config
	Logger  *slog.Logger
}

// StopSignalHandler blocks until the context ends or an interrupt arrives,
// then stops every server and cancels the shared context.
func StopSignalHandler(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, svcName string, servers ...Server) error {
	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGABRT, syscall.SIGTERM)

	select {
	case sig := <-c:
		defer cancel()

		for _, server := range servers {
			if err := server.Stop(); err != nil {
				return err
			}
		}

		logger.Info(fmt.Sprintf("%s service shutdown by signal: %s", svcName, sig))

		return nil
	case <-ctx.Done():
		return nil
	}
}

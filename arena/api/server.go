package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/rs/zerolog/log"
)

const shutdownGrace = 10 * time.Second

// Serve runs the status RPC until ctx is cancelled. When ready is non-nil
// the bound port is published on it (":0" allowed).
func Serve(ctx context.Context, addr string, views Views, useFiber bool, ready chan<- int) error {
	lc := &net.ListenConfig{}

	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	if ready != nil {
		if ta, ok := ln.Addr().(*net.TCPAddr); ok {
			ready <- ta.Port
		} else {
			ready <- 0
		}

		close(ready)
	}

	handler := &RPCServer{Views: views}

	if useFiber {
		return serveFiber(ctx, ln, handler)
	}

	return serveStdHTTP(ctx, ln, handler)
}

func serveStdHTTP(ctx context.Context, ln net.Listener, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/rpc", handler)

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() { serveErr <- server.Serve(ln) }()

	select {
	case <-ctx.Done():
		log.Info().Str("reason", ctx.Err().Error()).Msg("Shutting down status RPC")

		//nolint:contextcheck // shutdown, the context above is already expired
		if err := server.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown status RPC gracefully")

			_ = server.Close()
		}

		<-serveErr

		return nil

	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	}
}

func serveFiber(ctx context.Context, ln net.Listener, handler http.Handler) error {
	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	app.All("/rpc", adaptor.HTTPHandler(handler))

	serveErr := make(chan error, 1)

	go func() { serveErr <- app.Listener(ln) }()

	select {
	case <-ctx.Done():
		shutdownCh := make(chan struct{})

		go func() {
			_ = app.Shutdown()

			close(shutdownCh)
		}()

		select {
		case <-shutdownCh:
		case <-time.After(shutdownGrace):
			_ = ln.Close()
		}

		<-serveErr

		return nil

	case err := <-serveErr:
		if err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}

		return nil
	}
}

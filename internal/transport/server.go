package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/sakshamg567/catchping/internal/room"
	"github.com/sakshamg567/catchping/logger"
)

const snapshotTimeout = 2 * time.Second

// Server accepts clients over TCP and WebSocket and hands each one to the
// room as a Session.
type Server struct {
	room        *room.Room
	nameTimeout time.Duration
	app         *fiber.App
	conns       sync.WaitGroup
}

func New(r *room.Room, nameTimeout time.Duration) *Server {
	s := &Server{room: r, nameTimeout: nameTimeout}
	s.app = s.newApp()
	return s
}

// App exposes the HTTP side, mostly for tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(cors.New())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wc := newWSConn(c)
		name, err := wc.readName(s.nameTimeout)
		if err != nil {
			logger.Info("ws %s handshake failed: %v", wc.RemoteAddr(), err)
			_ = wc.Close()
			return
		}
		s.serve(wc, name)
	}))

	app.Get("/api/room", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), snapshotTimeout)
		defer cancel()
		snap, err := s.room.Snapshot(ctx)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(snap)
	})

	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

// serve registers the session and blocks until its write pump is done.
func (s *Server) serve(conn room.Conn, name string) {
	sess := s.room.NewSession(conn, name)
	if !s.room.Join(sess) {
		logger.Info("room stopped, refusing %s", conn.RemoteAddr())
		_ = conn.Close()
		return
	}
	go sess.ReadPump(s.room)
	sess.WritePump()
}

// ServeTCP accepts line clients on ln until ctx is cancelled.
func (s *Server) ServeTCP(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	logger.Info("tcp listening on %s", ln.Addr())
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				logger.Warn("tcp accept: %v", err)
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return fmt.Errorf("tcp accept: %w", err)
		}
		if tc, ok := c.(*net.TCPConn); ok {
			_ = tc.SetKeepAlive(true)
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleTCP(c)
		}()
	}
}

func (s *Server) handleTCP(c net.Conn) {
	lc := newLineConn(c)
	name, err := lc.readName(s.nameTimeout)
	if err != nil {
		logger.Info("tcp %s handshake failed: %v", lc.RemoteAddr(), err)
		_ = lc.Close()
		return
	}
	s.serve(lc, name)
}

// ServeHTTP runs the fiber app on ln until Shutdown.
func (s *Server) ServeHTTP(ln net.Listener) error {
	logger.Info("http listening on %s", ln.Addr())
	return s.app.Listener(ln)
}

// Shutdown stops the HTTP side and waits for TCP handlers to return. The
// room must already be stopping, otherwise TCP sessions keep running.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

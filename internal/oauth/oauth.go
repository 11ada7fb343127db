// Package oauth receives the Google sign-in redirect on a loopback address.
//
// The backend finishes the OAuth exchange and redirects the browser to the
// client with token, user and user_id query parameters. The Listener serves
// that redirect and hands the parameters to whoever is waiting.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownGrace = 2 * time.Second

// Callback is the query string of a successful sign-in redirect. UserID is
// left unparsed.
type Callback struct {
	Token    string
	Username string
	UserID   string
}

func (c Callback) complete() bool {
	if c.Token == "" || c.Username == "" {
		return false
	}
	_, err := strconv.Atoi(c.UserID)
	return err == nil
}

// Listener serves one sign-in redirect per Await call.
type Listener struct {
	addr   string
	logger *zap.Logger
}

// NewListener returns a listener bound to addr when Await is called.
func NewListener(addr string, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{addr: addr, logger: logger}
}

// Addr is the configured callback address.
func (l *Listener) Addr() string { return l.addr }

// Await serves until the first complete callback arrives or ctx is done.
func (l *Listener) Await(ctx context.Context) (Callback, error) {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return Callback{}, fmt.Errorf("listen on %s: %w", l.addr, err)
	}
	return l.serve(ctx, ln)
}

func (l *Listener) serve(ctx context.Context, ln net.Listener) (Callback, error) {
	got := make(chan Callback, 1)
	srv := &http.Server{
		Handler:           l.engine(got),
		ReadHeaderTimeout: 5 * time.Second,
	}

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			l.logger.Warn("oauth listener shutdown", zap.Error(err))
		}
	}()

	l.logger.Info("waiting for sign-in redirect", zap.String("addr", ln.Addr().String()))

	select {
	case cb := <-got:
		return cb, nil
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			err = errors.New("server closed")
		}
		return Callback{}, fmt.Errorf("oauth listener: %w", err)
	case <-ctx.Done():
		return Callback{}, ctx.Err()
	}
}

func (l *Listener) engine(got chan<- Callback) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), l.requestLog())

	r.GET("/", func(c *gin.Context) {
		cb := Callback{
			Token:    c.Query("token"),
			Username: c.Query("user"),
			UserID:   c.Query("user_id"),
		}
		if cb == (Callback{}) {
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(waitingPage))
			return
		}
		if !cb.complete() {
			c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(incompletePage))
			return
		}

		select {
		case got <- cb:
		default:
			// Already delivered; the waiter only takes the first.
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(donePage))
	})
	return r
}

func (l *Listener) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		// The query carries the token; log the path only.
		l.logger.Debug("oauth request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

const (
	waitingPage    = `<!doctype html><title>Compass</title><p>Waiting for Google sign-in. Return to your terminal when done.</p>`
	incompletePage = `<!doctype html><title>Compass</title><p>Sign-in did not complete. Return to your terminal and try again.</p>`
	donePage       = `<!doctype html><title>Compass</title><p>Signed in. You can close this tab and return to your terminal.</p>`
)

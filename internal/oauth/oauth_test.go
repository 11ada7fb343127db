package oauth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCode  int
		delivered bool
	}{
		{"bare page", "", http.StatusOK, false},
		{"complete", "?token=tok&user=ada&user_id=7", http.StatusOK, true},
		{"missing user_id", "?token=tok&user=ada", http.StatusBadRequest, false},
		{"missing token", "?user=ada&user_id=7", http.StatusBadRequest, false},
		{"non-numeric user_id", "?token=tok&user=ada&user_id=ada", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(chan Callback, 1)
			e := NewListener("127.0.0.1:0", nil).engine(got)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			select {
			case cb := <-got:
				require.True(t, tt.delivered, "unexpected delivery %+v", cb)
				assert.Equal(t, Callback{Token: "tok", Username: "ada", UserID: "7"}, cb)
			default:
				assert.False(t, tt.delivered, "expected a delivered callback")
			}
		})
	}
}

func TestEngineDeliversOnce(t *testing.T) {
	got := make(chan Callback, 1)
	e := NewListener("127.0.0.1:0", nil).engine(got)

	for _, tok := range []string{"first", "second"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?token="+tok+"&user=ada&user_id=7", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, "first", (<-got).Token)
}

func TestServeReturnsCallback(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	l := NewListener(ln.Addr().String(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type res struct {
		cb  Callback
		err error
	}
	done := make(chan res, 1)
	go func() {
		cb, err := l.serve(ctx, ln)
		done <- res{cb, err}
	}()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/?token=tok&user=ada&user_id=7")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, "ada", r.cb.Username)
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewListener(ln.Addr().String(), nil).serve(ctx, ln)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestAwaitListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, err = NewListener(ln.Addr().String(), nil).Await(context.Background())
	assert.Error(t, err)
}

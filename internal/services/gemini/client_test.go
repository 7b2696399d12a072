package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pazaryeri/internal/assistant"
	"pazaryeri/internal/config"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "gemini-2.0-flash", "", time.Second)
	assert.True(t, eris.Is(err, config.ErrMissingCredential))
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"  12000-15000\n"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), "g-key", "gemini-2.0-flash", srv.URL, 5*time.Second)
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), assistant.Prompt{System: "sys", User: "fiyat?", Temperature: 0.7, MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "12000-15000", out)
}

func TestComplete_StatusIsExposed(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusTooManyRequests} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, code)
		}))

		c, err := NewClient(context.Background(), "g-key", "gemini-2.0-flash", srv.URL, 5*time.Second)
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), assistant.Prompt{User: "fiyat?"})
		srv.Close()

		var se assistant.StatusError
		require.True(t, errors.As(err, &se), "%v", err)
		assert.Equal(t, code, se.HTTPStatus())
	}
}

package email

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nfrund/propdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender("office@propdesk.test", slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, sender.Send("ana@example.com", "Welcome", "<p>Hola</p>"))
	out := buf.String()
	assert.Contains(t, out, "to=ana@example.com")
	assert.Contains(t, out, "subject=Welcome")
	assert.Contains(t, out, "from=office@propdesk.test")
}

func TestResendSender(t *testing.T) {
	t.Run("posts payload with api key", func(t *testing.T) {
		var got resendPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"email-1"}`))
		}))
		defer srv.Close()

		sender := NewResendSender("re_test", "")
		sender.endpoint = srv.URL

		require.NoError(t, sender.Send("ana@example.com", "Reset", "<a>link</a>"))
		assert.Equal(t, defaultSender, got.From)
		assert.Equal(t, "ana@example.com", got.To)
		assert.Equal(t, "Reset", got.Subject)
		assert.Equal(t, "<a>link</a>", got.HTML)
	})

	t.Run("api error message is surfaced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"name":"validation_error","message":"Invalid to field"}`))
		}))
		defer srv.Close()

		sender := NewResendSender("re_test", "office@propdesk.test")
		sender.endpoint = srv.URL

		err := sender.Send("bad", "Reset", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid to field")
	})
}

func TestNewEmailService(t *testing.T) {
	t.Run("log provider", func(t *testing.T) {
		s, err := NewEmailService(&config.Config{EmailProvider: "log"})
		require.NoError(t, err)
		assert.IsType(t, &LogSender{}, s)
	})

	t.Run("resend needs api key", func(t *testing.T) {
		_, err := NewEmailService(&config.Config{EmailProvider: "resend"})
		assert.Error(t, err)

		s, err := NewEmailService(&config.Config{EmailProvider: "resend", EmailAPIKey: "re_x"})
		require.NoError(t, err)
		assert.IsType(t, &ResendSender{}, s)

		s, err = NewEmailService(&config.Config{EmailProvider: " Resend ", EmailAPIKey: "re_x"})
		require.NoError(t, err)
		assert.IsType(t, &ResendSender{}, s)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewEmailService(&config.Config{EmailProvider: "carrier-pigeon"})
		assert.Error(t, err)
	})
}

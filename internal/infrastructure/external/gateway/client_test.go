package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultClientConfig("test-token")
	cfg.BaseURL = srv.URL
	cfg.RetryAttempts = 0
	return NewClient(cfg)
}

func TestSend_ReturnsMessageID(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/api/guilds.sendMessage", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":321}}`))
	})

	id, err := client.Send(context.Background(), SendParams{
		GuildID:     7,
		ChannelName: "alerts",
		Content:     "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(321), id)
	assert.Equal(t, "Bot test-token", gotAuth)
	assert.Equal(t, "alerts", gotBody["channel"])
	assert.NotContains(t, gotBody, "reply_to")
}

func TestSendToChannel_FailureMapsToSendError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":{"code":500,"message":"gateway down"}}`))
	})

	_, err := client.SendToChannel(context.Background(), 7, "general", "hi")
	assert.ErrorIs(t, err, shared.ErrGatewaySendFailed)
	assert.ErrorIs(t, err, shared.ErrExternalService)
}

func TestResolveChannel_NotFoundMapsToDomainError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":{"code":404,"message":"channel not found"}}`))
	})

	_, err := client.ResolveChannel(context.Background(), 7, "nope")
	assert.ErrorIs(t, err, shared.ErrChannelNotFound)
}

func TestVoiceMembers_NotFoundMapsToDomainError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":{"code":404,"message":"no such channel"}}`))
	})

	_, err := client.VoiceMembers(context.Background(), 7, "nope")
	assert.ErrorIs(t, err, shared.ErrChannelNotFound)
}

func TestHasRole(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":{"member_id":5,"name":"ann","roles":["Students","Helpers"]}}`))
	})

	has, err := client.HasRole(context.Background(), 7, 5, "Students")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = client.HasRole(context.Background(), 7, 5, "Pyrates")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCallAPI_RetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			_, _ = w.Write([]byte(`{"ok":false,"error":{"code":500,"message":"hiccup"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultClientConfig("test-token")
	cfg.BaseURL = srv.URL
	cfg.RetryAttempts = 3
	cfg.RetryDelay = 0
	client := NewClient(cfg)

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, 3, attempts)
}

func TestCallAPI_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		_, _ = w.Write([]byte(`{"ok":false,"error":{"code":400,"message":"bad request"}}`))
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultClientConfig("test-token")
	cfg.BaseURL = srv.URL
	cfg.RetryAttempts = 3
	cfg.RetryDelay = 0
	client := NewClient(cfg)

	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Code)
}

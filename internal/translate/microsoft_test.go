package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedCall struct {
	source, target string
	ok             bool
}

type fakeRecorder struct {
	calls []recordedCall
}

func (f *fakeRecorder) RecordTranslation(ctx context.Context, source, target string, ok bool, duration time.Duration) {
	f.calls = append(f.calls, recordedCall{source: source, target: target, ok: ok})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, rec Recorder) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, _ := zap.NewDevelopment()
	return NewClient(Config{
		Endpoint: server.URL + "/translate",
		APIKey:   "secret-key",
		Region:   "westeurope",
		Timeout:  5 * time.Second,
	}, logger.Sugar(), rec)
}

func TestTranslate_Success(t *testing.T) {
	rec := &fakeRecorder{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/translate", r.URL.Path)
		assert.Equal(t, "3.0", r.URL.Query().Get("api-version"))
		assert.Equal(t, "tr", r.URL.Query().Get("from"))
		assert.Equal(t, "en", r.URL.Query().Get("to"))
		assert.Equal(t, "westeurope", r.URL.Query().Get("region"))
		assert.Equal(t, "secret-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "westeurope", r.Header.Get("Ocp-Apim-Subscription-Region"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body []map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []map[string]string{{"text": "Merhaba dünya"}}, body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"translations":[{"text":"Hello world","to":"en"}]}]`))
	}, rec)

	out, err := client.Translate(context.Background(), "Merhaba dünya", domain.LocaleTR, domain.LocaleEN)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
	assert.True(t, client.Health().Healthy)
	assert.Equal(t, []recordedCall{{source: "tr", target: "en", ok: true}}, rec.calls)
}

func TestTranslate_UpstreamError(t *testing.T) {
	rec := &fakeRecorder{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":401000,"message":"invalid key"}}`))
	}, rec)

	_, err := client.Translate(context.Background(), "Merhaba", domain.LocaleTR, domain.LocaleEN)
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)
	assert.Contains(t, upstream.Body, "invalid key")
	assert.False(t, client.Health().Healthy)
	require.Len(t, rec.calls, 1)
	assert.False(t, rec.calls[0].ok)
}

func TestTranslate_EmptyAndMalformed(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want error
	}{
		{name: "no results", body: `[]`, want: ErrEmptyResult},
		{name: "no translations", body: `[{"translations":[]}]`, want: ErrEmptyResult},
		{name: "blank text", body: `[{"translations":[{"text":""}]}]`, want: ErrEmptyResult},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}, nil)

			_, err := client.Translate(context.Background(), "x", domain.LocaleEN, domain.LocaleTR)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}, nil)
	_, err := client.Translate(context.Background(), "x", domain.LocaleEN, domain.LocaleTR)
	assert.ErrorContains(t, err, "decode")
}

func TestTranslate_NotConfigured(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	client := NewClient(Config{}, logger.Sugar(), nil)

	_, err := client.Translate(context.Background(), "x", domain.LocaleEN, domain.LocaleTR)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, client.Configured())
}

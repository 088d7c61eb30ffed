package psychonautwiki

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const caffeineResponse = `{
  "data": {
    "substances": [{
      "name": "Caffeine",
      "url": "https://psychonautwiki.org/wiki/Caffeine",
      "class": {"chemical": ["Xanthines"], "psychoactive": ["Stimulants"]},
      "roas": [{
        "name": "oral",
        "dose": {"units": "mg", "threshold": 10, "heavy": 500, "light": {"min": 10, "max": 50}, "common": {"min": 50, "max": 150}, "strong": {"min": 150, "max": 500}},
        "duration": {"onset": {"min": 5, "max": 10, "units": "minutes"}, "total": null}
      }],
      "addictionPotential": "moderately addictive",
      "tolerance": {"full": "within several days", "half": null, "zero": "7 days"},
      "images": [{"image": "https://psychonautwiki.org/caffeine.svg"}, {"image": "https://psychonautwiki.org/caffeine.png"}]
    }]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(&Config{BaseURL: server.URL, Timeout: 5 * time.Second}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_SearchSubstances(t *testing.T) {
	t.Parallel()

	var got graphQLRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, caffeineResponse)
	})

	substances, err := client.SearchSubstances(context.Background(), "  caffeine ")
	require.NoError(t, err)

	assert.Equal(t, "caffeine", got.Variables["query"])
	assert.Contains(t, got.Query, "substances(query: $query)")

	require.Len(t, substances, 1)
	s := substances[0]
	assert.Equal(t, "Caffeine", s.Name)
	require.NotNil(t, s.Class)
	assert.Equal(t, []string{"Stimulants"}, s.Class.Psychoactive)
	require.Len(t, s.Roas, 1)
	require.NotNil(t, s.Roas[0].Dose)
	assert.Equal(t, 150.0, *s.Roas[0].Dose.Common.Max)
	assert.Nil(t, s.Roas[0].Duration.Total)
	assert.Nil(t, s.Tolerance.Half)
}

func TestClient_SearchSubstancesEmpty(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"substances":[]}}`)
	})

	substances, err := client.SearchSubstances(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, substances)
}

func TestClient_SearchSubstancesFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "bad status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = io.WriteString(w, "upstream down")
			},
			wantErr: "status=502",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "{not json")
			},
			wantErr: "unmarshal failed",
		},
		{
			name: "graphql errors",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"errors":[{"message":"query too complex"}]}`)
			},
			wantErr: "query too complex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, tt.handler)
			_, err := client.SearchSubstances(context.Background(), "caffeine")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

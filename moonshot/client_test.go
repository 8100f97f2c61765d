package moonshot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeCompletions(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ScoreLabels(t *testing.T) {
	srv := fakeCompletions(t, "```json\n{\"dni\": -1, \"Correo\": 3.5, \"ninguno\": 0.2}\n```")
	c := NewClient("test-key", srv.URL, "test-model")

	logits, err := c.ScoreLabels(context.Background(), "", "mi correo es ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"dni": -1, "correo": 3.5, "ninguno": 0.2}, logits)
}

func TestClient_ScoreLabels_BadReply(t *testing.T) {
	srv := fakeCompletions(t, "no sé")
	c := NewClient("test-key", srv.URL, "test-model")

	_, err := c.ScoreLabels(context.Background(), "prompt", "hola")
	assert.Error(t, err)
}

func TestParseLogits(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    map[string]float64
		wantErr bool
	}{
		{name: "bare object", reply: `{"nombre": 2}`, want: map[string]float64{"nombre": 2}},
		{name: "prose around", reply: "Aquí está: {\"tarjeta\": 1.5} gracias", want: map[string]float64{"tarjeta": 1.5}},
		{name: "no object", reply: "ninguno", wantErr: true},
		{name: "empty object", reply: "{}", wantErr: true},
		{name: "not numbers", reply: `{"dni": "alto"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogits(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

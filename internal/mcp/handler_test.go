package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devricklin/privacy-guard/internal/biz/domain"
)

func newTestHandler(t *testing.T, h http.HandlerFunc) *Handler {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewHandler(NewClient(server.URL))
}

func TestHandler_Classify(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/classify", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "escríbeme a ana@x.com", body["text"])

		json.NewEncoder(w).Encode(map[string]any{
			"expone":  true,
			"tipo":    "correo",
			"matches": []string{"a**@x.com"},
		})
	})

	out, err := handler.Classify(context.Background(), ClassifyInput{Text: "escríbeme a ana@x.com"})
	require.NoError(t, err)
	assert.True(t, out.Exposes)
	assert.Equal(t, "correo", out.Category)
	assert.Equal(t, []string{"a**@x.com"}, out.Matches)
}

func TestHandler_Classify_EmptyText(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("admin API must not be called")
	})

	_, err := handler.Classify(context.Background(), ClassifyInput{Text: "   "})
	assert.EqualError(t, err, "text is required")
}

func TestHandler_Classify_APIError(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"analyzer down"}`))
	})

	_, err := handler.Classify(context.Background(), ClassifyInput{Text: "hola"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "analyzer down", apiErr.Message)
}

func TestHandler_ListHistory(t *testing.T) {
	ts := time.Date(2026, 4, 20, 15, 0, 0, 0, time.UTC)
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/history", r.URL.Path)
		json.NewEncoder(w).Encode([]domain.HistoryEntry{
			{Action: domain.ActionOmit, Category: domain.CategoryCard, URL: "https://steamcommunity.com", Timestamp: ts},
			{Action: domain.ActionAccept, Category: domain.CategoryEmail, URL: "https://roblox.com", Timestamp: ts.Add(-time.Minute)},
			{Action: domain.ActionAccept, Category: domain.CategoryName, URL: "https://roblox.com", Timestamp: ts.Add(-time.Hour)},
		})
	})

	out, err := handler.ListHistory(context.Background(), ListHistoryInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
	require.Len(t, out.Entries, 3)
	assert.Equal(t, "omitir", out.Entries[0].Action)
	assert.Equal(t, "tarjeta", out.Entries[0].Category)
	assert.Equal(t, "2026-04-20T15:00:00Z", out.Entries[0].Timestamp)

	out, err = handler.ListHistory(context.Background(), ListHistoryInput{Action: "ACEPTAR", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "correo", out.Entries[0].Category)

	_, err = handler.ListHistory(context.Background(), ListHistoryInput{Action: "borrar"})
	assert.Error(t, err)
}

func TestHandler_ListHistory_Empty(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	out, err := handler.ListHistory(context.Background(), ListHistoryInput{})
	require.NoError(t, err)
	assert.NotNil(t, out.Entries)
	assert.Zero(t, out.Total)
}

func TestHandler_HistoryToday(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/history/today", r.URL.Path)
		w.Write([]byte(`{"count":4}`))
	})

	out, err := handler.HistoryToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, out.Count)
}

func TestHandler_GetSettings(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.DefaultSettings())
	})

	out, err := handler.GetSettings(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Active)
	assert.True(t, out.Sites["steam"])
	assert.True(t, out.Categories["dni"])
	assert.Empty(t, out.Omitted)
}

func TestHandler_SetSettings(t *testing.T) {
	var got domain.SettingsPatch
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/settings", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(domain.DefaultSettings().Merge(got))
	})

	off := false
	out, err := handler.SetSettings(context.Background(), SetSettingsInput{
		Active:     &off,
		Sites:      map[string]bool{"Discord": false},
		Categories: map[string]bool{"tarjeta": false},
	})
	require.NoError(t, err)

	require.NotNil(t, got.Active)
	assert.False(t, *got.Active)
	assert.Equal(t, map[domain.SiteKey]bool{domain.SiteDiscord: false}, got.Sites)
	assert.Nil(t, got.Omitted)

	assert.False(t, out.Active)
	assert.False(t, out.Sites["discord"])
	assert.True(t, out.Sites["steam"])
	assert.False(t, out.Categories["tarjeta"])
}

func TestHandler_SetSettings_Invalid(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("admin API must not be called")
	})

	_, err := handler.SetSettings(context.Background(), SetSettingsInput{})
	assert.EqualError(t, err, "nothing to update")

	_, err = handler.SetSettings(context.Background(), SetSettingsInput{Categories: map[string]bool{"pasaporte": true}})
	assert.Error(t, err)

	_, err = handler.SetSettings(context.Background(), SetSettingsInput{Omitted: []string{"ninguno"}})
	assert.Error(t, err)
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	_, err := client.Health(context.Background())
	assert.Error(t, err)
}

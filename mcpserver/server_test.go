package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	guardmcp "github.com/devricklin/privacy-guard/internal/mcp"
)

func connect(t *testing.T, admin http.HandlerFunc) *mcp.ClientSession {
	t.Helper()
	api := httptest.NewServer(admin)
	t.Cleanup(api.Close)

	s := NewServer(guardmcp.NewHandler(guardmcp.NewClient(api.URL)), "test")

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := s.GetServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestServer_ListTools(t *testing.T) {
	cs := connect(t, func(w http.ResponseWriter, r *http.Request) {})

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		if tool.Name == ToolClassifyText {
			assert.NotContains(t, tool.Description, "phone", "the classifier has no phone category")
		}
	}
	assert.ElementsMatch(t, []string{
		ToolClassifyText, ToolListHistory, ToolHistoryToday, ToolGetSettings, ToolSetSettings,
	}, names)
}

func TestServer_ClassifyText(t *testing.T) {
	cs := connect(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"expone": true, "tipo": "dni", "matches": []string{"******78"}})
	})

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolClassifyText,
		Arguments: map[string]any{"text": "mi dni es 12345678"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out guardmcp.ClassifyOutput
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &out))
	assert.True(t, out.Exposes)
	assert.Equal(t, "dni", out.Category)
	assert.Equal(t, []string{"******78"}, out.Matches)
}

func TestServer_HistoryToday(t *testing.T) {
	cs := connect(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":2}`))
	})

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolHistoryToday,
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.JSONEq(t, `{"count":2}`, textOf(t, res))
}

func TestServer_ToolError(t *testing.T) {
	cs := connect(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"database is locked"}`))
	})

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolGetSettings,
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "database is locked")
}

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	guardmcp "github.com/devricklin/privacy-guard/internal/mcp"
)

// Tool names
const (
	ToolClassifyText = "guard_classify_text"
	ToolListHistory  = "guard_list_history"
	ToolHistoryToday = "guard_history_today"
	ToolGetSettings  = "guard_get_settings"
	ToolSetSettings  = "guard_set_settings"
)

// GuardMCPServer exposes the privacy guard as MCP tools
type GuardMCPServer struct {
	server  *mcp.Server
	handler *guardmcp.Handler
}

// NoInput is the input of tools without arguments
type NoInput struct{}

// NewServer creates a new MCP server backed by handler
func NewServer(handler *guardmcp.Handler, version string) *GuardMCPServer {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "privacy-guard",
		Version: version,
	}, nil)

	s := &GuardMCPServer{server: server, handler: handler}
	s.registerTools()
	return s
}

func (s *GuardMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolClassifyText,
		Description: "Check a text for personal data (email, DNI, card number, full name). Returns the category and the masked matches.",
	}, s.classifyText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolListHistory,
		Description: "List the user's recorded decisions on privacy notifications, newest first.",
	}, s.listHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolHistoryToday,
		Description: "Count the decisions recorded today.",
	}, s.historyToday)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolGetSettings,
		Description: "Get the guard settings: the master switch, per-site and per-category toggles and omitted categories.",
	}, s.getSettings)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolSetSettings,
		Description: "Update the guard settings. Only the given fields change. Use when the user says 'stop warning me about cards', 'turn off discord', etc.",
	}, s.setSettings)
}

func (s *GuardMCPServer) classifyText(ctx context.Context, req *mcp.CallToolRequest, input guardmcp.ClassifyInput) (*mcp.CallToolResult, guardmcp.ClassifyOutput, error) {
	out, err := s.handler.Classify(ctx, input)
	return nil, out, err
}

func (s *GuardMCPServer) listHistory(ctx context.Context, req *mcp.CallToolRequest, input guardmcp.ListHistoryInput) (*mcp.CallToolResult, guardmcp.ListHistoryOutput, error) {
	out, err := s.handler.ListHistory(ctx, input)
	return nil, out, err
}

func (s *GuardMCPServer) historyToday(ctx context.Context, req *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, guardmcp.HistoryTodayOutput, error) {
	out, err := s.handler.HistoryToday(ctx)
	return nil, out, err
}

func (s *GuardMCPServer) getSettings(ctx context.Context, req *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, guardmcp.SettingsOutput, error) {
	out, err := s.handler.GetSettings(ctx)
	return nil, out, err
}

func (s *GuardMCPServer) setSettings(ctx context.Context, req *mcp.CallToolRequest, input guardmcp.SetSettingsInput) (*mcp.CallToolResult, guardmcp.SettingsOutput, error) {
	out, err := s.handler.SetSettings(ctx, input)
	return nil, out, err
}

// Run starts the MCP server with stdio transport
func (s *GuardMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetServer returns the underlying MCP server
func (s *GuardMCPServer) GetServer() *mcp.Server {
	return s.server
}

package mcp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/paularlott/mcp"

	"github.com/ducttapeprodigy/boilerplate/internal/fixture"
	"github.com/ducttapeprodigy/boilerplate/internal/log"
	"github.com/ducttapeprodigy/boilerplate/internal/metrics"
	"github.com/ducttapeprodigy/boilerplate/internal/storage"
)

const (
	serverName    = "boilerplate"
	serverVersion = "1.0.0"
)

// Server exposes fixture generation and user listing as MCP tools
type Server struct {
	mcpServer   *mcp.Server
	storage     storage.Storage
	metrics     *metrics.Metrics
	bearerToken string
	maxRecords  int
}

// NewServer creates the MCP server. An empty bearerToken disables
// authentication; maxRecords caps generated forests (0 for no cap).
func NewServer(store storage.Storage, m *metrics.Metrics, bearerToken string, maxRecords int) *Server {
	s := &Server{
		mcpServer:   mcp.NewServer(serverName, serverVersion),
		storage:     store,
		metrics:     m,
		bearerToken: bearerToken,
		maxRecords:  maxRecords,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.RegisterTool(
		mcp.NewTool("fixture_generate", "Generate a synthetic datacenter hierarchy and return its summary and tree",
			mcp.String("roots", "Number of root datacenters (default 3)"),
			mcp.String("depth", "Maximum tree depth in levels, roots count as 1 (default 4)"),
			mcp.String("children", "Maximum children per node (default 5)"),
			mcp.String("seed", "Integer seed for reproducible output"),
		),
		s.handleFixtureGenerate,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("fixture_summary", "Generate a synthetic datacenter hierarchy and return only record counts",
			mcp.String("roots", "Number of root datacenters (default 3)"),
			mcp.String("depth", "Maximum tree depth in levels, roots count as 1 (default 4)"),
			mcp.String("children", "Maximum children per node (default 5)"),
			mcp.String("seed", "Integer seed for reproducible output"),
		),
		s.handleFixtureSummary,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("user_list", "List registered users"),
		s.handleUserList,
	)
}

// HandleRequest handles MCP HTTP requests with optional bearer token authentication
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			log.Warn("MCP request invalid Authorization format", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.bearerToken)) != 1 {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

func (s *Server) handleFixtureGenerate(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	text, err := s.renderFixture(paramLookup(req), true)
	if err != nil {
		return nil, toolError(err)
	}
	return mcp.NewToolResponseText(text), nil
}

func (s *Server) handleFixtureSummary(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	text, err := s.renderFixture(paramLookup(req), false)
	if err != nil {
		return nil, toolError(err)
	}
	return mcp.NewToolResponseText(text), nil
}

func (s *Server) handleUserList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	text, err := s.renderUsers()
	if err != nil {
		log.Error("MCP user list failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to list users: " + err.Error())
	}
	return mcp.NewToolResponseText(text), nil
}

// renderFixture generates a forest and renders its summary, plus the tree
// when withTree is set
func (s *Server) renderFixture(lookup func(string) string, withTree bool) (string, error) {
	params, err := fixture.ParseParams(lookup, fixture.DefaultParams())
	if err != nil {
		return "", err
	}

	start := time.Now()
	records, err := params.Generate(fixture.WithMaxRecords(s.maxRecords))
	s.metrics.ObserveFixture("mcp", len(records), time.Since(start), err)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(fixture.Summarize(records).String())
	b.WriteString("\n")
	if withTree {
		b.WriteString("\n")
		if err := fixture.PrintHierarchy(&b, records); err != nil {
			return "", err
		}
	}

	log.Info("MCP fixture generated", "records", len(records), "tree", withTree)
	return b.String(), nil
}

func (s *Server) renderUsers() (string, error) {
	users, err := s.storage.ListUsers()
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "No users found", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d user(s):\n", len(users))
	for _, u := range users {
		state := "active"
		if !u.IsActive {
			state = "inactive"
		}
		fmt.Fprintf(&b, "- %s (ID: %d, %s, %s)\n", u.Username, u.ID, u.Email, state)
	}
	return b.String(), nil
}

func paramLookup(req *mcp.ToolRequest) func(string) string {
	return func(name string) string {
		return req.StringOr(name, "")
	}
}

func toolError(err error) error {
	if errors.Is(err, fixture.ErrInvalidArgument) || errors.Is(err, fixture.ErrTooManyRecords) {
		return mcp.NewToolErrorInvalidParams(err.Error())
	}
	log.Error("MCP fixture generation failed", "error", err)
	return mcp.NewToolErrorInternal("failed to generate fixtures: " + err.Error())
}

// LogStartup logs MCP server startup information
func (s *Server) LogStartup() {
	log.Info("MCP Server initialized", "version", serverVersion)
	if s.bearerToken != "" {
		log.Info("MCP authentication enabled", "type", "Bearer token")
	} else {
		log.Info("MCP authentication disabled")
	}
	tools := s.mcpServer.ListTools()
	log.Info("MCP tools registered", "count", len(tools))
	for _, tool := range tools {
		log.Debug("MCP tool registered", "name", tool.Name, "description", tool.Description)
	}
}

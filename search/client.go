package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is the public grep.app MCP server
	DefaultEndpoint = "https://mcp.grep.app"

	toolName   = "searchGitHub"
	clientName = "grepapp"
)

// ClientVersion is reported to the server during initialization.
// Set at build time.
var ClientVersion = "dev"

// Client talks to the search service over MCP streamable HTTP
type Client struct {
	endpoint string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewClient creates a new Client instance
func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		logger:   logger,
	}
}

// Endpoint returns the server URL the client connects to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Search runs one tool call and returns the raw text response
func (c *Client) Search(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	mc, err := client.NewStreamableHttpClient(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("connect to %s: %w", c.endpoint, err)
	}
	defer func() {
		if err := mc.Close(); err != nil {
			c.logger.Debug("close mcp client", zap.Error(err))
		}
	}()

	if err := mc.Start(ctx); err != nil {
		return "", fmt.Errorf("connect to %s: %w", c.endpoint, contextCause(ctx, err))
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    clientName,
		Version: ClientVersion,
	}
	initReq.Params.Capabilities = mcp.ClientCapabilities{}
	if _, err := mc.Initialize(ctx, initReq); err != nil {
		return "", fmt.Errorf("connect to %s: %w", c.endpoint, contextCause(ctx, err))
	}

	callReq := mcp.CallToolRequest{}
	callReq.Params.Name = toolName
	callReq.Params.Arguments = req.Arguments()

	c.logger.Debug("calling search tool",
		zap.String("endpoint", c.endpoint),
		zap.String("query", req.Query),
		zap.Bool("match_case", req.MatchCase),
		zap.Strings("languages", req.Languages),
	)

	res, err := mc.CallTool(ctx, callReq)
	if err != nil {
		return "", fmt.Errorf("call %s tool: %w", toolName, contextCause(ctx, err))
	}

	text := responseText(res)
	if res.IsError {
		return "", fmt.Errorf("search service returned an error: %s", strings.TrimSpace(text))
	}

	c.logger.Debug("search tool returned",
		zap.Int("bytes", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}

// Find runs the search and parses the response into results
func (c *Client) Find(ctx context.Context, req Request) ([]SearchResult, error) {
	text, err := c.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	results := Parse(text)
	c.logger.Debug("parsed search response", zap.Int("results", len(results)))
	return results, nil
}

// responseText joins the text contents of a tool result with newlines.
// Other content kinds are skipped.
func responseText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	parts := make([]string, 0, len(res.Content))
	for _, content := range res.Content {
		switch tc := content.(type) {
		case mcp.TextContent:
			parts = append(parts, tc.Text)
		case *mcp.TextContent:
			if tc != nil {
				parts = append(parts, tc.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// contextCause attaches ctx's error to err when the transport dropped it,
// so an expired deadline stays detectable with errors.Is.
func contextCause(ctx context.Context, err error) error {
	cerr := ctx.Err()
	if cerr == nil || errors.Is(err, cerr) {
		return err
	}
	return fmt.Errorf("%w: %w", cerr, err)
}

// IsTimeout reports whether err came from the request deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

package tester

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-regex-workbench/internal/regex"
)

// TestArgument defines the test_regex parameters.
type TestArgument struct {
	Pattern string `json:"pattern" jsonschema:"Regular expression source in JavaScript syntax, without slashes"`
	Flags   string `json:"flags,omitempty" jsonschema:"Flags drawn from g i m s u y, each at most once"`
	Subject string `json:"subject" jsonschema:"Text to run the pattern against"`
}

// TestHandler handles the test_regex MCP tool.
type TestHandler struct {
	tester *Tester
}

// NewTestHandler creates a new test handler.
func NewTestHandler(tester *Tester) *TestHandler {
	return &TestHandler{
		tester: tester,
	}
}

// Handle runs the pattern and returns the summary and highlighted subject.
func (h *TestHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args TestArgument) (*mcp.CallToolResult, any, error) {
	report, err := h.tester.Run(ctx, Input{
		Pattern: args.Pattern,
		Flags:   args.Flags,
		Subject: args.Subject,
	})
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Matching failed: %s", err)},
			},
			IsError: true,
		}, nil, nil
	}

	return ReportResult(report), nil, nil
}

// ReportResult formats a report as an MCP tool result. The first content
// block is the textual outcome, the second the highlighted markup. A compile
// error is flagged with IsError so the caller sees the engine message.
func ReportResult(report Report) *mcp.CallToolResult {
	var sb strings.Builder
	if report.Pattern != "" {
		sb.WriteString(fmt.Sprintf("Pattern: /%s/%s\n", report.Pattern, report.Flags))
	}

	switch report.Status {
	case regex.StatusMatched:
		sb.WriteString(report.Summary.String())
	default:
		sb.WriteString(report.Notice)
		sb.WriteString("\n")
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: sb.String()},
			&mcp.TextContent{Text: report.Highlighted},
		},
		StructuredContent: report,
		IsError:           report.Status == regex.StatusCompileError,
	}
}

// GetToolDefinition returns the MCP tool definition.
func (h *TestHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name: "test_regex",
		Description: "Test a JavaScript-syntax regular expression against a subject string. " +
			"Returns every match with its codepoint offsets and capture groups, " +
			"plus the subject as HTML with matches wrapped in highlight spans. " +
			"Matching runs on a JavaScript-compatible engine; captures inside repeated groups " +
			"and \\r in multiline anchors can differ from a browser.",
	}
}

// RegisterTestTool registers the test tool with an MCP server.
func RegisterTestTool(server *mcp.Server, tester *Tester) {
	handler := NewTestHandler(tester)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/fbdash/internal/dataset"
	"github.com/kalambet/fbdash/internal/filter"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Dataset  *dataset.Dataset
	PageSize int
}

// NewMCPServer creates an MCP server exposing the filter engine as tools.
func NewMCPServer(deps MCPDeps, version string) *server.MCPServer {
	if deps.PageSize < 1 {
		deps.PageSize = DefaultPageSize
	}

	s := server.NewMCPServer(
		"fbdash",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("fbdash: vehicle feedback records filtered by brand, model, fact, country, source and date."),
		server.WithRecovery(),
	)

	optionOpts := append(withSelectionParams(),
		mcp.WithDescription("List the selectable values of every filter given the current selections. "+
			`Pass ["select_all"] to select every value of a field.`),
	)
	s.AddTool(mcp.NewTool("filter_options", optionOpts...), mcpFilterOptions(deps))

	rowOpts := append(withSelectionParams(),
		mcp.WithDescription("Return one page of feedback records matching the selections."),
		mcp.WithNumber("page", mcp.Description("Page index starting at 0")),
		mcp.WithNumber("page_size", mcp.Description(fmt.Sprintf("Rows per page (default %d)", deps.PageSize))),
	)
	s.AddTool(mcp.NewTool("filter_rows", rowOpts...), mcpFilterRows(deps))

	s.AddResource(
		mcp.NewResource(
			"dataset://summary",
			"Dataset Summary",
			mcp.WithResourceDescription("Row count, date range and distinct values of the loaded dataset"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceSummary(deps),
	)

	return s
}

func withSelectionParams() []mcp.ToolOption {
	opts := make([]mcp.ToolOption, 0, len(dataset.CategoricalFields)+2)
	for _, f := range dataset.CategoricalFields {
		opts = append(opts, mcp.WithArray(string(f),
			mcp.Description(fmt.Sprintf("Selected %s values", f)),
			mcp.WithStringItems(),
		))
	}
	opts = append(opts,
		mcp.WithString("from", mcp.Description("Inclusive start date, YYYY-MM-DD")),
		mcp.WithString("to", mcp.Description("Inclusive end date, YYYY-MM-DD")),
	)
	return opts
}

func stateFromRequest(ds *dataset.Dataset, req mcp.CallToolRequest) (filter.State, error) {
	var st filter.State
	for _, f := range dataset.CategoricalFields {
		st = st.Set(f, filter.FromList(req.GetStringSlice(string(f), nil)))
	}

	var err error
	if v := req.GetString("from", ""); v != "" {
		if st.From, err = filter.ParseDate(v); err != nil {
			return filter.State{}, fmt.Errorf("from: %w", err)
		}
	}
	if v := req.GetString("to", ""); v != "" {
		if st.To, err = filter.ParseDate(v); err != nil {
			return filter.State{}, fmt.Errorf("to: %w", err)
		}
	}

	min, max := ds.DateRange()
	return st.WithDateDefaults(min, max), nil
}

func mcpFilterOptions(deps MCPDeps) server.ToolHandlerFunc {
	resolver := filter.NewResolver(deps.Dataset)
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := stateFromRequest(deps.Dataset, req)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpJSON(resolver.Resolve(st))
	}
}

func mcpFilterRows(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := stateFromRequest(deps.Dataset, req)
		if err != nil {
			return mcpError(err.Error()), nil
		}

		page := req.GetInt("page", 0)
		if page < 0 {
			return mcpError("page must be non-negative"), nil
		}
		size := req.GetInt("page_size", deps.PageSize)
		if size <= 0 {
			size = deps.PageSize
		}

		return mcpJSON(filter.Paginate(filter.Apply(deps.Dataset.Records(), st), page, size))
	}
}

// DatasetSummary is the dataset://summary resource body.
type DatasetSummary struct {
	DatasetID string                     `json:"dataset_id"`
	Rows      int                        `json:"rows"`
	MinDate   string                     `json:"min_date,omitempty"`
	MaxDate   string                     `json:"max_date,omitempty"`
	Distinct  map[dataset.Field][]string `json:"distinct"`
}

func summarize(ds *dataset.Dataset) DatasetSummary {
	sum := DatasetSummary{
		DatasetID: ds.ID(),
		Rows:      ds.Len(),
		Distinct:  make(map[dataset.Field][]string, len(dataset.CategoricalFields)),
	}
	if min, max := ds.DateRange(); !min.IsZero() {
		sum.MinDate = min.Format(dataset.DateLayout)
		sum.MaxDate = max.Format(dataset.DateLayout)
	}
	for _, f := range dataset.CategoricalFields {
		sum.Distinct[f] = ds.Distinct(f)
	}
	return sum
}

func mcpResourceSummary(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(summarize(deps.Dataset))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal summary: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

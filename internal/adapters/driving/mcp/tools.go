package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driving"
)

// ExtractInput is the input schema for the trigger_extraction tool.
type ExtractInput struct {
	DataSourceID string `json:"data_source_id,omitempty" jsonschema:"the data source to extract; mutually exclusive with project_id"`
	ProjectID    string `json:"project_id,omitempty" jsonschema:"extract every active source of this project"`
	StartDate    string `json:"start_date" jsonschema:"start of the date range (YYYY-MM-DD)"`
	EndDate      string `json:"end_date" jsonschema:"end of the date range (YYYY-MM-DD)"`
	Force        bool   `json:"force,omitempty" jsonschema:"re-extract even when data already exists for the range"`
}

// ExtractOutput is the output schema for the trigger_extraction tool.
type ExtractOutput struct {
	Success       bool                  `json:"success"`
	RecordsStored int                   `json:"records_stored"`
	Message       string                `json:"message,omitempty"`
	Error         string                `json:"error,omitempty"`
	Sources       []domain.SourceResult `json:"sources,omitempty"`
}

// StatusInput is the input schema for the extraction_status tool.
type StatusInput struct {
	ProjectID string `json:"project_id" jsonschema:"the project to report on"`
}

// QueryInput is the input schema for the query_data tool.
type QueryInput struct {
	DataSourceID string `json:"data_source_id,omitempty" jsonschema:"restrict to one data source"`
	ProjectID    string `json:"project_id,omitempty" jsonschema:"restrict to one project"`
	StartDate    string `json:"start_date,omitempty" jsonschema:"earliest data date (YYYY-MM-DD)"`
	EndDate      string `json:"end_date,omitempty" jsonschema:"latest data date (YYYY-MM-DD)"`
	DataType     string `json:"data_type,omitempty" jsonschema:"record granularity, e.g. campaign"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum rows to return (default 100)"`
}

// QueryOutput is the output schema for the query_data tool.
type QueryOutput struct {
	Count   int              `json:"count"`
	Records []map[string]any `json:"records"`
}

// PlatformsOutput is the output schema for the list_platforms tool.
type PlatformsOutput struct {
	Platforms []PlatformInfo `json:"platforms"`
}

// PlatformInfo describes one supported platform.
type PlatformInfo struct {
	Platform       string   `json:"platform"`
	AuthKind       string   `json:"auth_kind"`
	RequiredFields []string `json:"required_fields"`
	Description    string   `json:"description"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "trigger_extraction",
		Description: "Extract marketing data for a data source or a whole project over a date range",
	}, s.handleExtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extraction_status",
		Description: "Report per-source extraction status for a project",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_data",
		Description: "Query extracted, deduplicated marketing records",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_platforms",
		Description: "List supported marketing platforms and their credential requirements",
	}, s.handlePlatforms)
}

func (s *Server) handleExtract(ctx context.Context, _ *mcp.CallToolRequest, input ExtractInput) (*mcp.CallToolResult, ExtractOutput, error) {
	start, err := time.Parse(domain.DateFormat, input.StartDate)
	if err != nil {
		return nil, ExtractOutput{}, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := time.Parse(domain.DateFormat, input.EndDate)
	if err != nil {
		return nil, ExtractOutput{}, fmt.Errorf("invalid end_date: %w", err)
	}
	opts := driving.ExtractOptions{Force: input.Force, Kind: domain.JobManual}

	switch {
	case input.DataSourceID != "":
		result := s.ports.Extraction.ExtractForSource(ctx, input.DataSourceID, start, end, opts)
		return nil, ExtractOutput{
			Success:       result.Success,
			RecordsStored: result.RecordsStored,
			Message:       result.Message,
			Error:         result.Error,
		}, nil
	case input.ProjectID != "":
		result, err := s.ports.Extraction.ExtractForProject(ctx, input.ProjectID, start, end, opts)
		if err != nil {
			return nil, ExtractOutput{}, err
		}
		return nil, ExtractOutput{
			Success:       result.Successful == result.TotalSources,
			RecordsStored: result.TotalRecords,
			Message:       result.Message,
			Sources:       result.Results,
		}, nil
	default:
		return nil, ExtractOutput{}, fmt.Errorf("either data_source_id or project_id is required")
	}
}

func (s *Server) handleStatus(ctx context.Context, _ *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, domain.ProjectStatus, error) {
	status, err := s.ports.Extraction.Status(ctx, input.ProjectID)
	if err != nil {
		return nil, domain.ProjectStatus{}, err
	}
	return nil, *status, nil
}

func (s *Server) handleQuery(ctx context.Context, _ *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, QueryOutput, error) {
	filter := domain.DataFilter{
		DataSourceID: input.DataSourceID,
		ProjectID:    input.ProjectID,
		Limit:        input.Limit,
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if input.StartDate != "" {
		t, err := time.Parse(domain.DateFormat, input.StartDate)
		if err != nil {
			return nil, QueryOutput{}, fmt.Errorf("invalid start_date: %w", err)
		}
		filter.Start = &t
	}
	if input.EndDate != "" {
		t, err := time.Parse(domain.DateFormat, input.EndDate)
		if err != nil {
			return nil, QueryOutput{}, fmt.Errorf("invalid end_date: %w", err)
		}
		filter.End = &t
	}
	if input.DataType != "" {
		filter.DataTypes = []string{input.DataType}
	}

	records, err := s.ports.Extraction.Data(ctx, filter)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{Count: len(records), Records: make([]map[string]any, len(records))}
	for i, rec := range records {
		output.Records[i] = map[string]any{
			"data_source_id": rec.DataSourceID,
			"data_type":      rec.DataType,
			"date":           rec.Date,
			"data":           rec.Processed,
		}
	}
	return nil, output, nil
}

func (s *Server) handlePlatforms(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, PlatformsOutput, error) {
	supported := s.ports.Registry.Supported()
	output := PlatformsOutput{Platforms: make([]PlatformInfo, len(supported))}
	for i, p := range supported {
		req := s.ports.Registry.Requirements(p)
		output.Platforms[i] = PlatformInfo{
			Platform:       p,
			AuthKind:       string(req.AuthKind),
			RequiredFields: req.RequiredFields,
			Description:    req.Description,
		}
	}
	return nil, output, nil
}

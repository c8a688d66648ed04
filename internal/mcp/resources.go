package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

var resState = mcp.NewResource(
	"liftlog://state",
	"Tracker State",
	mcp.WithResourceDescription("Every week, workout, template and weight entry as one JSON document"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) state(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(h.ds.Snapshot())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// Resource URIs exposed by the server.
const (
	TrustURI    = "lingua://trust"
	FeaturesURI = "lingua://features"
	HistoryURI  = "lingua://history"
)

// RegisterResources registers MCP resources that expose lingua state.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	if deps.App == nil {
		return fmt.Errorf("app is required")
	}

	t := &tools{app: deps.App}

	srv.Resource(TrustURI).
		Name("License Trust").
		Description("Current plan, trust state and expiry warning").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			trust, err := t.licenseStatus(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, trust)
		})

	srv.Resource(FeaturesURI).
		Name("Features").
		Description("Providers and tones flagged with availability for the current plan").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			features, err := t.featuresList(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, features)
		})

	srv.Resource(HistoryURI).
		Name("Translation History").
		Description("Local translation history, newest first").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			history, err := t.historyList(ctx, historyListInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, history)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}

	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}

package mcp

import (
	"context"

	historyDomain "github.com/felixgeelhaar/lingua/internal/history/domain"
	"github.com/felixgeelhaar/mcp-go"
)

type historyListInput struct {
	Limit int `json:"limit,omitempty"`
}

type historyListOutput struct {
	Items   []historyDomain.Item `json:"items"`
	Pending int                  `json:"pending"`
}

func registerHistoryTools(srv *mcp.Server, t *tools) {
	srv.Tool("history.list").
		Description("List recent translations, newest first").
		Handler(t.historyList)

	srv.Tool("history.clear").
		Description("Delete all local translation history").
		Handler(t.historyClear)

	srv.Tool("history.sync").
		Description("Upload pending translations to the cloud (premium)").
		Handler(t.historySync)

	srv.Tool("history.fetch").
		Description("Merge cloud history into local history (premium)").
		Handler(t.historyFetch)
}

func (t *tools) historyList(ctx context.Context, input historyListInput) (historyListOutput, error) {
	if t.app.History == nil {
		return historyListOutput{}, errAppNotInitialized
	}

	items, err := t.app.History.List(ctx)
	if err != nil {
		return historyListOutput{}, err
	}
	pending, err := t.app.History.PendingCount(ctx)
	if err != nil {
		return historyListOutput{}, err
	}

	if input.Limit > 0 && len(items) > input.Limit {
		items = items[:input.Limit]
	}
	if items == nil {
		items = []historyDomain.Item{}
	}
	return historyListOutput{Items: items, Pending: pending}, nil
}

func (t *tools) historyClear(ctx context.Context, _ struct{}) (map[string]any, error) {
	if t.app.History == nil {
		return nil, errAppNotInitialized
	}
	if err := t.app.History.Clear(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"success": true}, nil
}

func (t *tools) historySync(ctx context.Context, _ struct{}) (historyDomain.SyncResult, error) {
	if t.app.History == nil || t.app.Translation == nil {
		return historyDomain.SyncResult{}, errAppNotInitialized
	}
	t.app.WaitForSync()
	return t.app.History.SyncToCloud(ctx, t.app.Translation.Session(ctx)), nil
}

func (t *tools) historyFetch(ctx context.Context, _ struct{}) (historyDomain.FetchResult, error) {
	if t.app.History == nil || t.app.Translation == nil {
		return historyDomain.FetchResult{}, errAppNotInitialized
	}
	return t.app.History.FetchFromCloud(ctx, t.app.Translation.Session(ctx)), nil
}

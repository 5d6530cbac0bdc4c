package fineract

import (
	"context"
	"log/slog"
	"strings"
)

// Index is the run-scoped lookup from an entity's natural key to its remote
// id, used to skip re-creation. Populated once per entity type per run and
// read-only afterwards; entries are never persisted.
type Index struct {
	entries map[string]int64
}

// ID looks up the remote id for a natural key.
func (ix *Index) ID(key string) (int64, bool) {
	id, ok := ix.entries[key]
	return id, ok
}

// Len reports how many remote entities the index holds.
func (ix *Index) Len() int { return len(ix.entries) }

func emptyIndex() *Index { return &Index{entries: map[string]int64{}} }

// FetchIndex fetches the full remote collection at endpoint (a bare JSON
// array) and keys it by keyField. A fetch failure degrades to an empty
// index with a warning: duplicate risk is accepted over aborting the run.
func FetchIndex(ctx context.Context, c *Client, endpoint, keyField string) *Index {
	items, err := c.GetJSONArray(ctx, endpoint)
	if err != nil {
		slog.Warn("failed to fetch existing entities, assuming none",
			"endpoint", endpoint, "error", err)
		return emptyIndex()
	}
	return indexItems(items, endpoint, keyField)
}

// FetchPagedIndex is FetchIndex for endpoints that wrap their collection in
// a {pageItems: [...]} page response, as the clients endpoint does.
func FetchPagedIndex(ctx context.Context, c *Client, endpoint, keyField string) *Index {
	resp, err := c.GetJSON(ctx, endpoint)
	if err != nil {
		slog.Warn("failed to fetch existing entities, assuming none",
			"endpoint", endpoint, "error", err)
		return emptyIndex()
	}
	raw, ok := resp["pageItems"].([]any)
	if !ok {
		slog.Warn("unexpected page response shape, assuming no existing entities",
			"endpoint", endpoint)
		return emptyIndex()
	}
	items := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			items = append(items, obj)
		}
	}
	return indexItems(items, endpoint, keyField)
}

func indexItems(items []map[string]any, endpoint, keyField string) *Index {
	ix := emptyIndex()
	for _, item := range items {
		key, _ := item[keyField].(string)
		if key == "" {
			continue
		}
		id, ok := numericField(item, "id")
		if !ok {
			slog.Warn("existing entity has unusable id, skipping",
				"endpoint", endpoint, "key", key)
			continue
		}
		ix.entries[key] = id
	}
	slog.Info("indexed existing entities", "endpoint", endpoint, "count", ix.Len())
	return ix
}

// FetchPermissionNames builds the set of permission names the server
// accepts. Names come from each permission's code and from the
// action_entity pair, each with a _CHECKER variant for maker-checker
// setups. On fetch failure a fixed fallback set keeps the run going.
func FetchPermissionNames(ctx context.Context, c *Client) map[string]bool {
	permissions, err := c.GetJSONArray(ctx, "permissions")
	if err != nil {
		slog.Warn("failed to fetch permissions, using fallback set", "error", err)
		return fallbackPermissions()
	}

	names := make(map[string]bool)
	add := func(name string) {
		if name == "" {
			return
		}
		names[name] = true
		if !strings.HasSuffix(name, "_CHECKER") {
			names[name+"_CHECKER"] = true
		}
	}
	for _, p := range permissions {
		if code, ok := p["code"].(string); ok {
			add(strings.TrimSpace(code))
		}
		action, _ := p["actionName"].(string)
		entity, _ := p["entityName"].(string)
		if action != "" && entity != "" {
			add(strings.TrimSpace(action) + "_" + strings.TrimSpace(entity))
		}
	}

	// Checker variants for the common action/entity grid are not always
	// listed by the endpoint but are accepted by the server.
	actions := []string{"APPROVE", "REJECT", "CREATE", "DELETE", "UPDATE", "DISBURSE", "REPAYMENT", "WITHDRAWAL", "DEPOSIT"}
	entities := []string{"LOAN", "CLIENT", "SAVINGS", "GROUP", "CENTER"}
	for _, action := range actions {
		for _, entity := range entities {
			names[action+"_"+entity+"_CHECKER"] = true
		}
	}

	slog.Info("fetched available permissions", "count", len(names))
	return names
}

func fallbackPermissions() map[string]bool {
	names := make(map[string]bool)
	for _, entity := range []string{"CLIENT", "LOAN", "SAVINGS"} {
		for _, action := range []string{"READ", "CREATE", "UPDATE"} {
			names[action+"_"+entity] = true
		}
	}
	names["DELETE_CLIENT"] = true
	return names
}

// Package mapper resolves workspace channel slugs to provider account ids.
package mapper

import (
	"context"
	"fmt"

	"content-orchestrator/internal/domain/mapping"
)

// Store is the read side of the account mapping table.
type Store interface {
	ListActive(ctx context.Context, workspaceID string) ([]mapping.AccountMapping, error)
}

type Mapper struct {
	snapshot Snapshot
	store    Store
}

// New builds a Mapper. store may be nil, in which case only the snapshot is consulted.
func New(snapshot Snapshot, store Store) *Mapper {
	if snapshot == nil {
		snapshot = Snapshot{}
	}
	return &Mapper{snapshot: snapshot, store: store}
}

// Table returns the effective slug table for a workspace. Stored mappings override snapshot entries.
func (m *Mapper) Table(ctx context.Context, workspaceID string) (map[string][]string, error) {
	table := m.snapshot.Workspace(workspaceID)
	if m.store == nil {
		return table, nil
	}
	stored, err := m.store.ListActive(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load account mappings: %w", err)
	}
	for _, row := range stored {
		if len(row.AccountIDs) == 0 {
			continue
		}
		table[row.ChannelSlug] = append([]string(nil), row.AccountIDs...)
	}
	return table, nil
}

// Resolve maps channels for workspaceID in order.
func (m *Mapper) Resolve(ctx context.Context, workspaceID string, channels []string) ([]string, error) {
	table, err := m.Table(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return ResolveWith(table, channels), nil
}

// ResolveWith expands each slug through table. Unknown slugs pass through unchanged.
func ResolveWith(table map[string][]string, channels []string) []string {
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		if ids, ok := table[ch]; ok && len(ids) > 0 {
			out = append(out, ids...)
			continue
		}
		out = append(out, ch)
	}
	return out
}

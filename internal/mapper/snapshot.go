package mapper

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AccountIDs is a mapping value. On the wire it is either a single account id or a list of them.
type AccountIDs []string

func (a *AccountIDs) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var many []string
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*a = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("account ids must be a string or a list of strings: %w", err)
	}
	*a = AccountIDs{one}
	return nil
}

// MarshalJSON writes a single id as a bare string, matching the legacy format.
func (a AccountIDs) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

// Snapshot is the read-only fallback table, workspace id -> channel slug -> account ids.
type Snapshot map[string]map[string]AccountIDs

// ParseSnapshot decodes an ACCOUNT_MAP_JSON value. An empty value yields an empty snapshot.
func ParseSnapshot(raw string) (Snapshot, error) {
	if strings.TrimSpace(raw) == "" {
		return Snapshot{}, nil
	}
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse account map: %w", err)
	}
	return s, nil
}

// Workspace returns a copy of the table for workspaceID.
func (s Snapshot) Workspace(workspaceID string) map[string][]string {
	out := make(map[string][]string, len(s[workspaceID]))
	for slug, ids := range s[workspaceID] {
		out[slug] = append([]string(nil), ids...)
	}
	return out
}

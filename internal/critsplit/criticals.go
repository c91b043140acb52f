package ic

import (
	"errors"
	"fmt"
	"strings"
)

const entrySuffix = ".critical"

var (
	ErrInvalidCritical = errors.New("invalid critical option")
	ErrDuplicateEntry  = errors.New("duplicate critical entry")
	ErrDuplicateID     = errors.New("duplicate critical id")
	ErrNoSource        = errors.New("no source stylesheet configured")
)

/*
NormalizeCriticals converts the accepted shapes of the criticals option into
an ordered list of Critical records. Accepted inputs are nil, a string, a
Critical (or pointer to one), a map with an "id" key and an optional "entry"
key, or a slice of any of those. A single value is treated as a list of one.
Strings must be non-empty and records must carry a non-empty string ID. Any
other input fails with ErrInvalidCritical.
*/
func NormalizeCriticals(v any) ([]Critical, error) {
	var items []any

	switch x := v.(type) {
	case nil:
		return []Critical{}, nil
	case []Critical:
		for _, c := range x {
			items = append(items, c)
		}
	case []string:
		for _, s := range x {
			items = append(items, s)
		}
	case []map[string]any:
		for _, m := range x {
			items = append(items, m)
		}
	case []any:
		items = x
	default:
		items = []any{x}
	}

	criticals := make([]Critical, 0, len(items))
	seenEntries := make(map[string]int, len(items))
	seenIDs := make(map[string]int, len(items))

	for i, item := range items {
		critical, err := normalizeCritical(item)
		if err != nil {
			return nil, fmt.Errorf("criticals[%d]: %w", i, err)
		}
		if j, seen := seenEntries[critical.Entry]; seen {
			return nil, fmt.Errorf("criticals[%d]: %w %q (already used by criticals[%d])", i, ErrDuplicateEntry, critical.Entry, j)
		}
		if j, seen := seenIDs[critical.ID]; seen {
			return nil, fmt.Errorf("criticals[%d]: %w %q (already used by criticals[%d])", i, ErrDuplicateID, critical.ID, j)
		}
		seenEntries[critical.Entry] = i
		seenIDs[critical.ID] = i
		criticals = append(criticals, critical)
	}

	return criticals, nil
}

func normalizeCritical(item any) (Critical, error) {
	switch x := item.(type) {
	case string:
		if x == "" {
			return Critical{}, fmt.Errorf("%w: empty profile ID", ErrInvalidCritical)
		}
		return Critical{ID: x, Entry: defaultEntry(x)}, nil
	case Critical:
		return normalizeRecord(x.ID, x.Entry)
	case *Critical:
		if x == nil {
			break
		}
		return normalizeRecord(x.ID, x.Entry)
	case map[string]any:
		id, _ := x["id"].(string)
		entry, hasEntry := x["entry"]
		entryStr, isStr := entry.(string)
		if hasEntry && entry != nil && !isStr {
			return Critical{}, fmt.Errorf("%w: entry must be a string, got %T", ErrInvalidCritical, entry)
		}
		return normalizeRecord(id, entryStr)
	case map[string]string:
		return normalizeRecord(x["id"], x["entry"])
	}
	return Critical{}, fmt.Errorf("%w: unsupported value of type %T", ErrInvalidCritical, item)
}

func normalizeRecord(id, entry string) (Critical, error) {
	if strings.TrimSpace(id) == "" {
		return Critical{}, fmt.Errorf("%w: record has no id", ErrInvalidCritical)
	}
	if entry == "" {
		entry = defaultEntry(id)
	}
	return Critical{ID: id, Entry: entry}, nil
}

func defaultEntry(id string) string {
	return id + entrySuffix
}

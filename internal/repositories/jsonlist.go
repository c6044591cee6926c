package repositories

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

// stringList is a []string stored in a JSON column.
// Every array-valued field goes through this type; no repository encodes JSON by hand.
type stringList []string

// Value implements driver.Valuer
func (l stringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (l *stringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = stringList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported list column type %T", src)
	}

	if len(data) == 0 {
		*l = stringList{}
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to decode list: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	*l = items
	return nil
}

// distinctStrings flattens JSON list values of several rows into a sorted unique set
func distinctStrings(lists []stringList) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, item := range list {
			if _, ok := seen[item]; ok || item == "" {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	slices.Sort(out)
	return out
}

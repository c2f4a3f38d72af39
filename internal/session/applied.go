package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// KeyApplied holds the ids of jobs the student applied to from this client.
const KeyApplied = "appliedJobs"

// Applied returns the recorded job ids. A missing key is an empty list.
func Applied(ctx context.Context, store Store) ([]string, error) {
	raw, err := store.Get(ctx, KeyApplied)
	if errors.Is(err, ErrNotFound) || (err == nil && raw == "") {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyApplied, err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyApplied, err)
	}
	return ids, nil
}

// RecordApplied appends id to the ledger unless it is already there.
func RecordApplied(ctx context.Context, store Store, id string) error {
	ids, err := Applied(ctx, store)
	if err != nil {
		return err
	}
	if slices.Contains(ids, id) {
		return nil
	}

	data, err := json.Marshal(append(ids, id))
	if err != nil {
		return err
	}
	if err := store.Set(ctx, KeyApplied, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", KeyApplied, err)
	}
	return nil
}

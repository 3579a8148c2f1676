package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"career-backend/internal/shared/storage/kv"
)

// Repo loads and saves whole collection snapshots.
type Repo interface {
	Load(ctx context.Context, kind Kind) (Snapshot, error)
	SaveRecords(ctx context.Context, kind Kind, records []Record) error
	SaveActive(ctx context.Context, kind Kind, id string) error
}

// KVRepo stores each collection as one JSON array and the active pointer as a
// raw id string, both under fixed keys.
type KVRepo struct {
	Store kv.Store
}

// NewKVRepo constructs a KVRepo.
func NewKVRepo(store kv.Store) *KVRepo {
	return &KVRepo{Store: store}
}

func (r *KVRepo) Load(ctx context.Context, kind Kind) (Snapshot, error) {
	var snap Snapshot

	raw, err := r.Store.Get(ctx, kind.CollectionKey())
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return Snapshot{}, fmt.Errorf("load %s: %w", kind.CollectionKey(), err)
	default:
		if err := json.Unmarshal(raw, &snap.Records); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", kind.CollectionKey(), err)
		}
	}
	if snap.Records == nil {
		snap.Records = []Record{}
	}

	raw, err = r.Store.Get(ctx, kind.ActiveKey())
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return Snapshot{}, fmt.Errorf("load %s: %w", kind.ActiveKey(), err)
	default:
		snap.ActiveID = decodeActiveID(raw)
	}
	return snap, nil
}

func (r *KVRepo) SaveRecords(ctx context.Context, kind Kind, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind.CollectionKey(), err)
	}
	if err := r.Store.Set(ctx, kind.CollectionKey(), raw); err != nil {
		return fmt.Errorf("save %s: %w", kind.CollectionKey(), err)
	}
	return nil
}

// SaveActive writes the active id; an empty id removes the key.
func (r *KVRepo) SaveActive(ctx context.Context, kind Kind, id string) error {
	var err error
	if id == "" {
		err = r.Store.Delete(ctx, kind.ActiveKey())
	} else {
		err = r.Store.Set(ctx, kind.ActiveKey(), []byte(id))
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", kind.ActiveKey(), err)
	}
	return nil
}

// decodeActiveID accepts both the raw id and a JSON-encoded string or null.
func decodeActiveID(raw []byte) string {
	value := strings.TrimSpace(string(raw))
	if value == "null" {
		return ""
	}
	if strings.HasPrefix(value, `"`) {
		var s string
		if err := json.Unmarshal([]byte(value), &s); err == nil {
			return s
		}
	}
	return value
}

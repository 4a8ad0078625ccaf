package complaint

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/civicdex/internal/db"
	"github.com/kailas-cloud/civicdex/internal/domain"
	domcomplaint "github.com/kailas-cloud/civicdex/internal/domain/complaint"
)

// loadBatch bounds the number of HGETALLs pipelined per round-trip in Load.
const loadBatch = 500

// store is the consumer interface for complaints (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores historical complaints as hashes under <prefix>complaint:<id>.
// It implements usecase/complaint.Repository and usecase/detector.Source.
type Repo struct {
	store  store
	prefix string
}

// New creates a complaint repository. An empty prefix falls back to domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix + "complaint:"}
}

// Upsert creates or replaces a complaint. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, c *domcomplaint.Complaint) (bool, error) {
	key := r.key(c.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	// HSET merges fields, so stale payload columns must go first.
	if exists {
		if err := r.store.Del(ctx, key); err != nil {
			return false, fmt.Errorf("del %s: %w", key, err)
		}
	}
	if err := r.store.HSet(ctx, key, buildHashFields(c)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	return !exists, nil
}

// BatchUpsert stores complaints in one pipelined round-trip.
func (r *Repo) BatchUpsert(ctx context.Context, cs []domcomplaint.Complaint) error {
	if len(cs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(cs))
	for i := range cs {
		items[i] = db.HashSetItem{Key: r.key(cs[i].ID()), Fields: buildHashFields(&cs[i])}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset batch: %w", err)
	}
	return nil
}

// Get returns a complaint by ID.
func (r *Repo) Get(ctx context.Context, id string) (domcomplaint.Complaint, error) {
	key := r.key(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcomplaint.Complaint{}, domain.ErrComplaintNotFound
		}
		return domcomplaint.Complaint{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	c, ok := parseHashFields(id, m)
	if !ok {
		return domcomplaint.Complaint{}, domain.ErrComplaintNotFound
	}
	return c, nil
}

// Delete removes a complaint.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrComplaintNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Load returns every stored complaint ordered by ID, so repeated fits over
// an unchanged store see the same row order.
func (r *Repo) Load(ctx context.Context) ([]domcomplaint.Complaint, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan complaints: %w", err)
	}
	sort.Strings(keys)

	out := make([]domcomplaint.Complaint, 0, len(keys))
	for start := 0; start < len(keys); start += loadBatch {
		end := min(start+loadBatch, len(keys))
		batch := keys[start:end]

		hashes, err := r.store.HGetAllMulti(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("load complaints: %w", err)
		}
		for i, m := range hashes {
			c, ok := parseHashFields(strings.TrimPrefix(batch[i], r.prefix), m)
			if !ok {
				continue
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *Repo) key(id string) string {
	return r.prefix + id
}

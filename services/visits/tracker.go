package visits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pricely/metrics"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

var ErrUnknownKind = errors.New("unknown visit kind")

type Kind string

const (
	KindProductType Kind = "product_type"
	KindProduct     Kind = "product"
	KindStore       Kind = "store"
)

var kindTables = map[Kind]string{
	KindProductType: "product_types",
	KindProduct:     "products",
	KindStore:       "stores",
}

// Key is the cache key marking that addr has visited the object recently.
func Key(kind Kind, addr string, id uint) string {
	return fmt.Sprintf("%s_view:%s:%d", kind, addr, id)
}

// Tracker counts at most one view per client address and object within the TTL window.
type Tracker struct {
	rdb *redis.Client
	db  *gorm.DB
	ttl time.Duration
}

func NewTracker(rdb *redis.Client, db *gorm.DB, ttl time.Duration) *Tracker {
	return &Tracker{rdb: rdb, db: db, ttl: ttl}
}

// Track reports whether this visit was counted. Only the caller that creates
// the marker key increments the counter, so concurrent first visits count once.
// On a cache failure nothing is incremented.
func (t *Tracker) Track(ctx context.Context, kind Kind, addr string, id uint) (bool, error) {
	table, ok := kindTables[kind]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	created, err := t.rdb.SetNX(ctx, Key(kind, addr, id), 1, t.ttl).Result()
	if err != nil {
		metrics.RecordVisit(string(kind), "error")
		return false, fmt.Errorf("mark visit: %w", err)
	}
	if !created {
		metrics.RecordVisit(string(kind), "repeat")
		return false, nil
	}

	res := t.db.WithContext(ctx).
		Table(table).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		// let the next visit retry
		t.rdb.Del(ctx, Key(kind, addr, id))
		metrics.RecordVisit(string(kind), "error")
		return false, fmt.Errorf("increment %s views: %w", table, res.Error)
	}
	metrics.RecordVisit(string(kind), "counted")
	return true, nil
}

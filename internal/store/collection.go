package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/iwvelando/sixsigma-portal/pkg/datetime"
	"go.uber.org/zap"
)

// Record is an entry of a collection. Stamp receives the generated id and
// creation time just before the record is appended.
type Record interface {
	Stamp(id string, at time.Time)
}

// Clock supplies the current time used for ids and timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a Collection.
type Option func(*options)

type options struct {
	clock  Clock
	logger *zap.Logger
}

// WithClock sets the clock used to stamp appended records.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Collection is a named append-only list of records of type T, stored as a
// JSON array under its name. T is normally a pointer to a struct.
//
// Append is a read-modify-write of the whole array and is not atomic: when two
// writers append concurrently the last write wins and the other record is lost.
type Collection[T Record] struct {
	backend Backend
	name    string
	clock   Clock
	logger  *zap.Logger
}

// NewCollection binds the collection name to a backend.
func NewCollection[T Record](backend Backend, name string, opts ...Option) *Collection[T] {
	o := options{clock: systemClock{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Collection[T]{backend: backend, name: name, clock: o.clock, logger: o.logger}
}

// Name returns the storage key of the collection.
func (c *Collection[T]) Name() string {
	return c.name
}

// Load returns every record in insertion order. A collection that was never
// written, holds malformed JSON or cannot be read loads as empty; read errors
// are logged and never returned.
func (c *Collection[T]) Load(ctx context.Context) []T {
	records, err := c.load(ctx)
	if err != nil {
		c.logger.Warn("failed to read collection",
			zap.String("op", "store.Collection.Load"),
			zap.String("collection", c.name),
			zap.Error(err),
		)
		return []T{}
	}
	return records
}

// load decodes the stored array. Only backend errors are returned; malformed
// content decodes as empty.
func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	raw, ok, err := c.backend.GetItem(ctx, c.name)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []T{}, nil
	}

	var decoded []T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		c.logger.Debug("ignoring malformed collection",
			zap.String("op", "store.Collection.load"),
			zap.String("collection", c.name),
			zap.Error(err),
		)
		return []T{}, nil
	}

	records := make([]T, 0, len(decoded))
	for _, record := range decoded {
		if isNil(record) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Append stamps record with an id (Unix milliseconds) and the creation time,
// appends it and writes the whole collection back. Ids are only as unique as
// the clock's millisecond resolution. A failed read aborts the append so
// existing records are never overwritten with a partial list.
func (c *Collection[T]) Append(ctx context.Context, record T) (T, error) {
	records, err := c.load(ctx)
	if err != nil {
		return record, fmt.Errorf("failed to read %s: %w", c.name, err)
	}

	now := c.clock.Now()
	record.Stamp(datetime.MillisID(now), now)
	records = append(records, record)

	data, err := json.Marshal(records)
	if err != nil {
		return record, fmt.Errorf("failed to encode %s: %w", c.name, err)
	}
	if err := c.backend.SetItem(ctx, c.name, string(data)); err != nil {
		return record, fmt.Errorf("failed to write %s: %w", c.name, err)
	}

	c.logger.Debug("appended record",
		zap.String("op", "store.Collection.Append"),
		zap.String("collection", c.name),
		zap.Int("size", len(records)),
	)
	return record, nil
}

// Find returns the first record matching pred, scanning in insertion order.
func (c *Collection[T]) Find(ctx context.Context, pred func(T) bool) (T, bool) {
	for _, record := range c.Load(ctx) {
		if pred(record) {
			return record, true
		}
	}
	var zero T
	return zero, false
}

// Count returns the number of stored records.
func (c *Collection[T]) Count(ctx context.Context) int {
	return len(c.Load(ctx))
}

// isNil reports whether value is a nil pointer, e.g. a JSON null element.
func isNil[T any](value T) bool {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

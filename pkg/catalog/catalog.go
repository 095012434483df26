// Package catalog persists decode reports in a pebble database keyed by KSUID, so
// listing in key order is listing by creation time.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/haxelion/fbx3d/pkg/codec"
)

var (
	ErrNotFound      = errors.New("report not found")
	ErrCorruption    = errors.New("report corrupted")
	ErrInvalidSource = errors.New("invalid report source")
)

// reportPrefix namespaces report keys so other record kinds can share the database.
var reportPrefix = []byte("report/")

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSync makes every write wait for the WAL to be synced.
func WithSync() Option {
	return func(c *Catalog) { c.writeOpts = pebble.Sync }
}

// Catalog stores Reports.
type Catalog struct {
	db        *pebble.DB
	codec     *codec.EnvelopeCodec
	logger    *zap.Logger
	writeOpts *pebble.WriteOptions
}

// Open opens or creates the catalog in dir.
func Open(dir string, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		codec:     codec.NewEnvelopeCodec(),
		logger:    zap.NewNop(),
		writeOpts: pebble.NoSync,
	}
	for _, opt := range opts {
		opt(c)
	}

	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", dir, err)
	}
	c.db = db
	c.logger = c.logger.With(zap.String("component", "catalog"), zap.String("dir", dir))
	c.logger.Debug("catalog opened")
	return c, nil
}

// Put stores r, assigning a new ID when r.ID is nil, and returns the ID.
func (c *Catalog) Put(r *Report) (ksuid.KSUID, error) {
	if err := ValidateSource(r.Source); err != nil {
		return ksuid.Nil, err
	}
	if r.ID == ksuid.Nil {
		r.ID = ksuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = r.ID.Time()
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	data, err := c.codec.Encode(codec.FormatJSON, payload)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to encode report: %w", err)
	}

	batch := c.db.NewBatch()
	defer batch.Close()

	// Replacing a report under a different source must drop the old index entry.
	if old, err := c.Get(r.ID); err == nil && old.Source != r.Source {
		if err := batch.Delete(sourceKey(old.Source, r.ID), nil); err != nil {
			return ksuid.Nil, fmt.Errorf("failed to update source index: %w", err)
		}
	}
	if err := batch.Set(reportKey(r.ID), data, nil); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to store report %s: %w", r.ID, err)
	}
	if err := batch.Set(sourceKey(r.Source, r.ID), nil, nil); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to update source index: %w", err)
	}
	if err := batch.Commit(c.writeOpts); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to store report %s: %w", r.ID, err)
	}
	c.logger.Debug("report stored", zap.Stringer("id", r.ID), zap.String("source", r.Source))
	return r.ID, nil
}

// Get returns the report with the given ID.
func (c *Catalog) Get(id ksuid.KSUID) (*Report, error) {
	data, closer, err := c.db.Get(reportKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", id, err)
	}
	defer closer.Close()

	return c.decode(id, data)
}

// List returns up to limit reports, newest first. A limit of zero or less returns all.
func (c *Catalog) List(limit int) ([]*Report, error) {
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: reportPrefix,
		UpperBound: prefixEnd(reportPrefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate catalog: %w", err)
	}
	defer iter.Close()

	var reports []*Report
	for iter.Last(); iter.Valid(); iter.Prev() {
		if limit > 0 && len(reports) >= limit {
			break
		}
		id, err := ksuid.FromBytes(iter.Key()[len(reportPrefix):])
		if err != nil {
			return nil, fmt.Errorf("%w: bad key %x", ErrCorruption, iter.Key())
		}
		r, err := c.decode(id, iter.Value())
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog: %w", err)
	}
	return reports, nil
}

// Delete removes the report with the given ID.
func (c *Catalog) Delete(id ksuid.KSUID) error {
	batch := c.db.NewBatch()
	defer batch.Close()

	r, err := c.Get(id)
	switch {
	case errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, ErrCorruption):
		// The source is unknown; the dangling index entry is skipped by FindBySource.
		c.logger.Warn("deleting corrupted report", zap.Stringer("id", id))
	case err != nil:
		return err
	default:
		if err := batch.Delete(sourceKey(r.Source, id), nil); err != nil {
			return fmt.Errorf("failed to update source index: %w", err)
		}
	}

	if err := batch.Delete(reportKey(id), nil); err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	if err := batch.Commit(c.writeOpts); err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	c.logger.Debug("report deleted", zap.Stringer("id", id))
	return nil
}

// Close flushes and closes the database.
func (c *Catalog) Close() error {
	if err := c.db.Flush(); err != nil {
		c.db.Close()
		return fmt.Errorf("failed to flush catalog: %w", err)
	}
	return c.db.Close()
}

// decode validates the envelope in data and unmarshals its report. data is only
// valid until the caller releases it, so nothing here may retain it.
func (c *Catalog) decode(id ksuid.KSUID, data []byte) (*Report, error) {
	env, err := c.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruption, id, err)
	}
	if err := env.Validate(); err != nil {
		c.logger.Warn("corrupted report", zap.Stringer("id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruption, id, err)
	}

	var r Report
	if err := json.Unmarshal(env.Payload, &r); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruption, id, err)
	}
	if r.ID != id {
		return nil, fmt.Errorf("%w: stored id %s does not match key %s", ErrCorruption, r.ID, id)
	}
	return &r, nil
}

func reportKey(id ksuid.KSUID) []byte {
	key := make([]byte, 0, len(reportPrefix)+len(id))
	key = append(key, reportPrefix...)
	return append(key, id[:]...)
}

// prefixEnd returns the smallest key greater than every key starting with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

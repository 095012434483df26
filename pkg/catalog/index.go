package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// sourcePrefix namespaces the secondary index from source name to report ID. Index
// keys are sourcePrefix + source + 0x00 + id and carry no value.
var sourcePrefix = []byte("source/")

// ValidateSource rejects source names containing the index key terminator.
func ValidateSource(source string) error {
	if i := strings.IndexByte(source, 0); i >= 0 {
		return fmt.Errorf("%w: NUL byte at position %d", ErrInvalidSource, i)
	}
	return nil
}

func sourceKey(source string, id ksuid.KSUID) []byte {
	key := sourceFieldPrefix(source)
	return append(key, id[:]...)
}

// sourceFieldPrefix is the prefix shared by every index key of source. The
// terminator keeps "a" from matching "ab".
func sourceFieldPrefix(source string) []byte {
	key := make([]byte, 0, len(sourcePrefix)+len(source)+1+len(ksuid.Nil))
	key = append(key, sourcePrefix...)
	key = append(key, source...)
	return append(key, 0)
}

// FindBySource returns the reports recorded for source, newest first. Index entries
// whose report no longer exists are skipped.
func (c *Catalog) FindBySource(source string) ([]*Report, error) {
	if err := ValidateSource(source); err != nil {
		return nil, err
	}
	prefix := sourceFieldPrefix(source)
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate source index: %w", err)
	}
	defer iter.Close()

	var ids []ksuid.KSUID
	for iter.Last(); iter.Valid(); iter.Prev() {
		id, err := ksuid.FromBytes(iter.Key()[len(prefix):])
		if err != nil {
			return nil, fmt.Errorf("%w: bad index key %x", ErrCorruption, iter.Key())
		}
		ids = append(ids, id)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate source index: %w", err)
	}

	reports := make([]*Report, 0, len(ids))
	for _, id := range ids {
		r, err := c.Get(id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

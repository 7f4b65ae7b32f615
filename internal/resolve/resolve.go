// Package resolve turns order file key descriptors into store keys.
package resolve

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/hupe1980/subdb/seqdb"
)

// ErrUnresolved is returned when a descriptor does not name a key.
var ErrUnresolved = errors.New("resolve: descriptor does not resolve to a key")

// Resolver maps a key descriptor to a key.
type Resolver interface {
	Resolve(descriptor string) (seqdb.Key, error)
}

// AccessionLookup is the reverse lookup of a source store.
type AccessionLookup interface {
	LookupIDByAccession(accession string) (int, bool)
	LookupKey(lookupID int) (seqdb.Key, error)
}

// Numeric reads descriptors as decimal keys.
type Numeric struct{}

// NewNumeric returns a Numeric resolver.
func NewNumeric() Numeric { return Numeric{} }

// Resolve implements Resolver.
func (Numeric) Resolve(descriptor string) (seqdb.Key, error) {
	n, err := strconv.ParseUint(descriptor, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a key", ErrUnresolved, descriptor)
	}
	return seqdb.Key(n), nil
}

// Lookup reads descriptors as accessions.
type Lookup struct {
	table AccessionLookup
}

// NewLookup returns a Lookup resolver over table.
func NewLookup(table AccessionLookup) *Lookup {
	return &Lookup{table: table}
}

// Resolve implements Resolver.
func (l *Lookup) Resolve(descriptor string) (seqdb.Key, error) {
	id, ok := l.table.LookupIDByAccession(descriptor)
	if !ok {
		return 0, fmt.Errorf("%w: accession %q not in lookup", ErrUnresolved, descriptor)
	}
	key, err := l.table.LookupKey(id)
	if err != nil {
		return 0, fmt.Errorf("%w: accession %q: %w", ErrUnresolved, descriptor, err)
	}
	return key, nil
}

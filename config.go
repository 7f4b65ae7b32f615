package subdb

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SubsetMode selects whether a run copies payloads or references the source data.
type SubsetMode uint8

const (
	// Hard copies payload bytes into the destination data file.
	Hard SubsetMode = iota
	// Soft indexes source entries in place and links the source data file.
	Soft
)

func (m SubsetMode) String() string {
	switch m {
	case Hard:
		return "hard"
	case Soft:
		return "soft"
	default:
		return fmt.Sprintf("SubsetMode(%d)", m)
	}
}

// ParseSubsetMode parses "hard" or "soft".
func ParseSubsetMode(s string) (SubsetMode, error) {
	switch strings.ToLower(s) {
	case "hard", "":
		return Hard, nil
	case "soft":
		return Soft, nil
	default:
		return Hard, fmt.Errorf("%w: subset mode %q", ErrInvalidMode, s)
	}
}

// IDMode selects how order file descriptors are resolved to keys.
type IDMode uint8

const (
	// NumericIDs reads descriptors as decimal keys.
	NumericIDs IDMode = iota
	// LookupIDs reads descriptors as accessions of the source lookup.
	LookupIDs
)

func (m IDMode) String() string {
	switch m {
	case NumericIDs:
		return "numeric"
	case LookupIDs:
		return "lookup"
	default:
		return fmt.Sprintf("IDMode(%d)", m)
	}
}

// ParseIDMode parses "numeric" or "lookup".
func ParseIDMode(s string) (IDMode, error) {
	switch strings.ToLower(s) {
	case "numeric", "":
		return NumericIDs, nil
	case "lookup":
		return LookupIDs, nil
	default:
		return NumericIDs, fmt.Errorf("%w: id mode %q", ErrInvalidMode, s)
	}
}

// Config describes a run.
type Config struct {
	// OrderFile lists the keys to carry over, one per line. When OrderFile+".index"
	// exists it is read instead and treated as a store index.
	OrderFile string
	// Source is the path of the store to draw entries from.
	Source string
	// Dest is the path of the store to create.
	Dest   string
	Mode   SubsetMode
	IDMode IDMode
}

// Validate checks that c names distinct stores and known modes.
func (c Config) Validate() error {
	switch {
	case c.OrderFile == "":
		return fmt.Errorf("%w: order file is required", ErrInvalidConfig)
	case c.Source == "":
		return fmt.Errorf("%w: source is required", ErrInvalidConfig)
	case c.Dest == "":
		return fmt.Errorf("%w: destination is required", ErrInvalidConfig)
	case filepath.Clean(c.Source) == filepath.Clean(c.Dest):
		return fmt.Errorf("%w: source and destination are both %s", ErrInvalidConfig, c.Source)
	case c.Mode > Soft:
		return fmt.Errorf("%w: %s", ErrInvalidMode, c.Mode)
	case c.IDMode > LookupIDs:
		return fmt.Errorf("%w: %s", ErrInvalidMode, c.IDMode)
	}
	return nil
}

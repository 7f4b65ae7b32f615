package seqdb

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"
)

// DBType is the semantic type of the entries of a store.
type DBType int32

// Store entry types. The numeric values are part of the on-disk .dbtype format.
const (
	Unknown             DBType = -1
	AminoAcids          DBType = 0
	Nucleotides         DBType = 1
	HMMProfile          DBType = 2
	ProfileStateSeq     DBType = 3
	ProfileStateProfile DBType = 4
	AlignmentResult     DBType = 5
	ClusterResult       DBType = 6
	PrefilterResult     DBType = 7
	TaxonomyResult      DBType = 8
	IndexDB             DBType = 9
	CA3M                DBType = 10
	MSA                 DBType = 11
	Generic             DBType = 12
	OmitFile            DBType = 13
	PrefilterRevResult  DBType = 14
	OffsetDB            DBType = 15
	Directory           DBType = 16
	FlatFile            DBType = 17
	SeqTaxDB            DBType = 18
	Stdin               DBType = 19
	URI                 DBType = 20
)

// extendedCompressed is the extended-type bit recording a compressed store.
const extendedCompressed = 1

var dbTypeNames = map[DBType]string{
	AminoAcids:          "Aminoacid",
	Nucleotides:         "Nucleotide",
	HMMProfile:          "Profile",
	ProfileStateSeq:     "Profile state",
	ProfileStateProfile: "Profile profile",
	AlignmentResult:     "Alignment",
	ClusterResult:       "Clustering",
	PrefilterResult:     "Prefilter",
	TaxonomyResult:      "Taxonomy",
	IndexDB:             "Index",
	CA3M:                "CA3M",
	MSA:                 "MSA",
	Generic:             "Generic",
	OmitFile:            "Omit",
	PrefilterRevResult:  "Bi-directional prefilter",
	OffsetDB:            "Offset Index",
	Directory:           "Directory",
	FlatFile:            "Flatfile",
	SeqTaxDB:            "SeqTax",
	Stdin:               "stdin",
	URI:                 "uri",
}

func (t DBType) String() string {
	if name, ok := dbTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// ParseDBType parses a type name as printed by String. Matching is case-insensitive.
func ParseDBType(s string) (DBType, error) {
	for t, name := range dbTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownDBType, s)
}

// IsSequence reports whether entries of t are sequence-like (profiles, amino acid or
// nucleotide sequences). Subsets of such stores are consolidated on close.
func (t DBType) IsSequence() bool {
	return t == HMMProfile || t == AminoAcids || t == Nucleotides
}

// IsGeneric reports whether entries of t are opaque and must be copied whole.
func (t DBType) IsGeneric() bool { return t == Generic }

// DBTypePath returns the type descriptor path of the store at path.
func DBTypePath(path string) string { return path + ".dbtype" }

// WriteDBType writes the type descriptor of the store at path.
func WriteDBType(path string, t DBType, compressed bool, optFns ...Option) error {
	v := uint32(t) & 0xFFFF
	if compressed {
		v |= extendedCompressed << 16
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	if err := writeFileAtomicFS(applyOptions(optFns).fs, DBTypePath(path), buf[:]); err != nil {
		return fmt.Errorf("seqdb: write type descriptor: %w", err)
	}
	return nil
}

// ReadDBType reads the type descriptor of the store at path. A store without a
// descriptor reports Unknown and uncompressed.
func ReadDBType(path string) (DBType, bool, error) {
	b, err := os.ReadFile(DBTypePath(path))
	if os.IsNotExist(err) {
		return Unknown, false, nil
	}
	if err != nil {
		return Unknown, false, fmt.Errorf("seqdb: read type descriptor: %w", err)
	}
	if len(b) < 4 {
		return Unknown, false, fmt.Errorf("%w: type descriptor has %d bytes", ErrCorrupt, len(b))
	}
	v := binary.LittleEndian.Uint32(b)
	return DBType(int16(v & 0xFFFF)), (v>>16)&extendedCompressed != 0, nil
}

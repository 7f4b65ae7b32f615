package orderfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxKeyLen is the longest key descriptor a line may carry.
const MaxKeyLen = 255

var (
	// ErrOddRangeCount is returned when the fields after the key do not pair up.
	ErrOddRangeCount = errors.New("orderfile: odd number of range bounds")
	// ErrRangeSyntax is returned for a range bound that is not a non-negative integer.
	ErrRangeSyntax = errors.New("orderfile: invalid range bound")
	// ErrRangeOrder is returned for a range whose end precedes its start.
	ErrRangeOrder = errors.New("orderfile: range end before start")
)

// Line is one parsed row of an order file.
type Line struct {
	// Number is the 1-based line number; zero for lines not read by a Scanner.
	Number int
	// Key is the key descriptor: the text up to the first tab or whitespace,
	// cut to MaxKeyLen bytes.
	Key string
	// Overlong is set when the descriptor exceeded MaxKeyLen and Key was cut.
	Overlong bool
	// Fields are the non-empty tab-separated fields after the first tab, verbatim.
	Fields []string
}

// Parse splits a single order file line. A trailing newline is ignored.
func Parse(s string) Line {
	s = strings.TrimRight(s, "\r\n")

	var l Line
	end := strings.IndexAny(s, " \t\n\r")
	if end < 0 {
		end = len(s)
	}
	l.Key = s[:end]
	if len(l.Key) > MaxKeyLen {
		l.Key = l.Key[:MaxKeyLen]
		l.Overlong = true
	}

	tab := strings.IndexByte(s, '\t')
	if tab < 0 {
		return l
	}
	for _, f := range strings.Split(s[tab+1:], "\t") {
		// Consecutive tabs do not produce empty fields.
		if f != "" {
			l.Fields = append(l.Fields, f)
		}
	}
	return l
}

// Range is an inclusive, 0-based byte range.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes the range covers.
func (r Range) Len() int { return r.End - r.Start + 1 }

func (r Range) String() string { return fmt.Sprintf("[%d,%d]", r.Start, r.End) }

// Ranges decodes the fields of l as start/end pairs in order. A line without fields
// has no ranges.
func (l Line) Ranges() ([]Range, error) {
	if len(l.Fields) == 0 {
		return nil, nil
	}
	if len(l.Fields)%2 != 0 {
		return nil, fmt.Errorf("%w: %d fields after key", ErrOddRangeCount, len(l.Fields))
	}
	ranges := make([]Range, 0, len(l.Fields)/2)
	for i := 0; i < len(l.Fields); i += 2 {
		start, err := parseBound(l.Fields[i])
		if err != nil {
			return nil, err
		}
		end, err := parseBound(l.Fields[i+1])
		if err != nil {
			return nil, err
		}
		if end < start {
			return nil, fmt.Errorf("%w: %d < %d", ErrRangeOrder, end, start)
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges, nil
}

func parseBound(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrRangeSyntax, s)
	}
	return n, nil
}

// Scanner reads an order file line by line. Lines may be arbitrarily long.
type Scanner struct {
	r    *bufio.Reader
	line Line
	n    int
	err  error
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, 64*1024)}
}

// Scan advances to the next line. It returns false at end of input or on error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	text, err := s.r.ReadString('\n')
	if err != nil && err != io.EOF {
		s.err = err
		return false
	}
	if err == io.EOF && text == "" {
		s.err = io.EOF
		return false
	}
	s.n++
	s.line = Parse(text)
	s.line.Number = s.n
	return true
}

// Line returns the line produced by the last call to Scan.
func (s *Scanner) Line() Line { return s.line }

// Err returns the first non-EOF error encountered.
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

package puaa

import "fmt"

// NoCodepoint marks an absent optional codepoint value, e.g. a missing
// simple case mapping.
const NoCodepoint rune = -1

// Profile selects the set of source file kinds feeding one compilation.
type Profile uint8

// Compilation profiles. Min compiles blocks and character records only,
// Names adds name aliases, Full additionally carries every other property
// file found under a source directory.
const (
	Full Profile = iota
	Min
	Names
)

func (p Profile) String() string {
	switch p {
	case Full:
		return "full"
	case Min:
		return "min"
	case Names:
		return "names"
	}
	return fmt.Sprintf("profile(%d)", uint8(p))
}

// ParseProfile reads a profile name as used on the command line.
func ParseProfile(s string) (Profile, bool) {
	switch s {
	case "full":
		return Full, true
	case "min":
		return Min, true
	case "names":
		return Names, true
	}
	return Full, false
}

// Range is an inclusive range of Unicode codepoints. A single codepoint is
// denoted by Lo == Hi.
type Range struct {
	Lo, Hi rune
}

// Contains checks whether a codepoint falls into the range.
func (r Range) Contains(cp rune) bool {
	return r.Lo <= cp && cp <= r.Hi
}

// overlaps checks for a non-empty intersection of two ranges.
func (r Range) overlaps(other Range) bool {
	return r.Lo <= other.Hi && other.Lo <= r.Hi
}

func (r Range) String() string {
	if r.Lo == r.Hi {
		return fmt.Sprintf("%04X", r.Lo)
	}
	return fmt.Sprintf("%04X..%04X", r.Lo, r.Hi)
}

// Origin names the source file location a record was read from. It is used
// for error reporting and is not part of the encoded table.
type Origin struct {
	File string
	Line int
}

func (o Origin) String() string {
	return fmt.Sprintf("%s:%d", o.File, o.Line)
}

// Block is one named block range, as defined by Blocks.txt.
type Block struct {
	Range
	Name   string
	Origin Origin
}

// Decomposition is the optional decomposition mapping of a character
// record. Tag is the compatibility formatting tag without its angle
// brackets, empty for canonical decompositions.
type Decomposition struct {
	Tag     string
	Mapping []rune
}

// IsZero reports an absent decomposition.
func (d Decomposition) IsZero() bool {
	return d.Tag == "" && len(d.Mapping) == 0
}

// Numeric carries the numeric value of a character record. UCD expresses
// values such as "1/6", so Value stays a string.
type Numeric struct {
	Type  NumericType
	Value string
}

// CharRecord is one entry of UnicodeData.txt, keyed by a single codepoint
// or by a contiguous range (UCD's <..., First>/<..., Last> line pairs).
// A range record asserts that every codepoint in the range shares all
// fields.
type CharRecord struct {
	Range
	Name           string
	Category       Category
	CombiningClass uint8
	Bidi           BidiClass
	Decomp         Decomposition
	Numeric        Numeric
	Mirrored       bool
	Unicode1Name   string
	ISOComment     string
	Upper          rune // NoCodepoint when absent
	Lower          rune
	Title          rune
	Origin         Origin
}

// NameAlias is one entry of NameAliases.txt.
type NameAlias struct {
	Codepoint rune
	Alias     string
	Type      AliasType
	Origin    Origin
}

// GenericEntry is one data line of a property file with no dedicated typed
// model: a range key plus the ordered remaining fields, carried verbatim.
type GenericEntry struct {
	Range
	Fields []string
	Origin Origin
}

// GenericSection carries one such file through a Full-profile compilation,
// keyed by its base file name.
type GenericSection struct {
	File    string
	Entries []GenericEntry
}

// SourceSet collects everything parsed from one selected input, i.e. one
// release directory or one explicit list of files. Record order is input
// order; the merger establishes the canonical order.
type SourceSet struct {
	Blocks  []Block
	Chars   []CharRecord
	Aliases []NameAlias
	Extras  []GenericSection

	// Declarations picked up from @flag/@substring directives in annotated
	// source fragments.
	Flags      []string
	Substrings []string
}

// Table is the merged, canonically ordered dataset of one compilation.
// A Table is immutable once produced by Merge; the codec never modifies
// it.
type Table struct {
	Profile Profile
	Blocks  []Block
	Chars   []CharRecord
	Aliases []NameAlias
	Extras  []GenericSection
}

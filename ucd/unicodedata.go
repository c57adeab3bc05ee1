package ucd

import (
	"strconv"
	"strings"

	"github.com/npillmayer/puaa"
)

// UnicodeData.txt carries 15 semicolon-delimited fields per line:
// codepoint, name, general category, canonical combining class, bidi
// class, decomposition mapping, three numeric-value fields, mirrored
// flag, Unicode-1 name, ISO comment, and the three simple case mappings.
const unicodeDataFields = 15

// parseUnicodeData reads a UnicodeData.txt-style file. Pairs of adjacent
// "<X, First>"/"<X, Last>" lines are folded into one record covering the
// full range.
func parseUnicodeData(sc *scanner, set *puaa.SourceSet) error {
	folder := charFolder{set: set}
	for sc.Next() {
		if err := folder.add(sc.token); err != nil {
			return err
		}
	}
	if err := folder.finish(sc.file); err != nil {
		return err
	}
	return sc.err
}

// charFolder folds UCD First/Last line pairs into single range records.
// All other records pass through unchanged.
type charFolder struct {
	set     *puaa.SourceSet
	pending *puaa.CharRecord // a First record awaiting its Last line
	base    string           // bracketed name payload of the pending record
}

func (f *charFolder) add(tok *Token) error {
	rec, err := charFromToken(tok)
	if err != nil {
		return err
	}
	base, marker := splitRangeMarker(rec.Name)
	switch marker {
	case markerFirst:
		if f.pending != nil {
			return malformed(tok, "<%s, First> while <%s, First> still open", base, f.base)
		}
		rec.Name = "<" + base + ">"
		f.pending = &rec
		f.base = base
		return nil
	case markerLast:
		if f.pending == nil {
			return malformed(tok, "<%s, Last> without matching First line", base)
		}
		if base != f.base {
			return malformed(tok, "<%s, Last> does not match <%s, First>", base, f.base)
		}
		if rec.Lo <= f.pending.Lo {
			return malformed(tok, "range end %04X not after start %04X", rec.Lo, f.pending.Lo)
		}
		f.pending.Hi = rec.Lo
		f.set.Chars = append(f.set.Chars, *f.pending)
		f.pending = nil
		f.base = ""
		return nil
	}
	if f.pending != nil {
		return malformed(tok, "<%s, First> not followed by a Last line", f.base)
	}
	f.set.Chars = append(f.set.Chars, rec)
	return nil
}

func (f *charFolder) finish(file string) error {
	if f.pending != nil {
		return MalformedSourceError{
			File:   file,
			Line:   f.pending.Origin.Line,
			Reason: "<" + f.base + ", First> never closed",
		}
	}
	return nil
}

type rangeMarker uint8

const (
	markerNone rangeMarker = iota
	markerFirst
	markerLast
)

// splitRangeMarker recognizes the "<X, First>" / "<X, Last>" name
// convention and returns the payload X.
func splitRangeMarker(name string) (string, rangeMarker) {
	if !strings.HasPrefix(name, "<") || !strings.HasSuffix(name, ">") {
		return name, markerNone
	}
	inner := name[1 : len(name)-1]
	if strings.HasSuffix(inner, ", First") {
		return strings.TrimSuffix(inner, ", First"), markerFirst
	}
	if strings.HasSuffix(inner, ", Last") {
		return strings.TrimSuffix(inner, ", Last"), markerLast
	}
	return name, markerNone
}

func charFromToken(tok *Token) (puaa.CharRecord, error) {
	var rec puaa.CharRecord
	if tok.IsDirective() {
		return rec, malformed(tok, "unexpected directive in character data")
	}
	if tok.Fields() != unicodeDataFields {
		return rec, malformed(tok, "character line needs %d fields, has %d",
			unicodeDataFields, tok.Fields())
	}
	from, to, ok := tok.Range()
	if !ok || from != to {
		return rec, malformed(tok, "invalid codepoint %q", tok.Field(0))
	}
	rec.Range = puaa.Range{Lo: from, Hi: from}
	rec.Name = tok.Field(1)
	rec.Origin = tok.origin()

	if rec.Category, ok = puaa.ParseCategory(tok.Field(2)); !ok {
		return rec, malformed(tok, "unknown general category %q", tok.Field(2))
	}
	ccc, err := strconv.ParseUint(tok.Field(3), 10, 8)
	if err != nil {
		return rec, malformed(tok, "invalid combining class %q", tok.Field(3))
	}
	rec.CombiningClass = uint8(ccc)
	if rec.Bidi, ok = puaa.ParseBidiClass(tok.Field(4)); !ok {
		return rec, malformed(tok, "unknown bidi class %q", tok.Field(4))
	}
	if rec.Decomp, err = parseDecomposition(tok, tok.Field(5)); err != nil {
		return rec, err
	}
	rec.Numeric = parseNumeric(tok.Field(6), tok.Field(7), tok.Field(8))
	switch tok.Field(9) {
	case "Y":
		rec.Mirrored = true
	case "N", "":
		rec.Mirrored = false
	default:
		return rec, malformed(tok, "invalid mirrored flag %q", tok.Field(9))
	}
	rec.Unicode1Name = tok.Field(10)
	rec.ISOComment = tok.Field(11)
	if rec.Upper, ok = parseOptCodepoint(tok.Field(12)); !ok {
		return rec, malformed(tok, "invalid uppercase mapping %q", tok.Field(12))
	}
	if rec.Lower, ok = parseOptCodepoint(tok.Field(13)); !ok {
		return rec, malformed(tok, "invalid lowercase mapping %q", tok.Field(13))
	}
	if rec.Title, ok = parseOptCodepoint(tok.Field(14)); !ok {
		return rec, malformed(tok, "invalid titlecase mapping %q", tok.Field(14))
	}
	return rec, nil
}

// parseDecomposition reads field 5: an optional "<tag>" followed by a hex
// codepoint sequence.
func parseDecomposition(tok *Token, s string) (puaa.Decomposition, error) {
	var d puaa.Decomposition
	if s == "" {
		return d, nil
	}
	words := strings.Fields(s)
	for i, word := range words {
		if strings.HasPrefix(word, "<") && strings.HasSuffix(word, ">") {
			if i != 0 || d.Tag != "" {
				return d, malformed(tok, "misplaced decomposition tag %q", word)
			}
			d.Tag = word[1 : len(word)-1]
			continue
		}
		cp, ok := parseCodepoint(word)
		if !ok {
			return d, malformed(tok, "invalid decomposition codepoint %q", word)
		}
		d.Mapping = append(d.Mapping, cp)
	}
	return d, nil
}

// parseNumeric applies the UCD field precedence: field 6 set means a
// decimal digit value, else field 7 a digit value, else field 8 a general
// numeric value.
func parseNumeric(decimal, digit, numeric string) puaa.Numeric {
	switch {
	case decimal != "":
		return puaa.Numeric{Type: puaa.NumDecimal, Value: decimal}
	case digit != "":
		return puaa.Numeric{Type: puaa.NumDigit, Value: digit}
	case numeric != "":
		return puaa.Numeric{Type: puaa.NumNumeric, Value: numeric}
	}
	return puaa.Numeric{}
}

func parseOptCodepoint(s string) (rune, bool) {
	if s == "" {
		return puaa.NoCodepoint, true
	}
	return parseCodepoint(s)
}

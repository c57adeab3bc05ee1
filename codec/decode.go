package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/npillmayer/puaa"
)

// Decoded is a read-only handle on an encoded table. All accessors work
// directly on the underlying bytes, which the caller must not modify.
type Decoded struct {
	data    []byte
	profile puaa.Profile

	nBlocks, nChars, nAliases, nExtras int

	blockIndexOff, charIndexOff, aliasIndexOff, extraDirOff uint32
	payloadOff, payloadLen, stringsOff, stringsLen          uint32
}

func corrupt(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorruptTable, fmt.Sprintf(format, args...))
}

// Decode validates an encoded table and returns a handle on it. Trailing
// bytes beyond the encoded length are tolerated, so a blob read from a
// padded sfnt table slot decodes unchanged.
func Decode(data []byte) (*Decoded, error) {
	if len(data) < headerSize {
		return nil, corrupt("%d bytes is shorter than the header", len(data))
	}
	if !bytes.Equal(data[0:4], magic[:]) {
		return nil, corrupt("bad magic %q", data[0:4])
	}
	if v := binary.BigEndian.Uint16(data[4:6]); v != version {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, v)
	}
	profile := puaa.Profile(data[6])
	if profile != puaa.Full && profile != puaa.Min && profile != puaa.Names {
		return nil, fmt.Errorf("%w: profile %d", ErrUnsupportedVersion, data[6])
	}
	u32 := func(off int) uint32 {
		return binary.BigEndian.Uint32(data[off : off+4])
	}
	d := &Decoded{
		profile:       profile,
		nBlocks:       int(u32(8)),
		nChars:        int(u32(12)),
		nAliases:      int(u32(16)),
		nExtras:       int(u32(20)),
		blockIndexOff: u32(24),
		charIndexOff:  u32(28),
		aliasIndexOff: u32(32),
		extraDirOff:   u32(36),
		payloadOff:    u32(40),
		payloadLen:    u32(44),
		stringsOff:    u32(48),
		stringsLen:    u32(52),
	}
	totalLen := u32(56)
	if uint64(totalLen) > uint64(len(data)) {
		return nil, corrupt("declared length %d exceeds %d bytes of input", totalLen, len(data))
	}
	d.data = data[:totalLen]

	sections := []struct {
		name  string
		off   uint32
		size  uint64
		limit uint32
	}{
		{"block index", d.blockIndexOff, uint64(d.nBlocks) * rangeEntrySize, d.charIndexOff},
		{"character index", d.charIndexOff, uint64(d.nChars) * rangeEntrySize, d.aliasIndexOff},
		{"alias index", d.aliasIndexOff, uint64(d.nAliases) * aliasEntrySize, d.extraDirOff},
		{"extra directory", d.extraDirOff, uint64(d.nExtras) * extraDirSize, d.payloadOff},
		{"payload pool", d.payloadOff, uint64(d.payloadLen), d.stringsOff},
		{"string pool", d.stringsOff, uint64(d.stringsLen), totalLen},
	}
	pos := uint32(headerSize)
	for _, s := range sections {
		if s.off < pos || uint64(s.off)+s.size > uint64(s.limit) {
			return nil, corrupt("%s [%d +%d] out of place", s.name, s.off, s.size)
		}
		pos = s.limit
	}
	for i := 0; i < d.nExtras; i++ {
		_, count, indexOff := d.extraDirEntry(i)
		end := uint64(indexOff) + uint64(count)*rangeEntrySize
		if indexOff < d.extraDirOff+uint32(d.nExtras)*extraDirSize || end > uint64(d.payloadOff) {
			return nil, corrupt("extra index %d [%d +%d entries] out of place", i, indexOff, count)
		}
	}
	tracer().Debugf("decoded %s table: %d blocks, %d characters, %d alias codepoints, %d extra sections",
		d.profile, d.nBlocks, d.nChars, d.nAliases, d.nExtras)
	return d, nil
}

// Profile returns the compilation profile the table was built with.
func (d *Decoded) Profile() puaa.Profile { return d.profile }

// BlockCount returns the number of block ranges.
func (d *Decoded) BlockCount() int { return d.nBlocks }

// CharCount returns the number of character record ranges.
func (d *Decoded) CharCount() int { return d.nChars }

// ExtraCount returns the number of generic property sections.
func (d *Decoded) ExtraCount() int { return d.nExtras }

func (d *Decoded) u32(off uint32) uint32 {
	return binary.BigEndian.Uint32(d.data[off : off+4])
}

func (d *Decoded) rangeEntry(base uint32, i int) (lo, hi rune, payload uint32) {
	off := base + uint32(i)*rangeEntrySize
	return rune(d.u32(off)), rune(d.u32(off + 4)), d.u32(off + 8)
}

func (d *Decoded) aliasEntry(i int) (cp rune, payload uint32) {
	off := d.aliasIndexOff + uint32(i)*aliasEntrySize
	return rune(d.u32(off)), d.u32(off + 4)
}

func (d *Decoded) extraDirEntry(i int) (fileRef, count, indexOff uint32) {
	off := d.extraDirOff + uint32(i)*extraDirSize
	return d.u32(off), d.u32(off + 4), d.u32(off + 8)
}

// string resolves a string reference from the pool.
func (d *Decoded) string(ref uint32) (string, error) {
	if ref == noString {
		return "", nil
	}
	if uint64(ref)+2 > uint64(d.stringsLen) {
		return "", corrupt("string reference %d outside pool", ref)
	}
	off := d.stringsOff + ref
	n := uint32(binary.BigEndian.Uint16(d.data[off : off+2]))
	if uint64(ref)+2+uint64(n) > uint64(d.stringsLen) {
		return "", corrupt("string at %d runs past pool end", ref)
	}
	return string(d.data[off+2 : off+2+n]), nil
}

// payloadReader reads one variable-length payload record with bounds
// checking against the payload pool.
type payloadReader struct {
	d   *Decoded
	pos uint32
}

func (d *Decoded) payload(off uint32) (*payloadReader, error) {
	if off >= d.payloadLen {
		return nil, corrupt("payload offset %d outside pool", off)
	}
	return &payloadReader{d: d, pos: off}, nil
}

func (r *payloadReader) u8() (uint8, error) {
	if r.pos+1 > r.d.payloadLen {
		return 0, corrupt("payload truncated at %d", r.pos)
	}
	v := r.d.data[r.d.payloadOff+r.pos]
	r.pos++
	return v, nil
}

func (r *payloadReader) u16() (uint16, error) {
	if uint64(r.pos)+2 > uint64(r.d.payloadLen) {
		return 0, corrupt("payload truncated at %d", r.pos)
	}
	off := r.d.payloadOff + r.pos
	r.pos += 2
	return binary.BigEndian.Uint16(r.d.data[off : off+2]), nil
}

func (r *payloadReader) u32() (uint32, error) {
	if uint64(r.pos)+4 > uint64(r.d.payloadLen) {
		return 0, corrupt("payload truncated at %d", r.pos)
	}
	off := r.d.payloadOff + r.pos
	r.pos += 4
	return binary.BigEndian.Uint32(r.d.data[off : off+4]), nil
}

func (r *payloadReader) str() (string, error) {
	ref, err := r.u32()
	if err != nil {
		return "", err
	}
	return r.d.string(ref)
}

func (d *Decoded) blockAt(i int) (puaa.Block, error) {
	lo, hi, off := d.rangeEntry(d.blockIndexOff, i)
	r, err := d.payload(off)
	if err != nil {
		return puaa.Block{}, err
	}
	name, err := r.str()
	if err != nil {
		return puaa.Block{}, err
	}
	return puaa.Block{Range: puaa.Range{Lo: lo, Hi: hi}, Name: name}, nil
}

func (d *Decoded) charAt(i int) (puaa.CharRecord, error) {
	lo, hi, off := d.rangeEntry(d.charIndexOff, i)
	rec := puaa.CharRecord{
		Range: puaa.Range{Lo: lo, Hi: hi},
		Upper: puaa.NoCodepoint,
		Lower: puaa.NoCodepoint,
		Title: puaa.NoCodepoint,
	}
	r, err := d.payload(off)
	if err != nil {
		return rec, err
	}
	flags, err := r.u8()
	if err != nil {
		return rec, err
	}
	cat, err := r.u8()
	if err != nil {
		return rec, err
	}
	rec.Category = puaa.Category(cat)
	if rec.CombiningClass, err = r.u8(); err != nil {
		return rec, err
	}
	bidi, err := r.u8()
	if err != nil {
		return rec, err
	}
	rec.Bidi = puaa.BidiClass(bidi)
	if rec.Name, err = r.str(); err != nil {
		return rec, err
	}
	rec.Mirrored = flags&flagMirrored != 0
	if flags&flagDecomp != 0 {
		if rec.Decomp.Tag, err = r.str(); err != nil {
			return rec, err
		}
		n, err := r.u16()
		if err != nil {
			return rec, err
		}
		rec.Decomp.Mapping = make([]rune, n)
		for j := range rec.Decomp.Mapping {
			cp, err := r.u32()
			if err != nil {
				return rec, err
			}
			rec.Decomp.Mapping[j] = rune(cp)
		}
	}
	if flags&flagNumeric != 0 {
		typ, err := r.u8()
		if err != nil {
			return rec, err
		}
		rec.Numeric.Type = puaa.NumericType(typ)
		if rec.Numeric.Value, err = r.str(); err != nil {
			return rec, err
		}
	}
	if flags&flagU1Name != 0 {
		if rec.Unicode1Name, err = r.str(); err != nil {
			return rec, err
		}
	}
	if flags&flagISOComment != 0 {
		if rec.ISOComment, err = r.str(); err != nil {
			return rec, err
		}
	}
	if flags&flagUpper != 0 {
		cp, err := r.u32()
		if err != nil {
			return rec, err
		}
		rec.Upper = rune(cp)
	}
	if flags&flagLower != 0 {
		cp, err := r.u32()
		if err != nil {
			return rec, err
		}
		rec.Lower = rune(cp)
	}
	if flags&flagTitle != 0 {
		cp, err := r.u32()
		if err != nil {
			return rec, err
		}
		rec.Title = rune(cp)
	}
	return rec, nil
}

func (d *Decoded) aliasesAt(i int) ([]puaa.NameAlias, error) {
	cp, off := d.aliasEntry(i)
	r, err := d.payload(off)
	if err != nil {
		return nil, err
	}
	n, err := r.u16()
	if err != nil {
		return nil, err
	}
	aliases := make([]puaa.NameAlias, n)
	for j := range aliases {
		alias, err := r.str()
		if err != nil {
			return nil, err
		}
		typ, err := r.u8()
		if err != nil {
			return nil, err
		}
		aliases[j] = puaa.NameAlias{Codepoint: cp, Alias: alias, Type: puaa.AliasType(typ)}
	}
	return aliases, nil
}

// Lookup binary-searches the indexes for one codepoint. Any of the three
// results may be nil/empty when the table has no matching record; that is
// not an error.
func (d *Decoded) Lookup(cp rune) (*puaa.Block, *puaa.CharRecord, []puaa.NameAlias, error) {
	var block *puaa.Block
	var char *puaa.CharRecord
	if i, ok := d.searchRanges(d.blockIndexOff, d.nBlocks, cp); ok {
		b, err := d.blockAt(i)
		if err != nil {
			return nil, nil, nil, err
		}
		block = &b
	}
	if i, ok := d.searchRanges(d.charIndexOff, d.nChars, cp); ok {
		c, err := d.charAt(i)
		if err != nil {
			return nil, nil, nil, err
		}
		char = &c
	}
	var aliases []puaa.NameAlias
	i := sort.Search(d.nAliases, func(i int) bool {
		acp, _ := d.aliasEntry(i)
		return acp >= cp
	})
	if i < d.nAliases {
		if acp, _ := d.aliasEntry(i); acp == cp {
			var err error
			if aliases, err = d.aliasesAt(i); err != nil {
				return nil, nil, nil, err
			}
		}
	}
	return block, char, aliases, nil
}

// searchRanges finds the index entry whose range contains cp.
func (d *Decoded) searchRanges(base uint32, n int, cp rune) (int, bool) {
	i := sort.Search(n, func(i int) bool {
		_, hi, _ := d.rangeEntry(base, i)
		return hi >= cp
	})
	if i < n {
		if lo, hi, _ := d.rangeEntry(base, i); lo <= cp && cp <= hi {
			return i, true
		}
	}
	return 0, false
}

// Extra materializes generic property section i.
func (d *Decoded) Extra(i int) (puaa.GenericSection, error) {
	if i < 0 || i >= d.nExtras {
		return puaa.GenericSection{}, corrupt("extra section %d of %d", i, d.nExtras)
	}
	fileRef, count, indexOff := d.extraDirEntry(i)
	file, err := d.string(fileRef)
	if err != nil {
		return puaa.GenericSection{}, err
	}
	sec := puaa.GenericSection{File: file, Entries: make([]puaa.GenericEntry, count)}
	for j := uint32(0); j < count; j++ {
		off := indexOff + j*rangeEntrySize
		lo, hi, payload := rune(d.u32(off)), rune(d.u32(off+4)), d.u32(off+8)
		r, err := d.payload(payload)
		if err != nil {
			return sec, err
		}
		n, err := r.u16()
		if err != nil {
			return sec, err
		}
		fields := make([]string, n)
		for k := range fields {
			if fields[k], err = r.str(); err != nil {
				return sec, err
			}
		}
		sec.Entries[j] = puaa.GenericEntry{
			Range:  puaa.Range{Lo: lo, Hi: hi},
			Fields: fields,
		}
	}
	return sec, nil
}

// Blocks returns a restartable iterator over block ranges in ascending
// order.
func (d *Decoded) Blocks() *BlockIter { return &BlockIter{d: d} }

// BlockIter iterates block ranges. Usage follows the bufio.Scanner
// pattern: Next, then Block, then Err after the loop.
type BlockIter struct {
	d   *Decoded
	i   int
	cur puaa.Block
	err error
}

func (it *BlockIter) Next() bool {
	if it.err != nil || it.i >= it.d.nBlocks {
		return false
	}
	it.cur, it.err = it.d.blockAt(it.i)
	it.i++
	return it.err == nil
}

func (it *BlockIter) Block() puaa.Block { return it.cur }
func (it *BlockIter) Err() error        { return it.err }

// Chars returns a restartable iterator over character records in
// ascending order.
func (d *Decoded) Chars() *CharIter { return &CharIter{d: d} }

// CharIter iterates character records.
type CharIter struct {
	d   *Decoded
	i   int
	cur puaa.CharRecord
	err error
}

func (it *CharIter) Next() bool {
	if it.err != nil || it.i >= it.d.nChars {
		return false
	}
	it.cur, it.err = it.d.charAt(it.i)
	it.i++
	return it.err == nil
}

func (it *CharIter) Char() puaa.CharRecord { return it.cur }
func (it *CharIter) Err() error            { return it.err }

// Aliases returns a restartable iterator over name aliases in ascending
// codepoint order.
func (d *Decoded) Aliases() *AliasIter { return &AliasIter{d: d} }

// AliasIter iterates name aliases, one alias at a time.
type AliasIter struct {
	d     *Decoded
	i     int
	group []puaa.NameAlias
	j     int
	err   error
}

func (it *AliasIter) Next() bool {
	if it.err != nil {
		return false
	}
	for it.j >= len(it.group) {
		if it.i >= it.d.nAliases {
			return false
		}
		it.group, it.err = it.d.aliasesAt(it.i)
		it.i++
		it.j = 0
		if it.err != nil {
			return false
		}
	}
	it.j++
	return true
}

func (it *AliasIter) Alias() puaa.NameAlias { return it.group[it.j-1] }
func (it *AliasIter) Err() error            { return it.err }

// Table materializes the whole decoded table. Origins are not part of the
// encoding and stay zero.
func (d *Decoded) Table() (*puaa.Table, error) {
	t := &puaa.Table{Profile: d.profile}
	t.Blocks = make([]puaa.Block, 0, d.nBlocks)
	blocks := d.Blocks()
	for blocks.Next() {
		t.Blocks = append(t.Blocks, blocks.Block())
	}
	if err := blocks.Err(); err != nil {
		return nil, err
	}
	t.Chars = make([]puaa.CharRecord, 0, d.nChars)
	chars := d.Chars()
	for chars.Next() {
		t.Chars = append(t.Chars, chars.Char())
	}
	if err := chars.Err(); err != nil {
		return nil, err
	}
	aliases := d.Aliases()
	for aliases.Next() {
		t.Aliases = append(t.Aliases, aliases.Alias())
	}
	if err := aliases.Err(); err != nil {
		return nil, err
	}
	for i := 0; i < d.nExtras; i++ {
		sec, err := d.Extra(i)
		if err != nil {
			return nil, err
		}
		t.Extras = append(t.Extras, sec)
	}
	return t, nil
}

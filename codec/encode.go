package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/npillmayer/puaa"
)

// stringPool deduplicates strings during encoding. Strings are stored in
// first-encounter order as a length-prefixed run of bytes; references are
// offsets into the pool. Pool entries carry a 16-bit length, so a single
// string is capped at 64 KiB; an overflow is latched and surfaced by
// Encode.
type stringPool struct {
	idx map[string]uint32
	buf bytes.Buffer
	err error
}

func newStringPool() *stringPool {
	return &stringPool{idx: make(map[string]uint32)}
}

// ref interns s and returns its reference. The empty string maps to the
// absent-string reference.
func (p *stringPool) ref(s string) uint32 {
	if s == "" {
		return noString
	}
	if off, ok := p.idx[s]; ok {
		return off
	}
	if len(s) > math.MaxUint16 {
		if p.err == nil {
			p.err = fmt.Errorf("string of %d bytes exceeds the %d-byte pool entry limit",
				len(s), math.MaxUint16)
		}
		return noString
	}
	off := uint32(p.buf.Len())
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(s)))
	p.buf.Write(l[:])
	p.buf.WriteString(s)
	p.idx[s] = off
	return off
}

func putU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// aliasGroup folds all aliases of one codepoint into one index entry.
type aliasGroup struct {
	cp      rune
	aliases []puaa.NameAlias
}

func groupAliases(aliases []puaa.NameAlias) []aliasGroup {
	var groups []aliasGroup
	for _, a := range aliases {
		if n := len(groups); n > 0 && groups[n-1].cp == a.Codepoint {
			groups[n-1].aliases = append(groups[n-1].aliases, a)
			continue
		}
		groups = append(groups, aliasGroup{cp: a.Codepoint, aliases: []puaa.NameAlias{a}})
	}
	return groups
}

// Encode serializes a merged table into its binary form. Encoding is
// deterministic: record order comes from the table's canonical sort and
// the string pool is keyed by first encounter. A string field longer
// than 64 KiB cannot be represented and is an error.
func Encode(t *puaa.Table) ([]byte, error) {
	pool := newStringPool()
	var payload bytes.Buffer

	blockOffs := make([]uint32, len(t.Blocks))
	for i, b := range t.Blocks {
		blockOffs[i] = uint32(payload.Len())
		putU32(&payload, pool.ref(b.Name))
	}

	charOffs := make([]uint32, len(t.Chars))
	for i := range t.Chars {
		charOffs[i] = uint32(payload.Len())
		encodeChar(&payload, pool, &t.Chars[i])
	}

	groups := groupAliases(t.Aliases)
	aliasOffs := make([]uint32, len(groups))
	for i, g := range groups {
		aliasOffs[i] = uint32(payload.Len())
		putU16(&payload, uint16(len(g.aliases)))
		for _, a := range g.aliases {
			putU32(&payload, pool.ref(a.Alias))
			payload.WriteByte(uint8(a.Type))
		}
	}

	extraOffs := make([][]uint32, len(t.Extras))
	fileRefs := make([]uint32, len(t.Extras))
	extraEntries := 0
	for i, sec := range t.Extras {
		fileRefs[i] = pool.ref(sec.File)
		extraOffs[i] = make([]uint32, len(sec.Entries))
		extraEntries += len(sec.Entries)
		for j, e := range sec.Entries {
			extraOffs[i][j] = uint32(payload.Len())
			putU16(&payload, uint16(len(e.Fields)))
			for _, f := range e.Fields {
				putU32(&payload, pool.ref(f))
			}
		}
	}

	if pool.err != nil {
		return nil, pool.err
	}

	blockIndexOff := uint32(headerSize)
	charIndexOff := blockIndexOff + uint32(rangeEntrySize*len(t.Blocks))
	aliasIndexOff := charIndexOff + uint32(rangeEntrySize*len(t.Chars))
	extraDirOff := aliasIndexOff + uint32(aliasEntrySize*len(groups))
	extraIndexOff := extraDirOff + uint32(extraDirSize*len(t.Extras))
	payloadOff := extraIndexOff + uint32(rangeEntrySize*extraEntries)
	stringsOff := payloadOff + uint32(payload.Len())
	totalLen := stringsOff + uint32(pool.buf.Len())

	out := bytes.NewBuffer(make([]byte, 0, totalLen))
	out.Write(magic[:])
	putU16(out, version)
	out.WriteByte(uint8(t.Profile))
	out.WriteByte(0)
	putU32(out, uint32(len(t.Blocks)))
	putU32(out, uint32(len(t.Chars)))
	putU32(out, uint32(len(groups)))
	putU32(out, uint32(len(t.Extras)))
	putU32(out, blockIndexOff)
	putU32(out, charIndexOff)
	putU32(out, aliasIndexOff)
	putU32(out, extraDirOff)
	putU32(out, payloadOff)
	putU32(out, uint32(payload.Len()))
	putU32(out, stringsOff)
	putU32(out, uint32(pool.buf.Len()))
	putU32(out, totalLen)
	out.Write(make([]byte, headerSize-out.Len()))

	for i, b := range t.Blocks {
		putU32(out, uint32(b.Lo))
		putU32(out, uint32(b.Hi))
		putU32(out, blockOffs[i])
	}
	for i := range t.Chars {
		putU32(out, uint32(t.Chars[i].Lo))
		putU32(out, uint32(t.Chars[i].Hi))
		putU32(out, charOffs[i])
	}
	for i, g := range groups {
		putU32(out, uint32(g.cp))
		putU32(out, aliasOffs[i])
	}
	indexOff := extraIndexOff
	for i, sec := range t.Extras {
		putU32(out, fileRefs[i])
		putU32(out, uint32(len(sec.Entries)))
		putU32(out, indexOff)
		indexOff += uint32(rangeEntrySize * len(sec.Entries))
	}
	for i, sec := range t.Extras {
		for j, e := range sec.Entries {
			putU32(out, uint32(e.Lo))
			putU32(out, uint32(e.Hi))
			putU32(out, extraOffs[i][j])
		}
	}
	out.Write(payload.Bytes())
	out.Write(pool.buf.Bytes())

	tracer().Debugf("encoded %s table: %d bytes, %d strings pooled",
		t.Profile, out.Len(), len(pool.idx))
	return out.Bytes(), nil
}

func encodeChar(buf *bytes.Buffer, pool *stringPool, c *puaa.CharRecord) {
	var flags uint8
	if c.Mirrored {
		flags |= flagMirrored
	}
	if !c.Decomp.IsZero() {
		flags |= flagDecomp
	}
	if c.Numeric.Type != puaa.NumNone {
		flags |= flagNumeric
	}
	if c.Unicode1Name != "" {
		flags |= flagU1Name
	}
	if c.ISOComment != "" {
		flags |= flagISOComment
	}
	if c.Upper != puaa.NoCodepoint {
		flags |= flagUpper
	}
	if c.Lower != puaa.NoCodepoint {
		flags |= flagLower
	}
	if c.Title != puaa.NoCodepoint {
		flags |= flagTitle
	}
	buf.WriteByte(flags)
	buf.WriteByte(uint8(c.Category))
	buf.WriteByte(c.CombiningClass)
	buf.WriteByte(uint8(c.Bidi))
	putU32(buf, pool.ref(c.Name))
	if flags&flagDecomp != 0 {
		putU32(buf, pool.ref(c.Decomp.Tag))
		putU16(buf, uint16(len(c.Decomp.Mapping)))
		for _, cp := range c.Decomp.Mapping {
			putU32(buf, uint32(cp))
		}
	}
	if flags&flagNumeric != 0 {
		buf.WriteByte(uint8(c.Numeric.Type))
		putU32(buf, pool.ref(c.Numeric.Value))
	}
	if flags&flagU1Name != 0 {
		putU32(buf, pool.ref(c.Unicode1Name))
	}
	if flags&flagISOComment != 0 {
		putU32(buf, pool.ref(c.ISOComment))
	}
	if flags&flagUpper != 0 {
		putU32(buf, uint32(c.Upper))
	}
	if flags&flagLower != 0 {
		putU32(buf, uint32(c.Lower))
	}
	if flags&flagTitle != 0 {
		putU32(buf, uint32(c.Title))
	}
}

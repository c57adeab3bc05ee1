/*
Package sfnt reads and writes sfnt font containers (TrueType and
OpenType) to the extent needed for carrying a character-property table
as an extra font table.

Content

An sfnt file is a 12-byte header, a directory of 16-byte table entries
sorted by tag, and the table data, each table padded to a 4-byte
boundary. The package parses a container into its tables, lets callers
add, replace or remove tables by tag, and serializes the result with
per-table checksums, recomputed search parameters, and the head table's
checkSumAdjustment restored so that the whole file sums to 0xB1B0AFBA.

Integrity is enforced on load: directory entries are bounds-checked and,
when a head table is present, the whole-file checksum is validated, so a
damaged font is rejected before any output is written.

______________________________________________________________________

License

This project is provided under the terms of the UNLICENSE or
the 3-Clause BSD license denoted by the following SPDX identifier:

SPDX-License-Identifier: 'Unlicense' OR 'BSD-3-Clause'

You may use the project under the terms of either license.

Licenses are reproduced in the license file in the root folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package sfnt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to puaa.sfnt .
func tracer() tracing.Trace {
	return tracing.Select("puaa.sfnt")
}

// Accepted scaler types.
const (
	ScalerTrueType uint32 = 0x00010000
	ScalerTrue     uint32 = 0x74727565 // 'true'
	ScalerOTTO     uint32 = 0x4F54544F // 'OTTO'
)

// checksumMagic is what a whole sfnt file sums to when the head table's
// checkSumAdjustment is set correctly.
const checksumMagic uint32 = 0xB1B0AFBA

// adjustmentOffset locates checkSumAdjustment within the head table.
const adjustmentOffset = 8

var (
	// ErrUnsupportedContainer flags a file that is not an sfnt container
	// of a known scaler type.
	ErrUnsupportedContainer = errors.New("unsupported font container")
	// ErrCorruptFont flags structural damage, e.g. a directory entry
	// pointing outside the file.
	ErrCorruptFont = errors.New("corrupt font")
	// ErrTableTooLarge flags a table or file offset that does not fit the
	// 32-bit fields of the sfnt directory.
	ErrTableTooLarge = errors.New("table too large for sfnt container")
)

// ChecksumError reports a whole-file checksum mismatch against the head
// table's checkSumAdjustment.
type ChecksumError struct {
	Want, Got uint32
}

func (e ChecksumError) Error() string {
	return fmt.Sprintf("font checksum mismatch: file sums to %08X, want %08X", e.Got, e.Want)
}

// Font is a parsed sfnt container: a scaler type plus its tables.
type Font struct {
	Scaler uint32
	tables []table
}

type table struct {
	tag  string // 4 bytes
	data []byte
}

// Parse reads an sfnt container. Directory entries are bounds-checked
// and, when a head table is present, the whole-file checksum is
// validated.
func Parse(data []byte) (*Font, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("%w: %d bytes", ErrUnsupportedContainer, len(data))
	}
	scaler := binary.BigEndian.Uint32(data[0:4])
	switch scaler {
	case ScalerTrueType, ScalerTrue, ScalerOTTO:
	default:
		return nil, fmt.Errorf("%w: scaler %08X", ErrUnsupportedContainer, scaler)
	}
	numTables := int(binary.BigEndian.Uint16(data[4:6]))
	dirEnd := 12 + 16*numTables
	if dirEnd > len(data) {
		return nil, fmt.Errorf("%w: directory of %d tables exceeds file", ErrCorruptFont, numTables)
	}
	f := &Font{Scaler: scaler}
	hasHead := false
	for i := 0; i < numTables; i++ {
		entry := data[12+16*i:]
		tag := string(entry[0:4])
		offset := binary.BigEndian.Uint32(entry[8:12])
		length := binary.BigEndian.Uint32(entry[12:16])
		if uint64(offset)+uint64(length) > uint64(len(data)) {
			return nil, fmt.Errorf("%w: table %q [%d +%d] exceeds file", ErrCorruptFont, tag, offset, length)
		}
		if tag == "head" {
			if length < adjustmentOffset+4 {
				return nil, fmt.Errorf("%w: head table of %d bytes", ErrCorruptFont, length)
			}
			hasHead = true
		}
		f.tables = append(f.tables, table{tag: tag, data: data[offset : offset+length]})
	}
	if hasHead {
		if got := checksum(data); got != checksumMagic {
			return nil, ChecksumError{Want: checksumMagic, Got: got}
		}
	}
	tracer().Debugf("parsed sfnt container: scaler %08X, %d tables", scaler, numTables)
	return f, nil
}

// Table returns the data of the table with the given tag.
func (f *Font) Table(tag string) ([]byte, bool) {
	for _, t := range f.tables {
		if t.tag == tag {
			return t.data, true
		}
	}
	return nil, false
}

// SetTable adds or replaces a table.
func (f *Font) SetTable(tag string, data []byte) {
	for i := range f.tables {
		if f.tables[i].tag == tag {
			f.tables[i].data = data
			return
		}
	}
	f.tables = append(f.tables, table{tag: tag, data: data})
}

// DeleteTable removes a table, reporting whether it was present.
func (f *Font) DeleteTable(tag string) bool {
	for i := range f.tables {
		if f.tables[i].tag == tag {
			f.tables = append(f.tables[:i], f.tables[i+1:]...)
			return true
		}
	}
	return false
}

// Tags returns the table tags in directory order.
func (f *Font) Tags() []string {
	tags := make([]string, len(f.tables))
	for i, t := range f.tables {
		tags[i] = t.tag
	}
	sort.Strings(tags)
	return tags
}

// Bytes serializes the container: directory sorted by tag, table data
// 4-byte padded, per-table checksums and search parameters recomputed,
// and the head table's checkSumAdjustment set so that the file sums to
// 0xB1B0AFBA.
func (f *Font) Bytes() ([]byte, error) {
	tables := make([]table, len(f.tables))
	copy(tables, f.tables)
	sort.Slice(tables, func(i, j int) bool { return tables[i].tag < tables[j].tag })

	offset := uint64(12 + 16*len(tables))
	for _, t := range tables {
		if uint64(len(t.data)) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: table %q has %d bytes", ErrTableTooLarge, t.tag, len(t.data))
		}
		offset += padded(uint64(len(t.data)))
	}
	if offset > math.MaxUint32 {
		return nil, fmt.Errorf("%w: file of %d bytes", ErrTableTooLarge, offset)
	}

	out := make([]byte, offset)
	binary.BigEndian.PutUint32(out[0:4], f.Scaler)
	binary.BigEndian.PutUint16(out[4:6], uint16(len(tables)))
	searchRange, entrySelector, rangeShift := searchParams(len(tables))
	binary.BigEndian.PutUint16(out[6:8], searchRange)
	binary.BigEndian.PutUint16(out[8:10], entrySelector)
	binary.BigEndian.PutUint16(out[10:12], rangeShift)

	headOffset := uint32(0)
	pos := uint32(12 + 16*len(tables))
	for i, t := range tables {
		end := pos + uint32(len(t.data))
		copy(out[pos:end], t.data)
		if t.tag == "head" {
			headOffset = pos
			// checksummed with a zero adjustment, restored below
			binary.BigEndian.PutUint32(out[pos+adjustmentOffset:pos+adjustmentOffset+4], 0)
		}
		entry := out[12+16*i:]
		copy(entry[0:4], t.tag)
		binary.BigEndian.PutUint32(entry[4:8], checksum(out[pos:pos+uint32(padded(uint64(len(t.data))))]))
		binary.BigEndian.PutUint32(entry[8:12], pos)
		binary.BigEndian.PutUint32(entry[12:16], uint32(len(t.data)))
		pos += uint32(padded(uint64(len(t.data))))
	}
	if headOffset != 0 {
		adjustment := checksumMagic - checksum(out)
		binary.BigEndian.PutUint32(out[headOffset+adjustmentOffset:headOffset+adjustmentOffset+4], adjustment)
	}
	return out, nil
}

func padded(n uint64) uint64 {
	return (n + 3) &^ 3
}

// searchParams computes the binary-search helper fields of the sfnt
// header for n tables.
func searchParams(n int) (searchRange, entrySelector, rangeShift uint16) {
	sr, es := 1, 0
	for sr*2 <= n {
		sr *= 2
		es++
	}
	sr *= 16
	return uint16(sr), uint16(es), uint16(n*16 - sr)
}

// checksum sums a byte run as big-endian uint32 words, a short final
// word padded with zeros.
func checksum(data []byte) uint32 {
	var sum uint32
	i := 0
	for ; i+4 <= len(data); i += 4 {
		sum += binary.BigEndian.Uint32(data[i : i+4])
	}
	if i < len(data) {
		var last [4]byte
		copy(last[:], data[i:])
		sum += binary.BigEndian.Uint32(last[:])
	}
	return sum
}

/*
Package codec encodes merged property tables into their compact binary
form and reads them back.

Content

The wire format is a single binary blob, self-contained and position
independent, suitable both for standalone table files and for embedding
as an sfnt font table. All integers are big-endian. The blob starts with
a fixed 64-byte header followed by four sorted range indexes (blocks,
character records, name aliases, generic property entries), a payload
pool of variable-length records, and a deduplicated string pool.

Lookup works directly on the encoded bytes: Decode validates the blob
and returns a Decoded handle whose Lookup binary-searches the indexes
without materializing the table. Encoding is deterministic, the same
Table always yields the same bytes.

______________________________________________________________________

License

This project is provided under the terms of the UNLICENSE or
the 3-Clause BSD license denoted by the following SPDX identifier:

SPDX-License-Identifier: 'Unlicense' OR 'BSD-3-Clause'

You may use the project under the terms of either license.

Licenses are reproduced in the license file in the root folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package codec

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to puaa.codec .
func tracer() tracing.Trace {
	return tracing.Select("puaa.codec")
}

// Errors returned by Decode. Both are sentinels, callers test with
// errors.Is; the returned error wraps them with positional detail.
var (
	ErrUnsupportedVersion = errors.New("unsupported table version")
	ErrCorruptTable       = errors.New("corrupt table")
)

// Format constants.
const (
	headerSize = 64
	version    = 1

	rangeEntrySize = 12 // lo u32 | hi u32 | payload u32
	aliasEntrySize = 8  // cp u32 | payload u32
	extraDirSize   = 12 // file sref | entryCount u32 | indexOff u32

	// noString is the string reference of an absent string.
	noString = 0xFFFFFFFF
)

var magic = [4]byte{'U', 'C', 'P', 'T'}

// Character payload flag bits. Each optional payload group is present
// iff its bit is set; mirrored has no payload group.
const (
	flagMirrored uint8 = 1 << iota
	flagDecomp
	flagNumeric
	flagU1Name
	flagISOComment
	flagUpper
	flagLower
	flagTitle
)

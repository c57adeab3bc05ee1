/*
Package puaa compiles Unicode Character Database text tables into compact
binary character-property tables, suitable for embedding into font files.

Description

Font editors and character-map viewers need per-codepoint property
information (names, categories, case mappings, block assignments) for
characters a font assigns to the Private Use Area. The Unicode Character
Database (UCD) publishes this information as a set of semicolon-delimited
text tables, the format of which is defined in UAX#44
(http://www.unicode.org/reports/tr44/). This module reads such tables,
merges records contributed by multiple sources, and encodes them into a
single randomly-seekable binary artifact that may be written to disk or
embedded into an sfnt font container as a custom 'PUAA' table.

The base package holds the data model shared by all stages: codepoint
ranges, block records, character records, name aliases, and the merged
Table. It also implements the record merger. Parsing lives in sub-package
ucd, the binary encoding in sub-package codec, font-container handling in
sub-package sfnt, and pipeline orchestration in sub-package compile.

Sources are ordered; a later source may redefine a range a previous source
defined, as long as both agree on the exact range boundaries. Partially
overlapping ranges from different sources are rejected, since there is no
safe way to split a property record.

______________________________________________________________________

License

This project is provided under the terms of the UNLICENSE or
the 3-Clause BSD license denoted by the following SPDX identifier:

SPDX-License-Identifier: 'Unlicense' OR 'BSD-3-Clause'

You may use the project under the terms of either license.

Licenses are reproduced in the license file in the root folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package puaa

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to puaa.core .
func tracer() tracing.Trace {
	return tracing.Select("puaa.core")
}

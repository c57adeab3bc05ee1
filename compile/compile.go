/*
Package compile drives the table compilation pipeline: parse the selected
sources, merge them in precedence order, encode the result, and write the
blob to a file or embed it into a font.

______________________________________________________________________

License

This project is provided under the terms of the UNLICENSE or
the 3-Clause BSD license denoted by the following SPDX identifier:

SPDX-License-Identifier: 'Unlicense' OR 'BSD-3-Clause'

You may use the project under the terms of either license.

Licenses are reproduced in the license file in the root folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package compile

import (
	"os"

	"github.com/npillmayer/puaa"
	"github.com/npillmayer/puaa/codec"
	"github.com/npillmayer/puaa/internal/atomicfile"
	"github.com/npillmayer/puaa/sfnt"
	"github.com/npillmayer/puaa/ucd"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to puaa.compile .
func tracer() tracing.Trace {
	return tracing.Select("puaa.compile")
}

// Spec selects one source input: either a release directory, read
// recursively, or an explicit list of files. Specs merge in list order,
// later specs take precedence on exact range collision.
type Spec struct {
	Dir   string
	Files []string
}

// Blob parses and merges all specs for the given profile and returns the
// encoded table.
func Blob(profile puaa.Profile, specs []Spec) ([]byte, error) {
	sources := make([]*puaa.SourceSet, 0, len(specs))
	for _, spec := range specs {
		var set *puaa.SourceSet
		var err error
		if spec.Dir != "" {
			set, err = ucd.ParseDir(spec.Dir, profile)
		} else {
			set, err = ucd.ParseFiles(spec.Files, profile)
		}
		if err != nil {
			return nil, err
		}
		sources = append(sources, set)
	}
	table, err := puaa.Merge(profile, sources...)
	if err != nil {
		return nil, err
	}
	return codec.Encode(table)
}

// Compile builds a table from the specs and writes it to out atomically.
func Compile(out string, profile puaa.Profile, specs []Spec) error {
	blob, err := Blob(profile, specs)
	if err != nil {
		return err
	}
	tracer().Infof("writing %d-byte %s table to %s", len(blob), profile, out)
	return atomicfile.WriteFile(out, blob, 0644)
}

// CompileInto builds a table from the specs and embeds it into the font
// at fontPath, writing the combined font to out atomically.
func CompileInto(out string, fontPath string, profile puaa.Profile, specs []Spec) error {
	blob, err := Blob(profile, specs)
	if err != nil {
		return err
	}
	return sfnt.Embed(fontPath, blob, out)
}

// Exists reports whether a regular file exists at path. Build drivers use
// it to skip recompilation when the output is already present.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

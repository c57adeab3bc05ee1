/*
Package ucd parses Unicode Character Database text tables.

Content

The UCD publishes character properties as line-oriented text files, the
format of which is defined in http://www.unicode.org/reports/tr44/. This
package reads the files a property-table compilation consumes: block-range
files (Blocks.txt), per-codepoint property files (UnicodeData.txt,
NameAliases.txt), annotated source fragments carrying @flag/@file
directives, and, for Full-profile compilations, arbitrary other property
files, read generically as a range key plus an ordered field list.

Parsing is strict. A line that does not satisfy the grammar of its file
kind rejects the whole file with a MalformedSourceError naming file and
line, because structurally invalid UCD data cannot be safely merged.

______________________________________________________________________

License

This project is provided under the terms of the UNLICENSE or
the 3-Clause BSD license denoted by the following SPDX identifier:

SPDX-License-Identifier: 'Unlicense' OR 'BSD-3-Clause'

You may use the project under the terms of either license.

Licenses are reproduced in the license file in the root folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package ucd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/puaa"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to puaa.ucd .
func tracer() tracing.Trace {
	return tracing.Select("puaa.ucd")
}

// MalformedSourceError reports an input line that does not satisfy the
// grammar of its file kind. The whole source file is rejected; the parser
// does not attempt recovery.
type MalformedSourceError struct {
	File   string
	Line   int
	Reason string
}

func (e MalformedSourceError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

func malformed(tok *Token, format string, args ...interface{}) error {
	return MalformedSourceError{
		File:   tok.File,
		Line:   tok.Line,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Kind is the logical kind of a source file, which selects its grammar.
type Kind uint8

// Source file kinds.
const (
	KindUnknown Kind = iota
	KindBlocks
	KindUnicodeData
	KindNameAliases
	KindGeneric  // any other UAX#44-style property file
	KindFragment // annotated multi-target fragment (@flag/@file)
)

// DetectKind determines a file's kind from its base name, matching the
// case-insensitive file name conventions of UCD releases.
func DetectKind(path string) Kind {
	switch strings.ToLower(filepath.Base(path)) {
	case "blocks.txt":
		return KindBlocks
	case "unicodedata.txt":
		return KindUnicodeData
	case "namealiases.txt":
		return KindNameAliases
	}
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return KindGeneric
	}
	return KindUnknown
}

// wantsKind gates file kinds per compilation profile.
func wantsKind(profile puaa.Profile, kind Kind) bool {
	switch kind {
	case KindBlocks, KindUnicodeData, KindFragment:
		return true
	case KindNameAliases:
		return profile == puaa.Names || profile == puaa.Full
	case KindGeneric:
		return profile == puaa.Full
	}
	return false
}

// ParseDir reads all recognized files under a release directory into one
// SourceSet. Dotfiles are skipped, subdirectories are descended into, and
// the profile decides which file kinds participate.
func ParseDir(dir string, profile puaa.Profile) (*puaa.SourceSet, error) {
	set := &puaa.SourceSet{}
	if err := parseDirInto(set, dir, profile); err != nil {
		return nil, err
	}
	return set, nil
}

func parseDirInto(set *puaa.SourceSet, dir string, profile puaa.Profile) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := parseDirInto(set, path, profile); err != nil {
				return err
			}
			continue
		}
		kind := DetectKind(path)
		if kind == KindUnknown || !wantsKind(profile, kind) {
			continue
		}
		if err := parseFileInto(set, path, kind); err != nil {
			return err
		}
	}
	return nil
}

// ParseFiles reads an explicit list of files into one SourceSet. Files are
// parsed in list order. A file whose first data line starts with '@' is
// treated as an annotated fragment regardless of its name; otherwise the
// kind is detected from the file name.
func ParseFiles(paths []string, profile puaa.Profile) (*puaa.SourceSet, error) {
	set := &puaa.SourceSet{}
	for _, path := range paths {
		kind := DetectKind(path)
		isFragment, err := sniffFragment(path)
		if err != nil {
			return nil, err
		}
		if isFragment {
			kind = KindFragment
		}
		if kind == KindUnknown {
			kind = KindGeneric
		}
		if !wantsKind(profile, kind) {
			continue
		}
		if err := parseFileInto(set, path, kind); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// sniffFragment peeks at the first non-blank, non-comment line.
func sniffFragment(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	in := bufio.NewScanner(f)
	for in.Scan() {
		line := strings.TrimSpace(stripComment(in.Text()))
		if line == "" {
			continue
		}
		return strings.HasPrefix(line, "@"), nil
	}
	return false, in.Err()
}

func parseFileInto(set *puaa.SourceSet, path string, kind Kind) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return parseReaderInto(set, path, f, kind)
}

// parseReaderInto dispatches one input stream to the grammar of its kind.
// The path is used for error reporting and, for generic files, as the
// section key.
func parseReaderInto(set *puaa.SourceSet, path string, r io.Reader, kind Kind) error {
	tracer().Debugf("parsing %s as %v", path, kind)
	sc := newScanner(path, r)
	switch kind {
	case KindBlocks:
		return parseBlocks(sc, set)
	case KindUnicodeData:
		return parseUnicodeData(sc, set)
	case KindNameAliases:
		return parseNameAliases(sc, set)
	case KindGeneric:
		return parseGeneric(sc, set, filepath.Base(path))
	case KindFragment:
		return parseFragment(sc, set)
	}
	return fmt.Errorf("ucd: no grammar for file kind %d", kind)
}

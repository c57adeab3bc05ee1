package puaa_test

import (
	"errors"
	"testing"

	"github.com/npillmayer/puaa"
	"github.com/npillmayer/schuko/testconfig"
)

func block(lo, hi rune, name string) puaa.Block {
	return puaa.Block{Range: puaa.Range{Lo: lo, Hi: hi}, Name: name}
}

func char(lo, hi rune, name string, cat puaa.Category) puaa.CharRecord {
	return puaa.CharRecord{
		Range:    puaa.Range{Lo: lo, Hi: hi},
		Name:     name,
		Category: cat,
		Upper:    puaa.NoCodepoint,
		Lower:    puaa.NoCodepoint,
		Title:    puaa.NoCodepoint,
	}
}

func alias(cp rune, a string, typ puaa.AliasType) puaa.NameAlias {
	return puaa.NameAlias{Codepoint: cp, Alias: a, Type: typ}
}

func TestMergeOverride(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	base := &puaa.SourceSet{Blocks: []puaa.Block{block(0x100, 0x1FF, "Old Name")}}
	next := &puaa.SourceSet{Blocks: []puaa.Block{block(0x100, 0x1FF, "New Name")}}
	table, err := puaa.Merge(puaa.Min, base, next)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(table.Blocks))
	}
	if table.Blocks[0].Name != "New Name" {
		t.Errorf("later source should win, got %q", table.Blocks[0].Name)
	}
}

func TestMergeConflict(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	base := &puaa.SourceSet{Blocks: []puaa.Block{block(0x100, 0x1FF, "A")}}
	next := &puaa.SourceSet{Blocks: []puaa.Block{block(0x180, 0x27F, "B")}}
	_, err := puaa.Merge(puaa.Min, base, next)
	var conflict puaa.ConflictingRangeError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictingRangeError, got %v", err)
	}
	if conflict.Kind != "block" {
		t.Errorf("conflict kind should be block, is %q", conflict.Kind)
	}
}

func TestMergeCharConflict(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	base := &puaa.SourceSet{Chars: []puaa.CharRecord{char(0x4E00, 0x9FFF, "<CJK>", puaa.Lo)}}
	next := &puaa.SourceSet{Chars: []puaa.CharRecord{char(0x9000, 0x9000, "X", puaa.Lo)}}
	if _, err := puaa.Merge(puaa.Min, base, next); err == nil {
		t.Error("partial overlap inside a range record should be rejected")
	}
}

func TestMergeCanonicalOrder(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	src := &puaa.SourceSet{
		Blocks: []puaa.Block{
			block(0xE000, 0xF8FF, "Private Use Area"),
			block(0x0000, 0x007F, "Basic Latin"),
			block(0x4E00, 0x9FFF, "CJK Unified Ideographs"),
		},
	}
	table, err := puaa.Merge(puaa.Min, src)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(table.Blocks); i++ {
		if table.Blocks[i-1].Lo >= table.Blocks[i].Lo {
			t.Errorf("blocks not in ascending order at %d: %s before %s",
				i, table.Blocks[i-1].Range, table.Blocks[i].Range)
		}
	}
}

func TestMergeAliasDedup(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	a := &puaa.SourceSet{Aliases: []puaa.NameAlias{
		alias(0x000A, "LINE FEED", puaa.ControlAlias),
		alias(0x0000, "NULL", puaa.ControlAlias),
	}}
	b := &puaa.SourceSet{Aliases: []puaa.NameAlias{
		alias(0x0000, "NULL", puaa.ControlAlias), // exact duplicate
		alias(0x0000, "NUL", puaa.Abbreviation),
	}}
	table, err := puaa.Merge(puaa.Names, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Aliases) != 3 {
		t.Fatalf("expected 3 aliases after dedup, got %d", len(table.Aliases))
	}
	if table.Aliases[0].Alias != "NULL" || table.Aliases[1].Alias != "NUL" {
		t.Errorf("aliases of one codepoint should keep insertion order: %v", table.Aliases)
	}
	if table.Aliases[2].Codepoint != 0x000A {
		t.Errorf("aliases should be sorted by codepoint: %v", table.Aliases)
	}
}

func TestMergeProfileSelection(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	src := &puaa.SourceSet{
		Blocks:  []puaa.Block{block(0x0000, 0x007F, "Basic Latin")},
		Aliases: []puaa.NameAlias{alias(0x0000, "NULL", puaa.ControlAlias)},
		Extras: []puaa.GenericSection{{
			File: "LineBreak.txt",
			Entries: []puaa.GenericEntry{
				{Range: puaa.Range{Lo: 0x28, Hi: 0x28}, Fields: []string{"OP"}},
			},
		}},
	}
	min, err := puaa.Merge(puaa.Min, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(min.Aliases) != 0 || len(min.Extras) != 0 {
		t.Error("min profile should drop aliases and extras")
	}
	names, err := puaa.Merge(puaa.Names, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(names.Aliases) != 1 || len(names.Extras) != 0 {
		t.Error("names profile should keep aliases but drop extras")
	}
	full, err := puaa.Merge(puaa.Full, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(full.Aliases) != 1 || len(full.Extras) != 1 {
		t.Error("full profile should keep everything")
	}
}

func TestMergeExtrasPerProperty(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	entry := func(lo, hi rune, prop string) puaa.GenericEntry {
		return puaa.GenericEntry{Range: puaa.Range{Lo: lo, Hi: hi}, Fields: []string{prop}}
	}
	// distinct properties of one file may cover overlapping ranges
	src := &puaa.SourceSet{Extras: []puaa.GenericSection{{
		File: "PropList.txt",
		Entries: []puaa.GenericEntry{
			entry(0x0020, 0x0020, "White_Space"),
			entry(0x0009, 0x0020, "Pattern_White_Space"),
		},
	}}}
	table, err := puaa.Merge(puaa.Full, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Extras) != 1 || len(table.Extras[0].Entries) != 2 {
		t.Fatalf("expected one section with 2 entries, got %+v", table.Extras)
	}
	if table.Extras[0].Entries[0].Lo != 0x0009 {
		t.Error("section entries should be sorted by range start")
	}
	// the same property must still be disjoint
	src = &puaa.SourceSet{Extras: []puaa.GenericSection{{
		File: "PropList.txt",
		Entries: []puaa.GenericEntry{
			entry(0x0009, 0x0020, "White_Space"),
			entry(0x0020, 0x0030, "White_Space"),
		},
	}}}
	if _, err = puaa.Merge(puaa.Full, src); err == nil {
		t.Error("partial overlap within one property should be rejected")
	}
}

package compile_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/puaa"
	"github.com/npillmayer/puaa/codec"
	"github.com/npillmayer/puaa/compile"
	"github.com/npillmayer/puaa/internal/testdata"
	"github.com/npillmayer/puaa/sfnt"
	"github.com/npillmayer/schuko/testconfig"
)

func decodeFile(t *testing.T, path string) *codec.Decoded {
	t.Helper()
	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	d, err := codec.Decode(blob)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestCompileFragment(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	dir := t.TempDir()
	src := testdata.Write(t, dir, "applebanana.ucd")
	out := filepath.Join(dir, "applebanana.ucd.bin")
	err := compile.Compile(out, puaa.Names, []compile.Spec{{Files: []string{src}}})
	if err != nil {
		t.Fatal(err)
	}
	d := decodeFile(t, out)

	block, char, aliases, err := d.Lookup(0xFAB00)
	if err != nil {
		t.Fatal(err)
	}
	if block == nil || block.Name != "Applebanana Letters" {
		t.Errorf("unexpected block: %+v", block)
	}
	if char == nil || char.Category != puaa.Lu || char.Lower != 0xFAB20 {
		t.Errorf("unexpected char record: %+v", char)
	}
	if len(aliases) != 1 || aliases[0].Alias != "APPLEBANANA FIRST LETTER" {
		t.Errorf("unexpected aliases: %+v", aliases)
	}

	// covered by the block but carrying no record of its own
	block, char, aliases, err = d.Lookup(0xFAB10)
	if err != nil {
		t.Fatal(err)
	}
	if block == nil {
		t.Error("0xFAB10 should fall into the Applebanana block")
	}
	if char != nil || len(aliases) != 0 {
		t.Errorf("0xFAB10 should have no record or aliases: %+v %+v", char, aliases)
	}
}

func TestCompilePrecedence(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	dir := t.TempDir()
	base := filepath.Join(dir, "Blocks.txt")
	if err := os.WriteFile(base, []byte("0000..007F; Basic Latin\n"), 0644); err != nil {
		t.Fatal(err)
	}
	overrideDir := filepath.Join(dir, "override")
	if err := os.Mkdir(overrideDir, 0755); err != nil {
		t.Fatal(err)
	}
	override := filepath.Join(overrideDir, "Blocks.txt")
	if err := os.WriteFile(override, []byte("0000..007F; Renamed Latin\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.bin")
	specs := []compile.Spec{
		{Files: []string{base}},
		{Files: []string{override}},
	}
	if err := compile.Compile(out, puaa.Min, specs); err != nil {
		t.Fatal(err)
	}
	d := decodeFile(t, out)
	block, _, _, err := d.Lookup(0x0041)
	if err != nil {
		t.Fatal(err)
	}
	if block == nil || block.Name != "Renamed Latin" {
		t.Errorf("later spec should take precedence, got %+v", block)
	}
}

func TestProfileContainment(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	srcDir := testdata.Dir(t)
	outDir := t.TempDir()
	blobs := make(map[puaa.Profile][]byte)
	for _, profile := range []puaa.Profile{puaa.Min, puaa.Names, puaa.Full} {
		out := filepath.Join(outDir, profile.String()+".bin")
		if err := compile.Compile(out, profile, []compile.Spec{{Dir: srcDir}}); err != nil {
			t.Fatal(err)
		}
		blob, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		blobs[profile] = blob
	}
	tables := make(map[puaa.Profile]*puaa.Table)
	for profile, blob := range blobs {
		d, err := codec.Decode(blob)
		if err != nil {
			t.Fatal(err)
		}
		table, err := d.Table()
		if err != nil {
			t.Fatal(err)
		}
		tables[profile] = table
	}
	if len(tables[puaa.Min].Aliases) != 0 || len(tables[puaa.Min].Extras) != 0 {
		t.Error("min table should carry neither aliases nor extras")
	}
	if len(tables[puaa.Names].Aliases) == 0 || len(tables[puaa.Names].Extras) != 0 {
		t.Error("names table should carry aliases but no extras")
	}
	if len(tables[puaa.Full].Extras) == 0 {
		t.Error("full table should carry generic sections")
	}
	for _, profile := range []puaa.Profile{puaa.Names, puaa.Full} {
		if len(tables[profile].Blocks) != len(tables[puaa.Min].Blocks) {
			t.Errorf("%s profile should contain min's blocks", profile)
		}
		if len(tables[profile].Chars) != len(tables[puaa.Min].Chars) {
			t.Errorf("%s profile should contain min's char records", profile)
		}
	}
}

// TestCompileRealRelease runs against a full UCD release when one has
// been fetched with internal/testdata/download.go, and skips otherwise.
func TestCompileRealRelease(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	dir := testdata.UCDDir()
	if _, err := os.Stat(dir); err != nil {
		t.Skip("full UCD release not downloaded (go run download.go in internal/testdata)")
	}
	files := []string{
		filepath.Join(dir, "Blocks.txt"),
		filepath.Join(dir, "UnicodeData.txt"),
		filepath.Join(dir, "NameAliases.txt"),
	}
	out := filepath.Join(t.TempDir(), "release.bin")
	if err := compile.Compile(out, puaa.Names, []compile.Spec{{Files: files}}); err != nil {
		t.Fatal(err)
	}
	d := decodeFile(t, out)
	block, char, _, err := d.Lookup(0x0041)
	if err != nil {
		t.Fatal(err)
	}
	if block == nil || block.Name != "Basic Latin" {
		t.Errorf("unexpected block for U+0041: %+v", block)
	}
	if char == nil || char.Category != puaa.Lu || char.Lower != 0x0061 {
		t.Errorf("unexpected record for U+0041: %+v", char)
	}
}

func TestCompileInto(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "test.ttf")
	writeTestFont(t, fontPath)
	src := testdata.Write(t, dir, "applebanana.ucd")
	out := filepath.Join(dir, "out.ttf")
	err := compile.CompileInto(out, fontPath, puaa.Names, []compile.Spec{{Files: []string{src}}})
	if err != nil {
		t.Fatal(err)
	}
	blob, err := sfnt.Extract(out)
	if err != nil {
		t.Fatal(err)
	}
	d, err := codec.Decode(blob)
	if err != nil {
		t.Fatal(err)
	}
	if _, char, _, _ := d.Lookup(0xFAB00); char == nil {
		t.Error("embedded table should resolve the compiled record")
	}
}

func TestCompileFailureLeavesNoOutput(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	dir := t.TempDir()
	bad := filepath.Join(dir, "Blocks.txt")
	if err := os.WriteFile(bad, []byte("garbage line\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.bin")
	err := compile.Compile(out, puaa.Min, []compile.Spec{{Files: []string{bad}}})
	if err == nil {
		t.Fatal("compiling malformed input should fail")
	}
	if _, serr := os.Stat(out); !os.IsNotExist(serr) {
		t.Error("a failing compile must not create the output file")
	}
}

func TestExists(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	dir := t.TempDir()
	path := filepath.Join(dir, "x.bin")
	if compile.Exists(path) {
		t.Error("missing file reported as existing")
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !compile.Exists(path) {
		t.Error("existing file not reported")
	}
	if compile.Exists(dir) {
		t.Error("a directory is not an output file")
	}
}

func writeTestFont(t *testing.T, path string) {
	t.Helper()
	f := &sfnt.Font{Scaler: sfnt.ScalerTrueType}
	head := make([]byte, 54)
	binary.BigEndian.PutUint32(head[0:4], 0x00010000)
	f.SetTable("head", head)
	f.SetTable("cmap", []byte{0, 0, 0, 0})
	data, err := f.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

package sfnt

import (
	"fmt"
	"os"

	"github.com/npillmayer/puaa/internal/atomicfile"
)

// TableTag is the sfnt tag under which a compiled character-property
// table is stored.
const TableTag = "PUAA"

// Embed stores blob as the property table of a font, replacing any
// previous one, and writes the result to outPath atomically. The input
// font is never modified; a failing parse, checksum mismatch, or
// oversized table leaves outPath untouched.
func Embed(fontPath string, blob []byte, outPath string) error {
	f, err := load(fontPath)
	if err != nil {
		return err
	}
	f.SetTable(TableTag, blob)
	out, err := f.Bytes()
	if err != nil {
		return err
	}
	tracer().Infof("embedding %d-byte property table into %s", len(blob), outPath)
	return atomicfile.WriteFile(outPath, out, 0644)
}

// Strip removes the property table from a font and writes the result to
// outPath atomically. A font without one is copied as-is (rebuilt, so
// checksums are normalized).
func Strip(fontPath, outPath string) error {
	f, err := load(fontPath)
	if err != nil {
		return err
	}
	if f.DeleteTable(TableTag) {
		tracer().Infof("stripping property table from %s", fontPath)
	}
	out, err := f.Bytes()
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(outPath, out, 0644)
}

// Copy carries the property table of one font over into another: the
// table is extracted from srcPath, embedded into the font at dstPath,
// and the combined font written to outPath atomically. A source font
// without a property table is an error.
func Copy(srcPath, dstPath, outPath string) error {
	blob, err := Extract(srcPath)
	if err != nil {
		return err
	}
	return Embed(dstPath, blob, outPath)
}

// Extract returns the embedded property table of a font file.
func Extract(fontPath string) ([]byte, error) {
	f, err := load(fontPath)
	if err != nil {
		return nil, err
	}
	blob, ok := f.Table(TableTag)
	if !ok {
		return nil, fmt.Errorf("%s: no %s table", fontPath, TableTag)
	}
	return blob, nil
}

func load(fontPath string) (*Font, error) {
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fontPath, err)
	}
	return f, nil
}

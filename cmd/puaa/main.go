/*
Command puaa compiles Unicode Character Database text tables into compact
binary property tables and manages them as embedded font tables.

	puaa compile -p min -d ./ucd -d ./overrides.txt -o props.ucd
	puaa compile -p names -d ./ucd -o out.ttf -i font.ttf
	puaa embed -i font.ttf -t props.ucd -o out.ttf
	puaa copy -f out.ttf -i other.ttf -o other-props.ttf
	puaa strip -i out.ttf -o plain.ttf
	puaa lookup -i props.ucd U+0041 0x4E00 A
	puaa dump -i out.ttf

______________________________________________________________________

License

This project is provided under the terms of the UNLICENSE or
the 3-Clause BSD license denoted by the following SPDX identifier:

SPDX-License-Identifier: 'Unlicense' OR 'BSD-3-Clause'

You may use the project under the terms of either license.

Licenses are reproduced in the license file in the root folder of this module.

Copyright © 2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/puaa"
	"github.com/npillmayer/puaa/codec"
	"github.com/npillmayer/puaa/compile"
	"github.com/npillmayer/puaa/sfnt"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/runenames"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var tlevel string
	root := &cobra.Command{
		Use:           "puaa",
		Short:         "Compile Unicode character properties into font-embeddable tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logAdapter := gologadapter.GetAdapter()
			trace := logAdapter()
			trace.SetTraceLevel(traceLevel(tlevel))
			tracing.SetTraceSelector(mytrace{tracer: trace})
		},
	}
	root.PersistentFlags().StringVar(&tlevel, "trace", "E", "trace level (D|I|E)")
	root.AddCommand(newCompileCmd())
	root.AddCommand(newEmbedCmd())
	root.AddCommand(newCopyCmd())
	root.AddCommand(newStripCmd())
	root.AddCommand(newLookupCmd())
	root.AddCommand(newDumpCmd())
	return root
}

func traceLevel(l string) tracing.TraceLevel {
	switch l {
	case "D":
		return tracing.LevelDebug
	case "I":
		return tracing.LevelInfo
	case "E":
		return tracing.LevelError
	}
	return tracing.LevelError
}

type mytrace struct {
	tracer tracing.Trace
}

func (t mytrace) Select(string) tracing.Trace {
	return t.tracer
}

func newCompileCmd() *cobra.Command {
	var profileName, out, font string
	var data []string
	var skipExisting bool
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile UCD sources into a binary property table",
		Long: `Compile parses the given UCD source directories and files, merges them
in order of mention (later sources take precedence on exact range
collision) and writes the encoded table. With -i the table is embedded
into a copy of the given font instead of being written raw.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, ok := puaa.ParseProfile(profileName)
			if !ok {
				return fmt.Errorf("unknown profile %q, want min, names or full", profileName)
			}
			if skipExisting && compile.Exists(out) {
				tracing.Infof("%s exists, skipping", out)
				return nil
			}
			specs := make([]compile.Spec, 0, len(data))
			for _, d := range data {
				info, err := os.Stat(d)
				if err != nil {
					return err
				}
				if info.IsDir() {
					specs = append(specs, compile.Spec{Dir: d})
				} else {
					specs = append(specs, compile.Spec{Files: []string{d}})
				}
			}
			if font != "" {
				return compile.CompileInto(out, font, profile, specs)
			}
			return compile.Compile(out, profile, specs)
		},
	}
	cmd.Flags().StringVarP(&profileName, "profile", "p", "full", "compilation profile (min|names|full)")
	cmd.Flags().StringArrayVarP(&data, "data", "d", nil, "UCD source directory or file, repeatable")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path")
	cmd.Flags().StringVarP(&font, "into", "i", "", "embed the table into this font")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "do nothing when the output already exists")
	cmd.MarkFlagRequired("data")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newEmbedCmd() *cobra.Command {
	var font, tablePath, out string
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed a compiled property table into a font",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(tablePath)
			if err != nil {
				return err
			}
			if _, err := codec.Decode(blob); err != nil {
				return fmt.Errorf("%s: %w", tablePath, err)
			}
			return sfnt.Embed(font, blob, out)
		},
	}
	cmd.Flags().StringVarP(&font, "font", "i", "", "input font")
	cmd.Flags().StringVarP(&tablePath, "table", "t", "", "compiled property table")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output font path")
	cmd.MarkFlagRequired("font")
	cmd.MarkFlagRequired("table")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newCopyCmd() *cobra.Command {
	var src, dst, out string
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the property table of one font into another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sfnt.Copy(src, dst, out)
		},
	}
	cmd.Flags().StringVarP(&src, "from", "f", "", "font carrying the property table")
	cmd.Flags().StringVarP(&dst, "font", "i", "", "font to receive the table")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output font path")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("font")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newStripCmd() *cobra.Command {
	var font, out string
	cmd := &cobra.Command{
		Use:   "strip",
		Short: "Remove an embedded property table from a font",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sfnt.Strip(font, out)
		},
	}
	cmd.Flags().StringVarP(&font, "font", "i", "", "input font")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output font path")
	cmd.MarkFlagRequired("font")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newLookupCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "lookup <codepoint>...",
		Short: "Look up codepoints in a compiled table or font",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDecoded(input)
			if err != nil {
				return err
			}
			for _, arg := range args {
				cp, err := parseCodepointArg(arg)
				if err != nil {
					return err
				}
				if err := printLookup(d, cp); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "in", "i", "", "compiled table or font file")
	cmd.MarkFlagRequired("in")
	return cmd
}

func newDumpCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump a compiled table in UCD text layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDecoded(input)
			if err != nil {
				return err
			}
			return dumpTable(d)
		},
	}
	cmd.Flags().StringVarP(&input, "in", "i", "", "compiled table or font file")
	cmd.MarkFlagRequired("in")
	return cmd
}

// loadDecoded reads a compiled table, either from a raw table file or
// from the property table embedded in a font.
func loadDecoded(path string) (*codec.Decoded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) >= 4 && string(data[0:4]) != "UCPT" {
		f, err := sfnt.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		blob, ok := f.Table(sfnt.TableTag)
		if !ok {
			return nil, fmt.Errorf("%s: no %s table", path, sfnt.TableTag)
		}
		data = blob
	}
	d, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// parseCodepointArg accepts "U+0041", "0x41", bare hex, or a single
// character. Hex notation wins over character interpretation.
func parseCodepointArg(s string) (rune, error) {
	t := strings.TrimSpace(s)
	if u := strings.ToUpper(t); strings.HasPrefix(u, "U+") || strings.HasPrefix(u, "0X") {
		t = t[2:]
	}
	if n, err := strconv.ParseUint(t, 16, 32); err == nil && n <= 0x10FFFF {
		return rune(n), nil
	}
	if r := []rune(s); len(r) == 1 {
		return r[0], nil
	}
	return 0, fmt.Errorf("not a codepoint: %q", s)
}

func printLookup(d *codec.Decoded, cp rune) error {
	block, char, aliases, err := d.Lookup(cp)
	if err != nil {
		return err
	}
	name := ""
	if char != nil {
		name = char.Name
	}
	if name == "" || strings.HasPrefix(name, "<") {
		name = runenames.Name(cp)
	}
	fmt.Printf("U+%04X  %s\n", cp, name)
	if block != nil {
		fmt.Printf("  block     %s (%s)\n", block.Name, block.Range)
	}
	if char != nil {
		fmt.Printf("  category  %s   bidi %s   ccc %d\n", char.Category, char.Bidi, char.CombiningClass)
		if char.Mirrored {
			fmt.Printf("  mirrored\n")
		}
		if !char.Decomp.IsZero() {
			fmt.Printf("  decomp    %s\n", formatDecomp(char.Decomp))
		}
		if char.Numeric.Type != puaa.NumNone {
			fmt.Printf("  numeric   %s (%s)\n", char.Numeric.Value, char.Numeric.Type)
		}
		if char.Upper != puaa.NoCodepoint {
			fmt.Printf("  uppercase U+%04X\n", char.Upper)
		}
		if char.Lower != puaa.NoCodepoint {
			fmt.Printf("  lowercase U+%04X\n", char.Lower)
		}
		if char.Title != puaa.NoCodepoint {
			fmt.Printf("  titlecase U+%04X\n", char.Title)
		}
	}
	for _, a := range aliases {
		fmt.Printf("  alias     %s (%s)\n", a.Alias, a.Type)
	}
	if block == nil && char == nil && len(aliases) == 0 {
		fmt.Printf("  (not covered by this table)\n")
	}
	return nil
}

func dumpTable(d *codec.Decoded) error {
	fmt.Printf("# profile: %s\n", d.Profile())
	fmt.Println("# Blocks.txt")
	blocks := d.Blocks()
	for blocks.Next() {
		b := blocks.Block()
		fmt.Printf("%s; %s\n", b.Range, b.Name)
	}
	if err := blocks.Err(); err != nil {
		return err
	}
	fmt.Println("# UnicodeData.txt")
	chars := d.Chars()
	for chars.Next() {
		c := chars.Char()
		if c.Lo == c.Hi {
			fmt.Println(charLine(&c, c.Lo, c.Name))
			continue
		}
		base := strings.TrimSuffix(strings.TrimPrefix(c.Name, "<"), ">")
		fmt.Println(charLine(&c, c.Lo, "<"+base+", First>"))
		fmt.Println(charLine(&c, c.Hi, "<"+base+", Last>"))
	}
	if err := chars.Err(); err != nil {
		return err
	}
	if d.Profile() == puaa.Names || d.Profile() == puaa.Full {
		fmt.Println("# NameAliases.txt")
		aliases := d.Aliases()
		for aliases.Next() {
			a := aliases.Alias()
			fmt.Printf("%04X;%s;%s\n", a.Codepoint, a.Alias, a.Type)
		}
		if err := aliases.Err(); err != nil {
			return err
		}
	}
	for i := 0; i < d.ExtraCount(); i++ {
		sec, err := d.Extra(i)
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n", sec.File)
		for _, e := range sec.Entries {
			fmt.Printf("%s;%s\n", e.Range, strings.Join(e.Fields, ";"))
		}
	}
	return nil
}

// charLine reconstructs the 15-field UnicodeData.txt layout of one
// record.
func charLine(c *puaa.CharRecord, cp rune, name string) string {
	var dec, dig, num string
	switch c.Numeric.Type {
	case puaa.NumDecimal:
		dec, dig, num = c.Numeric.Value, c.Numeric.Value, c.Numeric.Value
	case puaa.NumDigit:
		dig, num = c.Numeric.Value, c.Numeric.Value
	case puaa.NumNumeric:
		num = c.Numeric.Value
	}
	mirrored := "N"
	if c.Mirrored {
		mirrored = "Y"
	}
	fields := []string{
		fmt.Sprintf("%04X", cp),
		name,
		c.Category.String(),
		strconv.Itoa(int(c.CombiningClass)),
		c.Bidi.String(),
		formatDecomp(c.Decomp),
		dec, dig, num,
		mirrored,
		c.Unicode1Name,
		c.ISOComment,
		optCodepoint(c.Upper),
		optCodepoint(c.Lower),
		optCodepoint(c.Title),
	}
	return strings.Join(fields, ";")
}

func formatDecomp(d puaa.Decomposition) string {
	if d.IsZero() {
		return ""
	}
	var parts []string
	if d.Tag != "" {
		parts = append(parts, "<"+d.Tag+">")
	}
	for _, cp := range d.Mapping {
		parts = append(parts, fmt.Sprintf("%04X", cp))
	}
	return strings.Join(parts, " ")
}

func optCodepoint(cp rune) string {
	if cp == puaa.NoCodepoint {
		return ""
	}
	return fmt.Sprintf("%04X", cp)
}

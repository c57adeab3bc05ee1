package ucd

import (
	"strings"

	"github.com/npillmayer/puaa"
)

// parseFragment reads an annotated source fragment. Fragments carry
// '@'-directives interleaved with ordinary data lines:
//
//	@flag --applebanana          declares a selecting flag
//	@substring Applebanana       declares a selecting substring
//	@file Blocks.txt             switches the target grammar
//
// Non-directive lines are handed to the grammar of the current @file
// target. A data line before any @file directive is malformed, as is an
// unknown directive or target file name.
func parseFragment(sc *scanner, set *puaa.SourceSet) error {
	target := KindUnknown
	var folder *charFolder
	for sc.Next() {
		tok := sc.token
		if tok.IsDirective() {
			switch tok.Field(0) {
			case "@flag":
				if tok.Fields() != 2 || !strings.HasPrefix(tok.Field(1), "--") {
					return malformed(tok, "@flag needs one --name argument")
				}
				set.Flags = append(set.Flags, tok.Field(1))
			case "@substring":
				if tok.Fields() != 2 {
					return malformed(tok, "@substring needs one argument")
				}
				set.Substrings = append(set.Substrings, tok.Field(1))
			case "@file":
				if tok.Fields() != 2 {
					return malformed(tok, "@file needs one file name argument")
				}
				if folder != nil {
					if err := folder.finish(sc.file); err != nil {
						return err
					}
					folder = nil
				}
				switch target = DetectKind(tok.Field(1)); target {
				case KindBlocks, KindNameAliases:
				case KindUnicodeData:
					folder = &charFolder{set: set}
				default:
					return malformed(tok, "unsupported fragment target %q", tok.Field(1))
				}
			default:
				return malformed(tok, "unknown directive %q", tok.Field(0))
			}
			continue
		}
		switch target {
		case KindBlocks:
			block, err := blockFromToken(tok)
			if err != nil {
				return err
			}
			set.Blocks = append(set.Blocks, block)
		case KindUnicodeData:
			if err := folder.add(tok); err != nil {
				return err
			}
		case KindNameAliases:
			alias, err := aliasFromToken(tok)
			if err != nil {
				return err
			}
			set.Aliases = append(set.Aliases, alias)
		default:
			return malformed(tok, "data line before any @file directive")
		}
	}
	if folder != nil {
		if err := folder.finish(sc.file); err != nil {
			return err
		}
	}
	return sc.err
}

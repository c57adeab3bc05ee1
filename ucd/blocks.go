package ucd

import "github.com/npillmayer/puaa"

// parseBlocks reads a Blocks.txt-style file: "START..END; Name" or
// "START; Name" for single codepoints.
func parseBlocks(sc *scanner, set *puaa.SourceSet) error {
	for sc.Next() {
		block, err := blockFromToken(sc.token)
		if err != nil {
			return err
		}
		set.Blocks = append(set.Blocks, block)
	}
	return sc.err
}

func blockFromToken(tok *Token) (puaa.Block, error) {
	if tok.IsDirective() {
		return puaa.Block{}, malformed(tok, "unexpected directive in block data")
	}
	if tok.Fields() != 2 {
		return puaa.Block{}, malformed(tok, "block line needs 2 fields, has %d", tok.Fields())
	}
	from, to, ok := tok.Range()
	if !ok {
		return puaa.Block{}, malformed(tok, "invalid block range %q", tok.Field(0))
	}
	name := tok.Field(1)
	if name == "" {
		return puaa.Block{}, malformed(tok, "empty block name")
	}
	return puaa.Block{
		Range:  puaa.Range{Lo: from, Hi: to},
		Name:   name,
		Origin: tok.origin(),
	}, nil
}

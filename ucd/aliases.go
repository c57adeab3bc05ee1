package ucd

import "github.com/npillmayer/puaa"

// parseNameAliases reads a NameAliases.txt-style file: "CP;ALIAS;TYPE".
func parseNameAliases(sc *scanner, set *puaa.SourceSet) error {
	for sc.Next() {
		alias, err := aliasFromToken(sc.token)
		if err != nil {
			return err
		}
		set.Aliases = append(set.Aliases, alias)
	}
	return sc.err
}

func aliasFromToken(tok *Token) (puaa.NameAlias, error) {
	if tok.IsDirective() {
		return puaa.NameAlias{}, malformed(tok, "unexpected directive in alias data")
	}
	if tok.Fields() != 3 {
		return puaa.NameAlias{}, malformed(tok, "alias line needs 3 fields, has %d", tok.Fields())
	}
	from, to, ok := tok.Range()
	if !ok || from != to {
		return puaa.NameAlias{}, malformed(tok, "invalid alias codepoint %q", tok.Field(0))
	}
	if tok.Field(1) == "" {
		return puaa.NameAlias{}, malformed(tok, "empty alias")
	}
	atype, ok := puaa.ParseAliasType(tok.Field(2))
	if !ok {
		return puaa.NameAlias{}, malformed(tok, "unknown alias type %q", tok.Field(2))
	}
	return puaa.NameAlias{
		Codepoint: from,
		Alias:     tok.Field(1),
		Type:      atype,
		Origin:    tok.origin(),
	}, nil
}

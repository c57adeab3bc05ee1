package ucd

import (
	"strings"

	"github.com/npillmayer/puaa"
)

// parseGeneric reads a property file with no dedicated typed model into a
// GenericSection: each line becomes a range key plus its ordered remaining
// fields, carried verbatim. Both the semicolon layout of most UCD files
// ("RANGE; field; …") and the tab layout of the Unihan database
// ("U+XXXX<TAB>prop<TAB>value") are accepted.
func parseGeneric(sc *scanner, set *puaa.SourceSet, file string) error {
	sec := puaa.GenericSection{File: file}
	for sc.Next() {
		tok := sc.token
		if tok.IsDirective() {
			return malformed(tok, "unexpected directive in property data")
		}
		entry, err := genericFromToken(tok)
		if err != nil {
			return err
		}
		sec.Entries = append(sec.Entries, entry)
	}
	if sc.err != nil {
		return sc.err
	}
	if len(sec.Entries) > 0 {
		set.Extras = append(set.Extras, sec)
	}
	return nil
}

func genericFromToken(tok *Token) (puaa.GenericEntry, error) {
	if isUnihanLine(tok.Text()) {
		return unihanFromToken(tok)
	}
	from, to, ok := tok.Range()
	if !ok {
		return puaa.GenericEntry{}, malformed(tok, "invalid property range %q", tok.Field(0))
	}
	fields := make([]string, 0, tok.Fields()-1)
	for i := 1; i < tok.Fields(); i++ {
		fields = append(fields, tok.Field(i))
	}
	return puaa.GenericEntry{
		Range:  puaa.Range{Lo: from, Hi: to},
		Fields: fields,
		Origin: tok.origin(),
	}, nil
}

// isUnihanLine distinguishes the tab layout from the semicolon layout.
// Unihan values may well contain semicolons ("one; a, an; alone"), so
// the deciding criterion is a tab before the first semicolon.
func isUnihanLine(text string) bool {
	tab := strings.IndexByte(text, '\t')
	if tab < 0 {
		return false
	}
	semi := strings.IndexByte(text, ';')
	return semi < 0 || tab < semi
}

// unihanFromToken reads "U+XXXX<TAB>property<TAB>value". The property name
// and value become the entry's two fields.
func unihanFromToken(tok *Token) (puaa.GenericEntry, error) {
	parts := strings.SplitN(tok.Text(), "\t", 3)
	if len(parts) != 3 {
		return puaa.GenericEntry{}, malformed(tok, "Unihan line needs 3 tab-separated fields")
	}
	cp, ok := parseCodepoint(parts[0])
	if !ok {
		return puaa.GenericEntry{}, malformed(tok, "invalid Unihan codepoint %q", parts[0])
	}
	prop := strings.TrimSpace(parts[1])
	value := strings.TrimSpace(parts[2])
	if prop == "" || value == "" {
		return puaa.GenericEntry{}, malformed(tok, "empty Unihan property or value")
	}
	return puaa.GenericEntry{
		Range:  puaa.Range{Lo: cp, Hi: cp},
		Fields: []string{prop, value},
		Origin: tok.origin(),
	}, nil
}

package ucd

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	pool "github.com/jolestar/go-commons-pool"
	"github.com/npillmayer/puaa"
)

// Token subsumes the properties of one data line of a UCD-style file:
// its location, its semicolon-delimited fields, and, where the first
// field is a codepoint or codepoint range, the parsed range.
type Token struct {
	File string
	Line int

	text      string
	fields    []string
	from, to  rune
	hasRange  bool
	directive bool
}

// Text returns the trimmed line with comments stripped.
func (t *Token) Text() string {
	return t.text
}

// Fields returns the number of semicolon-delimited fields. Directive lines
// are split on whitespace instead.
func (t *Token) Fields() int {
	return len(t.fields)
}

// Field gets field i (0…n-1), trimmed. Out-of-range indexes yield "".
func (t *Token) Field(i int) string {
	if i >= 0 && i < len(t.fields) {
		return t.fields[i]
	}
	return ""
}

// Range gets the codepoint range denoted by the first field.
func (t *Token) Range() (from, to rune, ok bool) {
	return t.from, t.to, t.hasRange
}

// IsDirective flags lines starting with '@'.
func (t *Token) IsDirective() bool {
	return t.directive
}

func (t *Token) origin() puaa.Origin {
	return puaa.Origin{File: t.File, Line: t.Line}
}

// Tokens are short-lived objects, one per data line, with high fluctuation
// when compiling a whole UCD release. To avoid multiple allocation of
// small objects we will pool them.
var tokenPool *pool.ObjectPool
var tokenPoolCtx context.Context

func init() {
	factory := pool.NewPooledObjectFactorySimple(
		func(context.Context) (interface{}, error) {
			return &Token{}, nil
		})
	tokenPoolCtx = context.Background()
	config := pool.NewDefaultPoolConfig()
	config.MaxTotal = -1 // infinity
	config.BlockWhenExhausted = false
	tokenPool = pool.NewObjectPool(tokenPoolCtx, factory, config)
}

func borrowToken() *Token {
	o, _ := tokenPool.BorrowObject(tokenPoolCtx)
	return o.(*Token)
}

// release clears the token and puts it back into the pool.
func (t *Token) release() {
	t.File = ""
	t.Line = 0
	t.text = ""
	t.fields = t.fields[:0]
	t.from, t.to = 0, 0
	t.hasRange = false
	t.directive = false
	_ = tokenPool.ReturnObject(tokenPoolCtx, t)
}

// scanner is a line-level scanner for UCD-style files. It skips blank
// lines and comments and wraps each remaining line into a Token. Callers
// must copy field contents out of a token before advancing, as tokens are
// recycled.
type scanner struct {
	file  string
	in    *bufio.Scanner
	line  int
	token *Token
	err   error
}

func newScanner(file string, r io.Reader) *scanner {
	in := bufio.NewScanner(r)
	in.Buffer(make([]byte, 0, 256), 1024*1024)
	return &scanner{file: file, in: in}
}

// Next advances to the next data line. It returns false at end of input
// or on an I/O error (see err).
func (sc *scanner) Next() bool {
	if sc.token != nil {
		sc.token.release()
		sc.token = nil
	}
	for sc.in.Scan() {
		sc.line++
		text := strings.TrimSpace(stripComment(sc.in.Text()))
		if text == "" {
			continue
		}
		tok := borrowToken()
		tok.File = sc.file
		tok.Line = sc.line
		tok.text = text
		if strings.HasPrefix(text, "@") {
			tok.directive = true
			tok.fields = append(tok.fields, strings.Fields(text)...)
		} else {
			for _, field := range strings.Split(text, ";") {
				tok.fields = append(tok.fields, strings.TrimSpace(field))
			}
			if from, to, ok := parseRange(tok.fields[0]); ok {
				tok.from, tok.to, tok.hasRange = from, to, true
			}
		}
		sc.token = tok
		return true
	}
	sc.err = sc.in.Err()
	return false
}

// stripComment drops a '#' comment up to the end of line.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// parseRange reads "XXXX" or "XXXX..YYYY" hex codepoint notation.
func parseRange(s string) (from, to rune, ok bool) {
	s = strings.TrimSpace(s)
	lo, hi := s, s
	if i := strings.Index(s, ".."); i >= 0 {
		lo, hi = strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+2:])
	}
	from, ok = parseCodepoint(lo)
	if !ok {
		return 0, 0, false
	}
	to, ok = parseCodepoint(hi)
	if !ok || to < from {
		return 0, 0, false
	}
	return from, to, true
}

// parseCodepoint reads a bare hex codepoint, tolerating a "U+" or "0x"
// prefix as found in Unihan files.
func parseCodepoint(s string) (rune, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 2 {
		switch s[:2] {
		case "U+", "u+", "0x", "0X":
			s = s[2:]
		}
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil || n > 0x10FFFF {
		return 0, false
	}
	return rune(n), true
}

package surql

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokQuotedIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind  tokenKind
	text  string // unquoted value for strings and quoted identifiers
	start int    // byte offsets into the source
	end   int
}

func (t token) is(keyword string) bool {
	return t.kind == tokWord && strings.EqualFold(t.text, keyword)
}

// lex splits DDL text into tokens. It understands plain words and $params, `…` and ⟨…⟩ identifiers,
// '…' and "…" strings with backslash escapes, numbers with an optional type suffix
// (1.5f, 10dec), and single-character punctuation.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '`' || r == '⟨':
			closing := '`'
			if r == '⟨' {
				closing = '⟩'
			}
			text, end, err := scanDelimited(src, i+size, closing)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokQuotedIdent, text: text, start: i, end: end})
			i = end
		case r == '\'' || r == '"':
			text, end, err := scanDelimited(src, i+size, r)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: text, start: i, end: end})
			i = end
		case r >= '0' && r <= '9':
			j := i
			for j < len(src) && (isWordByte(src[j]) || src[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: src[i:j], start: i, end: j})
			i = j
		case r == '_' || r == '$' || unicode.IsLetter(r):
			j := i + size
			for j < len(src) {
				rr, sz := utf8.DecodeRuneInString(src[j:])
				if rr != '_' && !unicode.IsLetter(rr) && !unicode.IsDigit(rr) {
					break
				}
				j += sz
			}
			toks = append(toks, token{kind: tokWord, text: src[i:j], start: i, end: j})
			i = j
		default:
			toks = append(toks, token{kind: tokPunct, text: string(r), start: i, end: i + size})
			i += size
		}
	}
	return append(toks, token{kind: tokEOF, start: len(src), end: len(src)}), nil
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// scanDelimited reads until the closing rune, honouring backslash escapes.
// It returns the unescaped content and the offset just past the closing rune.
func scanDelimited(src string, from int, closing rune) (string, int, error) {
	var b strings.Builder
	i := from
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r == '\\' && i+size < len(src) {
			next, nsize := utf8.DecodeRuneInString(src[i+size:])
			b.WriteRune(next)
			i += size + nsize
			continue
		}
		if r == closing {
			return b.String(), i + size, nil
		}
		b.WriteRune(r)
		i += size
	}
	return "", 0, fmt.Errorf("unterminated %q at offset %d", closing, from)
}

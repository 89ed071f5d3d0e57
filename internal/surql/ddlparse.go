package surql

import (
	"fmt"
	"strconv"
	"strings"
)

// IndexHNSW is only produced by the parser; the connector does not create HNSW indexes.
const IndexHNSW IndexKind = "hnsw"

// IndexDefinition is the structured form of a DEFINE INDEX statement.
type IndexDefinition struct {
	Name       string            `json:"name"`
	Table      string            `json:"table"`
	Fields     []string          `json:"fields"`
	Kind       IndexKind         `json:"type"`
	Unique     bool              `json:"unique"`
	Analyzer   string            `json:"analyzer,omitempty"`
	BM25       []float64         `json:"bm25,omitempty"`
	Highlights bool              `json:"highlights,omitempty"`
	Dimension  int               `json:"dimension,omitempty"`
	Distance   string            `json:"distance,omitempty"`
	VectorType string            `json:"vectorType,omitempty"`
	Capacity   int               `json:"capacity,omitempty"`
	Comment    string            `json:"comment,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
	Definition string            `json:"definition"`
}

// FieldDefinition is the structured form of a DEFINE FIELD statement.
type FieldDefinition struct {
	Name        string `json:"name"`
	Table       string `json:"table"`
	Type        string `json:"type,omitempty"`
	Flexible    bool   `json:"flexible,omitempty"`
	Default     string `json:"default,omitempty"`
	Value       string `json:"value,omitempty"`
	Assert      string `json:"assert,omitempty"`
	Readonly    bool   `json:"readonly,omitempty"`
	Permissions string `json:"permissions,omitempty"`
	Comment     string `json:"comment,omitempty"`
	Definition  string `json:"definition"`
}

// TableDefinition is the structured form of a DEFINE TABLE statement.
type TableDefinition struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Schema      string `json:"schema,omitempty"`
	Drop        bool   `json:"drop,omitempty"`
	Changefeed  string `json:"changefeed,omitempty"`
	View        string `json:"view,omitempty"`
	Permissions string `json:"permissions,omitempty"`
	Comment     string `json:"comment,omitempty"`
	Definition  string `json:"definition"`
}

// ParseIndexDefinition parses the DEFINE INDEX text returned by INFO FOR TABLE.
//
// Grammar covered (keywords are case-insensitive):
//
//	DEFINE INDEX [IF NOT EXISTS | OVERWRITE] name ON [TABLE] table
//	  (FIELDS | COLUMNS) idiom {, idiom}
//	  [ UNIQUE
//	  | SEARCH ANALYZER name [BM25 [(k1, b)]] [HIGHLIGHTS] {option}
//	  | MTREE DIMENSION n [DIST fn] [TYPE t] [CAPACITY n] {option}
//	  | HNSW DIMENSION n [DIST fn] [TYPE t] {option} ]
//	  [COMMENT string] [CONCURRENTLY]
//
// where option is any KEYWORD value pair the server appends (DOC_IDS_ORDER 100, EFC 150, …),
// collected into Extra. Anything the grammar does not name is kept in Extra rather than rejected.
func ParseIndexDefinition(ddl string) (*IndexDefinition, error) {
	p, err := newParser(ddl)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeywords("DEFINE", "INDEX"); err != nil {
		return nil, err
	}
	p.skipExistenceClause()

	def := &IndexDefinition{Kind: IndexStandard, Definition: strings.TrimSpace(ddl)}
	if def.Name, err = p.ident(); err != nil {
		return nil, err
	}
	if err := p.expectKeywords("ON"); err != nil {
		return nil, err
	}
	p.acceptKeyword("TABLE")
	if def.Table, err = p.ident(); err != nil {
		return nil, err
	}
	if !p.acceptKeyword("FIELDS") && !p.acceptKeyword("COLUMNS") {
		return nil, p.errorf("expected FIELDS")
	}
	def.Fields = p.idiomList("UNIQUE", "SEARCH", "MTREE", "HNSW", "COMMENT", "CONCURRENTLY")
	if len(def.Fields) == 0 {
		return nil, p.errorf("expected at least one field")
	}

	for !p.atEOF() {
		switch {
		case p.acceptKeyword("UNIQUE"):
			def.Kind = IndexUnique
			def.Unique = true
		case p.acceptKeyword("SEARCH"):
			def.Kind = IndexSearch
			if err := p.expectKeywords("ANALYZER"); err != nil {
				return nil, err
			}
			if def.Analyzer, err = p.ident(); err != nil {
				return nil, err
			}
		case p.acceptKeyword("BM25"):
			def.BM25 = p.numberTuple()
			if def.BM25 == nil {
				def.BM25 = []float64{}
			}
		case p.acceptKeyword("HIGHLIGHTS"):
			def.Highlights = true
		case p.acceptKeyword("MTREE"):
			def.Kind = IndexMTree
		case p.acceptKeyword("HNSW"):
			def.Kind = IndexHNSW
		case p.acceptKeyword("DIMENSION"):
			if def.Dimension, err = p.integer(); err != nil {
				return nil, err
			}
		case p.acceptKeyword("DIST"):
			dist, err := p.ident()
			if err != nil {
				return nil, err
			}
			def.Distance = strings.ToUpper(dist)
			// MINKOWSKI carries its order as a number.
			if p.peek().kind == tokNumber {
				def.Distance += " " + p.next().text
			}
		case def.Kind != IndexStandard && def.Kind != IndexUnique && p.acceptKeyword("TYPE"):
			vt, err := p.ident()
			if err != nil {
				return nil, err
			}
			def.VectorType = strings.ToUpper(vt)
		case p.acceptKeyword("CAPACITY"):
			if def.Capacity, err = p.integer(); err != nil {
				return nil, err
			}
		case p.acceptKeyword("COMMENT"):
			if def.Comment, err = p.stringLit(); err != nil {
				return nil, err
			}
		case p.acceptKeyword("CONCURRENTLY"):
			def.extra("CONCURRENTLY", "true")
		default:
			key := p.next()
			if key.kind != tokWord {
				return nil, p.errorAt(key, "unexpected %q", key.text)
			}
			def.extra(strings.ToUpper(key.text), p.optionValue())
		}
	}
	return def, nil
}

func (d *IndexDefinition) extra(key, value string) {
	if d.Extra == nil {
		d.Extra = map[string]string{}
	}
	d.Extra[key] = value
}

// ParseFieldDefinition parses the DEFINE FIELD text returned by INFO FOR TABLE.
//
// Grammar covered:
//
//	DEFINE FIELD [IF NOT EXISTS | OVERWRITE] idiom ON [TABLE] table
//	  [FLEXIBLE] [TYPE type] [DEFAULT [ALWAYS] expr] [READONLY]
//	  [VALUE expr] [ASSERT expr] [PERMISSIONS …] [COMMENT string]
//
// Clause bodies are returned as the original source text.
func ParseFieldDefinition(ddl string) (*FieldDefinition, error) {
	p, err := newParser(ddl)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeywords("DEFINE", "FIELD"); err != nil {
		return nil, err
	}
	p.skipExistenceClause()

	def := &FieldDefinition{Definition: strings.TrimSpace(ddl)}
	names := p.idiomList("ON")
	if len(names) != 1 {
		return nil, p.errorf("expected one field name")
	}
	def.Name = names[0]
	if err := p.expectKeywords("ON"); err != nil {
		return nil, err
	}
	p.acceptKeyword("TABLE")
	if def.Table, err = p.ident(); err != nil {
		return nil, err
	}

	clauses := []string{"FLEXIBLE", "TYPE", "DEFAULT", "READONLY", "VALUE", "ASSERT", "PERMISSIONS", "COMMENT", "REFERENCE"}
	for !p.atEOF() {
		switch {
		case p.acceptKeyword("FLEXIBLE"):
			def.Flexible = true
		case p.acceptKeyword("READONLY"):
			def.Readonly = true
		case p.acceptKeyword("TYPE"):
			def.Type = p.clause(clauses...)
		case p.acceptKeyword("DEFAULT"):
			def.Default = p.clause(clauses...)
		case p.acceptKeyword("VALUE"):
			def.Value = p.clause(clauses...)
		case p.acceptKeyword("ASSERT"):
			def.Assert = p.clause(clauses...)
		case p.acceptKeyword("PERMISSIONS"):
			def.Permissions = p.clause("COMMENT")
		case p.acceptKeyword("COMMENT"):
			if def.Comment, err = p.stringLit(); err != nil {
				return nil, err
			}
		default:
			// Clauses this parser does not model are skipped as a whole.
			p.next()
			p.clause(clauses...)
		}
	}
	return def, nil
}

// ParseTableDefinition parses the DEFINE TABLE text returned by INFO FOR DB.
//
// Grammar covered:
//
//	DEFINE TABLE [IF NOT EXISTS | OVERWRITE] name [DROP] [SCHEMAFULL | SCHEMALESS]
//	  [TYPE (ANY | NORMAL | RELATION …)] [CHANGEFEED duration [INCLUDE ORIGINAL]]
//	  [AS SELECT …] [PERMISSIONS …] [COMMENT string]
func ParseTableDefinition(ddl string) (*TableDefinition, error) {
	p, err := newParser(ddl)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeywords("DEFINE", "TABLE"); err != nil {
		return nil, err
	}
	p.skipExistenceClause()

	def := &TableDefinition{Definition: strings.TrimSpace(ddl)}
	if def.Name, err = p.ident(); err != nil {
		return nil, err
	}

	clauses := []string{"DROP", "SCHEMAFULL", "SCHEMALESS", "TYPE", "CHANGEFEED", "AS", "PERMISSIONS", "COMMENT"}
	for !p.atEOF() {
		switch {
		case p.acceptKeyword("DROP"):
			def.Drop = true
		case p.acceptKeyword("SCHEMAFULL"):
			def.Schema = string(Schemafull)
		case p.acceptKeyword("SCHEMALESS"):
			def.Schema = string(Schemaless)
		case p.acceptKeyword("TYPE"):
			def.Type = p.clause(clauses...)
		case p.acceptKeyword("CHANGEFEED"):
			def.Changefeed = p.clause(clauses...)
		case p.acceptKeyword("AS"):
			def.View = p.clause("PERMISSIONS", "COMMENT")
		case p.acceptKeyword("PERMISSIONS"):
			def.Permissions = p.clause("COMMENT")
		case p.acceptKeyword("COMMENT"):
			if def.Comment, err = p.stringLit(); err != nil {
				return nil, err
			}
		default:
			p.next()
			p.clause(clauses...)
		}
	}
	return def, nil
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func newParser(src string) (*parser, error) {
	src = strings.TrimRight(strings.TrimSpace(src), ";")
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, toks: toks}, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) atEOF() bool {
	return p.peek().kind == tokEOF
}

func (p *parser) acceptKeyword(kw string) bool {
	if p.peek().is(kw) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expectKeywords(kws ...string) error {
	for _, kw := range kws {
		if !p.acceptKeyword(kw) {
			return p.errorf("expected %s", kw)
		}
	}
	return nil
}

func (p *parser) skipExistenceClause() {
	if p.peek().is("IF") && p.toks[p.pos+1].is("NOT") {
		p.pos += 2
		p.acceptKeyword("EXISTS")
		return
	}
	p.acceptKeyword("OVERWRITE")
}

func (p *parser) ident() (string, error) {
	t := p.peek()
	if t.kind != tokWord && t.kind != tokQuotedIdent {
		return "", p.errorf("expected identifier")
	}
	p.pos++
	return t.text, nil
}

func (p *parser) integer() (int, error) {
	t := p.peek()
	if t.kind != tokNumber {
		return 0, p.errorf("expected number")
	}
	n, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, p.errorAt(t, "invalid integer %q", t.text)
	}
	p.pos++
	return n, nil
}

func (p *parser) stringLit() (string, error) {
	t := p.peek()
	if t.kind != tokString {
		return "", p.errorf("expected string")
	}
	p.pos++
	return t.text, nil
}

// numberTuple parses an optional parenthesized list of numbers such as (1.2,0.75).
func (p *parser) numberTuple() []float64 {
	if p.peek().text != "(" || p.peek().kind != tokPunct {
		return nil
	}
	p.pos++
	var out []float64
	for !p.atEOF() {
		t := p.next()
		if t.kind == tokPunct && t.text == ")" {
			break
		}
		if t.kind == tokNumber {
			if f, err := strconv.ParseFloat(strings.TrimRight(t.text, "abcdefghijklmnopqrstuvwxyz"), 64); err == nil {
				out = append(out, f)
			}
		}
	}
	return out
}

// optionValue consumes the value of a KEYWORD value option, if there is one.
func (p *parser) optionValue() string {
	t := p.peek()
	switch t.kind {
	case tokNumber, tokString, tokQuotedIdent:
		p.pos++
		return t.text
	}
	return ""
}

// idiomList reads comma separated field idioms until one of the stop keywords at depth zero.
func (p *parser) idiomList(stop ...string) []string {
	var out []string
	startTok := p.pos
	depth := 0
	flush := func(end int) {
		if end > startTok {
			out = append(out, p.text(startTok, end))
		}
	}
	for !p.atEOF() {
		t := p.peek()
		if depth == 0 && p.atKeyword(stop) {
			break
		}
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			case ",":
				if depth == 0 {
					flush(p.pos)
					p.pos++
					startTok = p.pos
					continue
				}
			}
		}
		p.pos++
	}
	flush(p.pos)
	return out
}

// clause returns the raw source text up to the next stop keyword at depth zero.
func (p *parser) clause(stop ...string) string {
	start := p.pos
	depth := 0
	for !p.atEOF() {
		t := p.peek()
		if depth == 0 && p.atKeyword(stop) {
			break
		}
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			}
		}
		p.pos++
	}
	return p.text(start, p.pos)
}

// text returns the source between token indexes [from, to), with quoted identifiers unquoted
// when the span is a single identifier.
func (p *parser) text(from, to int) string {
	if from >= to {
		return ""
	}
	if to-from == 1 && p.toks[from].kind == tokQuotedIdent {
		return p.toks[from].text
	}
	return strings.TrimSpace(p.src[p.toks[from].start:p.toks[to-1].end])
}

func (p *parser) errorf(format string, args ...any) error {
	return p.errorAt(p.peek(), format, args...)
}

func (p *parser) errorAt(t token, format string, args ...any) error {
	return fmt.Errorf("parse %q at offset %d: %s", p.src, t.start, fmt.Sprintf(format, args...))
}

// atKeyword reports whether the current token is one of the keywords and is not a path
// segment such as the `type` in type::is::string or the `value` in $this.value.
func (p *parser) atKeyword(keywords []string) bool {
	t := p.peek()
	if t.kind != tokWord || !isOneOf(t.text, keywords) {
		return false
	}
	if p.pos > 0 {
		prev := p.toks[p.pos-1]
		if prev.kind == tokPunct && prev.end == t.start && (prev.text == ":" || prev.text == ".") {
			return false
		}
	}
	return true
}

func isOneOf(word string, set []string) bool {
	for _, s := range set {
		if strings.EqualFold(word, s) {
			return true
		}
	}
	return false
}

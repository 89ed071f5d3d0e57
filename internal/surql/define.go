package surql

import (
	"fmt"
	"strconv"
	"strings"
)

// TableType is the kind of table created by DEFINE TABLE.
type TableType string

const (
	TableTypeAny      TableType = "ANY"
	TableTypeNormal   TableType = "NORMAL"
	TableTypeRelation TableType = "RELATION"
)

// SchemaMode selects SCHEMAFULL or SCHEMALESS.
type SchemaMode string

const (
	Schemafull SchemaMode = "SCHEMAFULL"
	Schemaless SchemaMode = "SCHEMALESS"
)

// DefineTableQuery represents a DEFINE TABLE statement.
type DefineTableQuery struct {
	table       string
	ifNotExists bool
	tableType   TableType
	schemaMode  SchemaMode
	comment     string
}

// DefineTable creates a new DEFINE TABLE statement.
func DefineTable(table string) *DefineTableQuery {
	return &DefineTableQuery{table: table}
}

func (q *DefineTableQuery) IfNotExists() *DefineTableQuery {
	q.ifNotExists = true
	return q
}

func (q *DefineTableQuery) Type(t TableType) *DefineTableQuery {
	q.tableType = t
	return q
}

func (q *DefineTableQuery) Schema(m SchemaMode) *DefineTableQuery {
	q.schemaMode = m
	return q
}

func (q *DefineTableQuery) Comment(c string) *DefineTableQuery {
	q.comment = c
	return q
}

// Build returns the SurrealQL string and parameters for the statement.
func (q *DefineTableQuery) Build() (sql string, vars map[string]any) {
	var b strings.Builder
	b.WriteString("DEFINE TABLE ")
	if q.ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(Ident(q.table))
	if q.tableType != "" {
		b.WriteString(" TYPE ")
		b.WriteString(string(q.tableType))
	}
	if q.schemaMode != "" {
		b.WriteString(" ")
		b.WriteString(string(q.schemaMode))
	}
	if q.comment != "" {
		b.WriteString(" COMMENT ")
		b.WriteString(quote(q.comment))
	}
	return b.String(), map[string]any{}
}

func (q *DefineTableQuery) String() string {
	sql, _ := q.Build()
	return sql
}

// DefineFieldQuery represents a DEFINE FIELD statement.
type DefineFieldQuery struct {
	field       string
	table       string
	ifNotExists bool
	dataType    string
	value       string
	assert      string
	default_    string
}

// DefineField creates a new DEFINE FIELD statement.
func DefineField(field, table string) *DefineFieldQuery {
	return &DefineFieldQuery{field: field, table: table}
}

func (q *DefineFieldQuery) IfNotExists() *DefineFieldQuery {
	q.ifNotExists = true
	return q
}

// Type sets the field type, e.g. "string" or "option<int>".
func (q *DefineFieldQuery) Type(dataType string) *DefineFieldQuery {
	q.dataType = dataType
	return q
}

// Value sets the VALUE expression.
func (q *DefineFieldQuery) Value(expr string) *DefineFieldQuery {
	q.value = expr
	return q
}

// Assert sets the ASSERT expression.
func (q *DefineFieldQuery) Assert(expr string) *DefineFieldQuery {
	q.assert = expr
	return q
}

// Default sets the DEFAULT expression.
func (q *DefineFieldQuery) Default(expr string) *DefineFieldQuery {
	q.default_ = expr
	return q
}

func (q *DefineFieldQuery) Build() (sql string, vars map[string]any) {
	var b strings.Builder
	b.WriteString("DEFINE FIELD ")
	if q.ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(FieldPath(q.field))
	b.WriteString(" ON TABLE ")
	b.WriteString(Ident(q.table))
	if q.dataType != "" {
		b.WriteString(" TYPE ")
		b.WriteString(q.dataType)
	}
	if q.default_ != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(q.default_)
	}
	if q.value != "" {
		b.WriteString(" VALUE ")
		b.WriteString(q.value)
	}
	if q.assert != "" {
		b.WriteString(" ASSERT ")
		b.WriteString(q.assert)
	}
	return b.String(), map[string]any{}
}

func (q *DefineFieldQuery) String() string {
	sql, _ := q.Build()
	return sql
}

// IndexKind is the kind of index created by DEFINE INDEX.
type IndexKind string

const (
	IndexStandard IndexKind = "standard"
	IndexUnique   IndexKind = "unique"
	IndexSearch   IndexKind = "search"
	IndexMTree    IndexKind = "mtree"
)

// DefaultAnalyzer is used for search indexes when no analyzer is given.
const DefaultAnalyzer = "ascii"

var distanceFunctions = map[string]struct{}{
	"EUCLIDEAN": {}, "COSINE": {}, "MANHATTAN": {}, "MINKOWSKI": {}, "CHEBYSHEV": {}, "HAMMING": {},
}

var vectorTypes = map[string]struct{}{
	"F64": {}, "F32": {}, "I64": {}, "I32": {}, "I16": {},
}

// DefineIndexQuery represents a DEFINE INDEX statement.
type DefineIndexQuery struct {
	name        string
	table       string
	ifNotExists bool
	fields      []string
	kind        IndexKind
	analyzer    string
	bm25        bool
	highlights  bool
	dimension   int
	distance    string
	vectorType  string
	comment     string
}

// DefineIndex creates a new DEFINE INDEX statement. The kind defaults to standard.
func DefineIndex(name, table string) *DefineIndexQuery {
	return &DefineIndexQuery{name: name, table: table, kind: IndexStandard}
}

func (q *DefineIndexQuery) IfNotExists() *DefineIndexQuery {
	q.ifNotExists = true
	return q
}

func (q *DefineIndexQuery) Fields(fields ...string) *DefineIndexQuery {
	q.fields = append(q.fields, fields...)
	return q
}

func (q *DefineIndexQuery) Unique() *DefineIndexQuery {
	q.kind = IndexUnique
	return q
}

// Search turns the index into a full-text index using analyzer.
func (q *DefineIndexQuery) Search(analyzer string, highlights bool) *DefineIndexQuery {
	q.kind = IndexSearch
	q.analyzer = analyzer
	q.bm25 = true
	q.highlights = highlights
	return q
}

// MTree turns the index into a vector index of the given dimension.
// distance and vectorType are optional.
func (q *DefineIndexQuery) MTree(dimension int, distance, vectorType string) *DefineIndexQuery {
	q.kind = IndexMTree
	q.dimension = dimension
	q.distance = distance
	q.vectorType = vectorType
	return q
}

func (q *DefineIndexQuery) Comment(c string) *DefineIndexQuery {
	q.comment = c
	return q
}

// Validate checks the options that the server would otherwise reject with a parse error.
func (q *DefineIndexQuery) Validate() error {
	if q.name == "" {
		return fmt.Errorf("index name is required")
	}
	if q.table == "" {
		return fmt.Errorf("table is required")
	}
	if len(q.fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}
	switch q.kind {
	case IndexStandard, IndexUnique:
	case IndexSearch:
		if len(q.fields) != 1 {
			return fmt.Errorf("search index takes exactly one field, got %d", len(q.fields))
		}
	case IndexMTree:
		if len(q.fields) != 1 {
			return fmt.Errorf("mtree index takes exactly one field, got %d", len(q.fields))
		}
		if q.dimension <= 0 {
			return fmt.Errorf("mtree dimension must be a positive integer, got %d", q.dimension)
		}
		if q.distance != "" {
			if _, ok := distanceFunctions[strings.ToUpper(q.distance)]; !ok {
				return fmt.Errorf("unknown distance function %q", q.distance)
			}
		}
		if q.vectorType != "" {
			if _, ok := vectorTypes[strings.ToUpper(q.vectorType)]; !ok {
				return fmt.Errorf("unknown vector type %q", q.vectorType)
			}
		}
	default:
		return fmt.Errorf("unknown index type %q", q.kind)
	}
	return nil
}

func (q *DefineIndexQuery) Build() (sql string, vars map[string]any) {
	var b strings.Builder
	b.WriteString("DEFINE INDEX ")
	if q.ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(Ident(q.name))
	b.WriteString(" ON TABLE ")
	b.WriteString(Ident(q.table))
	b.WriteString(" FIELDS ")
	for i, f := range q.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(FieldPath(f))
	}

	switch q.kind {
	case IndexUnique:
		b.WriteString(" UNIQUE")
	case IndexSearch:
		analyzer := q.analyzer
		if analyzer == "" {
			analyzer = DefaultAnalyzer
		}
		b.WriteString(" SEARCH ANALYZER ")
		b.WriteString(Ident(analyzer))
		if q.bm25 {
			b.WriteString(" BM25")
		}
		if q.highlights {
			b.WriteString(" HIGHLIGHTS")
		}
	case IndexMTree:
		b.WriteString(" MTREE DIMENSION ")
		b.WriteString(strconv.Itoa(q.dimension))
		if q.distance != "" {
			b.WriteString(" DIST ")
			b.WriteString(strings.ToUpper(q.distance))
		}
		if q.vectorType != "" {
			b.WriteString(" TYPE ")
			b.WriteString(strings.ToUpper(q.vectorType))
		}
	}

	if q.comment != "" {
		b.WriteString(" COMMENT ")
		b.WriteString(quote(q.comment))
	}
	return b.String(), map[string]any{}
}

func (q *DefineIndexQuery) String() string {
	sql, _ := q.Build()
	return sql
}

// quote renders s as a double quoted SurrealQL string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

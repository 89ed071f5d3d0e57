// Package recordid parses and formats SurrealDB record identifiers of the form table:id.
//
// Identifiers coming from workflow parameters are free text. A user may type "person:tobie"
// into the id field while also setting the table to "person", so [New] always decomposes
// a prefixed id before recombining it and never produces "person:person:tobie".
package recordid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealflow/pkg/constants"
)

// Separator separates the table and the id of a record identifier.
const Separator = ":"

// ID is a (table, id) pair.
type ID struct {
	Table string
	ID    string

	// quoted is set when the id was written as ⟨...⟩ or `...`,
	// which forces a string id even when the content is numeric.
	quoted bool
}

// New builds a record identifier from a table name and an id that may or may not
// already carry a table prefix.
//
// If table is empty the table is inferred from the id prefix.
// If table is set, a prefix is only stripped when it names that same table;
// otherwise the whole string is the id (ids such as timestamps may contain colons).
func New(table, id string) (ID, error) {
	table = strings.TrimSpace(table)
	id = strings.TrimSpace(id)

	if id == "" {
		return ID{}, fmt.Errorf("%w: id is required", constants.ErrInvalidRecordID)
	}

	prefix, rest, hasPrefix := split(id)
	if hasPrefix && (table == "" || prefix == table) {
		table = prefix
		id = rest
	}

	if table == "" {
		return ID{}, fmt.Errorf("%w: table is required when id %q has no table prefix", constants.ErrInvalidRecordID, id)
	}
	if strings.Contains(table, Separator) {
		return ID{}, fmt.Errorf("%w: table %q must not contain %q", constants.ErrInvalidRecordID, table, Separator)
	}
	if id == "" {
		return ID{}, fmt.Errorf("%w: id is empty after table prefix %q", constants.ErrInvalidRecordID, table)
	}

	unquoted, quoted := unquote(id)
	return ID{Table: table, ID: unquoted, quoted: quoted}, nil
}

// Parse parses a fully qualified "table:id" string.
func Parse(s string) (ID, error) {
	if _, _, ok := split(strings.TrimSpace(s)); !ok {
		return ID{}, fmt.Errorf("%w: %q is not in table:id form", constants.ErrInvalidRecordID, s)
	}
	return New("", s)
}

// split splits on the first separator that is not inside a quoted id.
func split(s string) (table, id string, ok bool) {
	if strings.HasPrefix(s, "⟨") || strings.HasPrefix(s, "`") {
		return "", s, false
	}
	table, id, ok = strings.Cut(s, Separator)
	if !ok || table == "" {
		return "", s, false
	}
	return table, id, true
}

func unquote(id string) (string, bool) {
	switch {
	case strings.HasPrefix(id, "⟨") && strings.HasSuffix(id, "⟩") && len(id) > len("⟨⟩"):
		inner := strings.TrimSuffix(strings.TrimPrefix(id, "⟨"), "⟩")
		return strings.ReplaceAll(inner, `\⟩`, "⟩"), true
	case strings.HasPrefix(id, "`") && strings.HasSuffix(id, "`") && len(id) > 2:
		inner := id[1 : len(id)-1]
		return strings.ReplaceAll(inner, "\\`", "`"), true
	}
	return id, false
}

// RecordID converts the identifier into the SDK representation.
// Unquoted ids made only of digits are sent as integers, matching how SurrealQL reads person:1.
func (r ID) RecordID() models.RecordID {
	if !r.quoted {
		if n, err := strconv.ParseInt(r.ID, 10, 64); err == nil {
			return models.NewRecordID(r.Table, n)
		}
	}
	return models.NewRecordID(r.Table, r.ID)
}

// String formats the identifier as SurrealQL record syntax, escaping the id when needed.
func (r ID) String() string {
	id := r.ID
	if r.quoted || needsEscaping(id) {
		id = "⟨" + strings.ReplaceAll(id, "⟩", `\⟩`) + "⟩"
	}
	return r.Table + Separator + id
}

func needsEscaping(s string) bool {
	if s == "" {
		return true
	}
	allDigits := true
	for _, ch := range s {
		isDigit := ch >= '0' && ch <= '9'
		isAlpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		if !isDigit && !isAlpha && ch != '_' {
			return true
		}
		if !isDigit {
			allDigits = false
		}
	}
	// Numeric ids are valid unescaped; mixed digits and underscores are not.
	return !allDigits && strings.Trim(s, "0123456789_") == ""
}

// ParseList splits a comma separated list of ids and qualifies each with table.
// Blank entries are skipped. Entries that are not valid ids are left out of the
// result and reported in invalid, in input order.
func ParseList(table, ids string) (valid []ID, invalid []error) {
	for _, raw := range strings.Split(ids, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := New(table, raw)
		if err != nil {
			invalid = append(invalid, err)
			continue
		}
		valid = append(valid, id)
	}
	return valid, invalid
}

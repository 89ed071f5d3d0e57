package surql

import "strings"

var reservedWords = map[string]struct{}{
	"SELECT": {}, "FROM": {}, "WHERE": {}, "ORDER": {}, "BY": {}, "LIMIT": {}, "START": {},
	"FETCH": {}, "GROUP": {}, "SPLIT": {}, "RETURN": {}, "PARALLEL": {}, "EXPLAIN": {},
	"CREATE": {}, "UPDATE": {}, "UPSERT": {}, "DELETE": {}, "RELATE": {}, "INSERT": {}, "DEFINE": {},
	"REMOVE": {}, "REBUILD": {}, "INFO": {}, "USE": {}, "BEGIN": {}, "CANCEL": {}, "COMMIT": {},
	"IF": {}, "ELSE": {}, "THEN": {}, "END": {}, "BREAK": {}, "CONTINUE": {},
	"FUNCTION": {}, "PARAM": {}, "FIELD": {}, "TYPE": {}, "DEFAULT": {}, "INDEX": {}, "TABLE": {},
	"ASSERT": {}, "PERMISSIONS": {}, "DURATION": {}, "FLEXIBLE": {},
}

// Ident escapes an identifier with backticks when it is not a plain word or is reserved.
func Ident(ident string) string {
	if ident == "" || !isPlainWord(ident) || isReserved(ident) {
		return "`" + strings.ReplaceAll(ident, "`", "\\`") + "`"
	}
	return ident
}

// FieldPath escapes each segment of a dotted field path, keeping [*] and [n] suffixes.
func FieldPath(path string) string {
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		name, suffix := seg, ""
		if j := strings.IndexByte(seg, '['); j > 0 {
			name, suffix = seg[:j], seg[j:]
		}
		if name == "*" {
			continue
		}
		segments[i] = Ident(name) + suffix
	}
	return strings.Join(segments, ".")
}

func isPlainWord(s string) bool {
	for i, ch := range s {
		isAlpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
		isDigit := ch >= '0' && ch <= '9'
		if !isAlpha && !(isDigit && i > 0) {
			return false
		}
	}
	return true
}

func isReserved(word string) bool {
	_, ok := reservedWords[strings.ToUpper(word)]
	return ok
}

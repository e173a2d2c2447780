package core

// identifier.go turns arbitrary file names and header cells into safe,
// deterministic schema identifiers. Sanitization is total over any
// input; collisions and empty results are handled here so callers can
// treat the output as ready for DDL.

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

	// safeIdent is the allow-list every identifier must match before it
	// is interpolated into SQL text.
	safeIdent = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// CollisionPolicy decides what happens when two header cells sanitize
// to the same column name.
type CollisionPolicy string

const (
	// CollisionDrop keeps the first occurrence and drops later
	// duplicates.
	CollisionDrop CollisionPolicy = "drop"
	// CollisionSuffix renames later duplicates name_2, name_3, ...
	CollisionSuffix CollisionPolicy = "suffix"
	// CollisionReject fails the file with DuplicateColumnError.
	CollisionReject CollisionPolicy = "reject"
)

// ParseCollisionPolicy validates a policy string from configuration.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(strings.ToLower(s)); p {
	case CollisionDrop, CollisionSuffix, CollisionReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown column collision policy %q (want drop, suffix or reject)", s)
	}
}

// SanitizeIdentifier lowercases s and replaces every character outside
// [a-zA-Z0-9_] with an underscore. It is idempotent and never fails;
// the result may be empty (for an empty input) or start with a digit,
// which the callers below fix up.
func SanitizeIdentifier(s string) string {
	return strings.ToLower(unsafeChars.ReplaceAllString(s, "_"))
}

// TableNameForFile derives the destination table name from the
// client-supplied file name: base name, extension stripped, sanitized.
// The result always matches the identifier allow-list.
func TableNameForFile(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	name := SanitizeIdentifier(base)
	switch {
	case name == "":
		return "t"
	case name[0] >= '0' && name[0] <= '9':
		return "t_" + name
	default:
		return name
	}
}

// ColumnNames sanitizes every header cell, preserving first-seen
// order. Cells that sanitize to nothing get a positional fallback
// (col0, col1, ...), digit-leading names are prefixed, and duplicates
// are resolved per the policy. Every returned name matches the
// identifier allow-list.
func ColumnNames(headers []string, policy CollisionPolicy) ([]string, error) {
	cols := make([]string, 0, len(headers))
	seen := make(map[string]int, len(headers))

	for i, h := range headers {
		name := SanitizeIdentifier(strings.TrimSpace(h))
		switch {
		case name == "":
			name = fmt.Sprintf("col%d", i)
		case name[0] >= '0' && name[0] <= '9':
			name = "c_" + name
		}

		seen[name]++
		if n := seen[name]; n > 1 {
			switch policy {
			case CollisionDrop:
				continue
			case CollisionSuffix:
				name = fmt.Sprintf("%s_%d", name, n)
			case CollisionReject:
				return nil, &DuplicateColumnError{Column: name}
			}
		}
		cols = append(cols, name)
	}

	return cols, nil
}

// ensureSafeIdentifier enforces the allow-list invariant before any
// identifier reaches SQL text.
func ensureSafeIdentifier(name string) error {
	if !safeIdent.MatchString(name) {
		return &UnsafeIdentifierError{Name: name}
	}
	return nil
}

// quoteIdentifier returns name as a quoted SQL identifier. Quoting is
// applied on top of the allow-list check, which also keeps reserved
// words usable as table or column names.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

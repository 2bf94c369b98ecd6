/*
Package schema turns raw, inconsistently spelled headers into a stable schema.

PURPOSE:
  Source files are exported by hand from spreadsheets. The same column shows
  up as "ID salarié", "Id Salarie", "id_salarie " or, after a bad re-encode,
  "ID salari?". This package maps all of them onto one canonical field name
  and fails fast when a field the pipeline needs cannot be found.

TWO STEPS:
  1. Normalize: lower-case, strip accents (explicit table), replace every
     run of other characters with "_", trim underscores. Pure and
     idempotent.
  2. Resolve: rename normalized headers through a synonym table, check the
     required fields, inject defaults for the optional ones.

SEE ALSO:
  - resolver.go: Synonym tables and validation
  - generic/errors.go: SchemaError
*/
package schema

import "strings"

// accents maps accented lower-case Latin letters to their base form.
// Upper-case input is lower-cased before lookup.
var accents = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ä': "a", 'ã': "a", 'å': "a",
	'ç': "c",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i",
	'ñ': "n",
	'ò': "o", 'ó': "o", 'ô': "o", 'ö': "o", 'õ': "o",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u",
	'ý': "y", 'ÿ': "y",
	'œ': "oe", 'æ': "ae",
}

// Normalize canonicalizes one raw header.
//
// Rule order matters and is fixed: case and whitespace first, then accents,
// then separators. "Type d'activité" becomes "type_d_activite".
func Normalize(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))

	var folded strings.Builder
	folded.Grow(len(s))
	for _, r := range s {
		if base, ok := accents[r]; ok {
			folded.WriteString(base)
			continue
		}
		folded.WriteRune(r)
	}

	// Underscores and disallowed characters both act as separators, so a
	// single pass both replaces runs and collapses repeated underscores.
	var out strings.Builder
	out.Grow(folded.Len())
	pending := false
	for _, r := range folded.String() {
		if isWordRune(r) {
			if pending && out.Len() > 0 {
				out.WriteByte('_')
			}
			pending = false
			out.WriteRune(r)
			continue
		}
		pending = true
	}
	return out.String()
}

// NormalizeAll normalizes headers, keeping order.
func NormalizeAll(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = Normalize(h)
	}
	return out
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

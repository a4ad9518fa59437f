package rfc9110

import "strings"

// §  8.8.3.  ETag
// §
// §     The "ETag" field in a response provides the current entity tag for
// §     the selected representation, as determined at the conclusion of
// §     handling the request.  An entity tag is an opaque validator for
// §     differentiating between multiple representations of the same
// §     resource, regardless of whether those multiple representations are
// §     due to resource state changes over time, content negotiation
// §     resulting in multiple representations being valid at the same time,
// §     or both.
// §
// §       ETag       = entity-tag
// §
// §       entity-tag = [ weak ] opaque-tag
// §       weak       = %s"W/"
// §       opaque-tag = DQUOTE *etagc DQUOTE
// §       etagc      = %x21 / %x23-7E / obs-text
// §                  ; VCHAR except double quotes, plus obs-text
const weakPrefix = "W/"

// ValidEntityTag reports whether tag matches the entity-tag grammar.
func ValidEntityTag(tag string) bool {
	opaque := strings.TrimPrefix(tag, weakPrefix)
	if len(opaque) < 2 || opaque[0] != '"' || opaque[len(opaque)-1] != '"' {
		return false
	}
	for i := 1; i < len(opaque)-1; i++ {
		c := opaque[i]
		if c == '"' || c < 0x21 || c == 0x7f {
			return false
		}
	}
	return true
}

// IsWeak reports whether the entity-tag carries the weakness indicator.
func IsWeak(tag string) bool {
	return strings.HasPrefix(tag, weakPrefix)
}

// §  8.8.3.2.  Comparison
// §
// §     There are two entity-tag comparison functions, depending on whether
// §     or not the comparison context allows the use of weak validators:
// §
// §     "Strong comparison":  two entity tags are equivalent if both are not
// §        weak and their opaque-tags match character-by-character.
// §
// §     "Weak comparison":  two entity tags are equivalent if their opaque-
// §        tags match character-by-character, regardless of either or both
// §        being tagged as "weak".
//
// StrongMatch compares the exact field values, which is how the If-Match
// list is checked against the current tag.
func StrongMatch(a, b string) bool {
	return a != "" && a == b
}

// WeakMatch implements the weak comparison function.
func WeakMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.TrimPrefix(a, weakPrefix) == strings.TrimPrefix(b, weakPrefix)
}

// ParseTokenList splits a comma-separated list field value into its members,
// stripping the optional whitespace around each member.
//
// §     The "#" operator ... a recipient MUST accept lists that contain
// §     empty list elements.
func ParseTokenList(value string) []string {
	members := strings.Split(value, ",")
	for i, member := range members {
		members[i] = strings.Trim(member, " \t")
	}
	return members
}

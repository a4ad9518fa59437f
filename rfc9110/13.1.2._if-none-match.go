package rfc9110

import "net/http"

// ifNoneMatchFails reports whether an If-None-Match precondition is present and
// evaluates to false, i.e. the client already has a current representation.
//
// §  13.1.2.  If-None-Match
// §
// §     The "If-None-Match" header field makes the request method conditional
// §     on a recipient cache or origin server either not having any current
// §     representation of the target resource, when the field value is "*",
// §     or having a selected representation with an entity tag that does not
// §     match any of those listed in the field value.
// §
// §     A recipient MUST use the weak comparison function when comparing
// §     entity tags for If-None-Match (Section 8.8.3.2), since weak entity
// §     tags can be used for cache validation even if there have been changes
// §     to the representation data.
// §
// §       If-None-Match = "*" / #entity-tag
// §
// §     To evaluate a received If-None-Match header field:
// §
// §     1.  If the field value is "*", the condition is false if the origin
// §         server has a current representation for the target resource.
// §
// §     2.  If the field value is a list of entity tags, the condition is
// §         false if one of the listed tags matches the entity tag of the
// §         selected representation.
// §
// §     3.  Otherwise, the condition is true.
func ifNoneMatchFails(header http.Header, etag string) (fails bool, present bool) {
	noneMatch := listField(header, "If-None-Match")
	if noneMatch == "" {
		return false, false
	}
	if noneMatch == "*" {
		return true, true
	}
	for _, tag := range ParseTokenList(noneMatch) {
		if WeakMatch(tag, etag) {
			return true, true
		}
	}
	return false, true
}

package rfc9110

import "net/http"

// ifMatchFails reports whether an If-Match precondition is present and evaluates
// to false. The boolean present is false if the field is absent.
//
// §  13.1.1.  If-Match
// §
// §     The "If-Match" header field makes the request method conditional on
// §     the recipient origin server either having at least one current
// §     representation of the target resource, when the field value is "*",
// §     or having a current representation of the target resource that has
// §     an entity tag matching a member of the list of entity tags provided
// §     in the field value.
// §
// §     An origin server MUST use the strong comparison function when
// §     comparing entity tags for If-Match (Section 8.8.3.2), since the
// §     client intends this precondition to prevent the method from being
// §     applied if there have been any changes to the representation data.
// §
// §       If-Match = "*" / #entity-tag
// §
// §     When an origin server receives a request that selects a
// §     representation and that request includes an If-Match header field,
// §     the origin server MUST evaluate the If-Match condition per
// §     Section 13.2 prior to performing the method.
// §
// §     To evaluate a received If-Match header field:
// §
// §     1.  If the field value is "*", the condition is true if the origin
// §         server has a current representation for the target resource.
// §
// §     2.  If the field value is a list of entity tags, the condition is true
// §         if any of the listed tags match the entity tag of the selected
// §         representation.
// §
// §     3.  Otherwise, the condition is false.
func ifMatchFails(header http.Header, etag string) (fails bool, present bool) {
	match := listField(header, "If-Match")
	if match == "" {
		return false, false
	}
	if match == "*" {
		return false, true
	}
	if etag == "" {
		return true, true
	}
	for _, tag := range ParseTokenList(match) {
		if StrongMatch(tag, etag) {
			return false, true
		}
	}
	return true, true
}

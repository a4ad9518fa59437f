package rfc9110

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// §  12.5.3.  Accept-Encoding
// §
// §     The "Accept-Encoding" header field can be used to indicate
// §     preferences regarding the use of content codings (Section 8.4.1).
// §
// §       Accept-Encoding  = #( codings [ weight ] )
// §       codings          = content-coding / "identity" / "*"
// §
// §     Each codings value MAY be given an associated quality value (weight)
// §     representing the preference for that encoding, as defined in
// §     Section 12.4.2.  The asterisk "*" symbol in an Accept-Encoding field
// §     matches any available content coding not explicitly listed in the
// §     field.
type acceptedCoding struct {
	coding string
	q      float64
	index  int
}

// parseAcceptEncoding returns the listed codings. Unless identity is listed
// (directly or through "*"), it is appended with the lowest listed quality.
func parseAcceptEncoding(value string) []acceptedCoding {
	members := strings.Split(value, ",")
	accepted := make([]acceptedCoding, 0, len(members)+1)
	hasIdentity := false
	minQuality := 1.0
	for i, member := range members {
		ac, ok := parseCoding(member, i)
		if !ok {
			continue
		}
		accepted = append(accepted, ac)
		hasIdentity = hasIdentity || ac.coding == "*" || strings.EqualFold(ac.coding, "identity")
		if ac.q < minQuality {
			minQuality = ac.q
		}
	}
	if !hasIdentity {
		accepted = append(accepted, acceptedCoding{coding: "identity", q: minQuality, index: len(members)})
	}
	return accepted
}

// §  12.4.2.  Quality Values
// §
// §       weight = OWS ";" OWS "q=" qvalue
// §       qvalue = ( "0" [ "." 0*3DIGIT ] )
// §              / ( "1" [ "." 0*3("0") ] )
// §
// §     A sender of qvalue MUST NOT generate more than three digits after
// §     the decimal point.
func parseCoding(member string, index int) (acceptedCoding, bool) {
	coding, params, _ := strings.Cut(member, ";")
	coding = strings.TrimSpace(coding)
	if coding == "" || strings.ContainsAny(coding, " \t") {
		return acceptedCoding{}, false
	}
	ac := acceptedCoding{coding: coding, q: 1, index: index}
	for _, param := range strings.Split(params, ";") {
		name, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if !found || strings.TrimSpace(name) != "q" {
			continue
		}
		if q, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && q >= 0 && q <= 1 {
			ac.q = q
		} else {
			ac.q = 0
		}
		break
	}
	return ac, true
}

type codingPriority struct {
	q           float64
	specificity int
	order       int // position of the matching member in the field
	index       int // position in the list of available codings
}

// §     A request without any Accept-Encoding header field implies that the
// §     user agent has no preferences regarding content codings.  Although
// §     this allows the server to use any content coding in a response, it
// §     does not imply that the user agent will be able to correctly process
// §     all encodings.
//
// NegotiateEncoding returns the available codings acceptable to the client,
// most preferred first. Preference is by quality, then by how specifically
// the coding was named ("gzip" over "*"), then by its position in the field,
// then by its position in available. Codings with a quality of zero are not
// acceptable. Without an Accept-Encoding field, no coding is returned.
func NegotiateEncoding(header http.Header, available []string) []string {
	value := listField(header, "Accept-Encoding")
	accepted := parseAcceptEncoding(value)

	type candidate struct {
		coding string
		codingPriority
	}
	candidates := make([]candidate, 0, len(available))
	for i, coding := range available {
		p := priorityOf(coding, accepted, i)
		if p.q > 0 {
			candidates = append(candidates, candidate{coding, p})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.q != b.q {
			return a.q > b.q
		}
		if a.specificity != b.specificity {
			return a.specificity > b.specificity
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.index < b.index
	})

	preferred := make([]string, len(candidates))
	for i, c := range candidates {
		preferred[i] = c.coding
	}
	return preferred
}

// priorityOf returns the priority of the most specific member matching coding.
func priorityOf(coding string, accepted []acceptedCoding, index int) codingPriority {
	priority := codingPriority{order: -1, index: index}
	for _, ac := range accepted {
		specificity := 0
		if strings.EqualFold(ac.coding, coding) {
			specificity = 1
		} else if ac.coding != "*" {
			continue
		}
		p := codingPriority{q: ac.q, specificity: specificity, order: ac.index, index: index}
		if better(p, priority) {
			priority = p
		}
	}
	return priority
}

func better(p, than codingPriority) bool {
	if p.specificity != than.specificity {
		return p.specificity > than.specificity
	}
	if p.q != than.q {
		return p.q > than.q
	}
	return p.order > than.order
}

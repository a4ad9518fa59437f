// Package headerrules adds or overrides response header fields of served
// resources, selected by request path and query.
package headerrules

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

type Rules []Rule

type Rule struct {
	Prefix string `yaml:"prefix"`
	Path   string `yaml:"path"`
	// Cache-Control to use instead of the one generated for the resource
	Override string `yaml:"override"`
	// Cache-Control to use if none was generated
	Default string            `yaml:"default"`
	Query   map[string]string `yaml:"query"`
	Headers map[string]string `yaml:"headers"`
}

// Apply applies the first rule matching the request to the header.
// It reports whether a rule was found.
func (r Rules) Apply(header http.Header, req *http.Request) bool {
	log := zerolog.Ctx(req.Context())
	rule := r.find(req)
	if rule == nil {
		return false
	}
	log.Trace().Msgf("Applying header rule %+v", *rule)
	applyRule(*rule, header)
	return true
}

func applyRule(rule Rule, header http.Header) {
	if rule.Override != "" {
		header.Set("Cache-Control", rule.Override)
	} else if rule.Default != "" && header.Get("Cache-Control") == "" {
		header.Set("Cache-Control", rule.Default)
	}
	for name, value := range rule.Headers {
		header.Set(name, value)
	}
}

func (r Rules) find(req *http.Request) *Rule {
rulesLoop:
	for _, rule := range r {
		if rule.Path != "" && rule.Path != req.URL.Path {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(req.URL.Path, rule.Prefix) {
			continue
		}
		if len(rule.Query) > 0 {
			qry := req.URL.Query()
			for name, value := range rule.Query {
				if value == "" && !qry.Has(name) {
					continue rulesLoop
				} else if value != "" && qry.Get(name) != value {
					continue rulesLoop
				}
			}
		}
		return &rule
	}
	return nil
}

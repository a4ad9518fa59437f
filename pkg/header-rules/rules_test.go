package headerrules

import (
	"net/http"
	"testing"
)

func TestRuleFinder(t *testing.T) {
	makeReq := func(target string) *http.Request {
		req, _ := http.NewRequest("GET", target, nil)
		return req
	}

	rules := Rules{
		Rule{Prefix: "/assets/", Override: "public, max-age=31536000, immutable"},
		Rule{Path: "/feed", Query: map[string]string{"draft": ""}, Override: "no-store"},
		Rule{Override: "default"},
	}

	if rule := rules.find(makeReq("/")); rule == nil || rule.Override != "default" {
		t.Fatal("Incorrect rule")
	}
	if rule := rules.find(makeReq("/assets/app.js")); rule == nil || rule.Prefix != "/assets/" {
		t.Fatal("Incorrect rule")
	}
	if rule := rules.find(makeReq("/feed?draft")); rule == nil || rule.Override != "no-store" {
		t.Fatal("Incorrect rule")
	}
	if rule := rules.find(makeReq("/feed")); rule == nil || rule.Override != "default" {
		t.Fatal("Incorrect rule")
	}
	if rule := (Rules{}).find(makeReq("/")); rule != nil {
		t.Fatal("Rule found in empty rules")
	}
}

func TestApply(t *testing.T) {
	header := make(http.Header)
	ruleDefault := Rule{Default: "default"}
	ruleOverride := Rule{Override: "override", Headers: map[string]string{"X-Served-By": "serve-buffer"}}

	// try to apply default
	applyRule(ruleDefault, header)
	if cc := header.Get("Cache-Control"); cc != "default" {
		t.Fatalf("Cache-Control header wrong, is '%s'", cc)
	}

	// change cc and check default is not set
	header.Set("Cache-Control", "no-cache")
	applyRule(ruleDefault, header)
	if cc := header.Get("Cache-Control"); cc != "no-cache" {
		t.Fatalf("Cache-Control header wrong, is '%s'", cc)
	}

	// check that override works
	applyRule(ruleOverride, header)
	if cc := header.Get("Cache-Control"); cc != "override" {
		t.Fatalf("Cache-Control header wrong, is '%s'", cc)
	}
	if h := header.Get("X-Served-By"); h != "serve-buffer" {
		t.Fatalf("X-Served-By header wrong, is '%s'", h)
	}
}

func TestApplyReportsMatch(t *testing.T) {
	rules := Rules{Rule{Path: "/only"}}
	req, _ := http.NewRequest("GET", "/other", nil)
	if rules.Apply(make(http.Header), req) {
		t.Fatal("Rule applied to other path")
	}
	req, _ = http.NewRequest("GET", "/only", nil)
	if !rules.Apply(make(http.Header), req) {
		t.Fatal("Rule not applied")
	}
}

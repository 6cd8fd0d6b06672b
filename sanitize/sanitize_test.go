package sanitize

import (
	"strings"
	"testing"
)

func TestStripControlCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean string unchanged", "hello world", "hello world"},
		{"null byte removed", "hel\x00lo", "hello"},
		{"newline kept", "line1\nline2", "line1\nline2"},
		{"tab removed", "a\tb", "ab"},
		{"carriage return removed", "a\rb", "ab"},
		{"delete removed", "a\x7fb", "ab"},
		{"mixed controls", "\x01\x02abc\x1f\n", "abc\n"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripControlCharacters(tt.input); got != tt.want {
				t.Errorf("StripControlCharacters(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripControlCharacters_Idempotent(t *testing.T) {
	input := "a\x00b\x1fc\nd"
	once := StripControlCharacters(input)
	twice := StripControlCharacters(once)

	if once != twice {
		t.Errorf("not idempotent: %q != %q", once, twice)
	}
}

func TestStripHTMLTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text unchanged", "Hello, world", "Hello, world"},
		{"script block with content", "<script>x</script>Hello", "Hello"},
		{"script block case-insensitive", "<SCRIPT>alert(1)</SCRIPT>safe", "safe"},
		{"style block with content", "<style>body{}</style>text", "text"},
		{"simple tag", "a<b>bold</b>c", "aboldc"},
		{"entity-encoded decimal", "&#60;script&#62;x&#60;/script&#62;ok", "ok"},
		{"entity-encoded hex", "&#x3c;script&#x3e;x&#x3c;/script&#x3e;ok", "ok"},
		{"entity-encoded hex uppercase", "&#X3C;b&#X3E;ok", "ok"},
		{"named entity", "&lt;script&gt;x&lt;/script&gt;ok", "ok"},
		{"surrounding text preserved", "before <em>mid</em> after", "before mid after"},
		{"prose with on-word assignment", "once = fine", "once = fine"},
		{"prose naming a handler", "set the onclick = handler in docs", "set the onclick = handler in docs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTMLTags(tt.input); got != tt.want {
				t.Errorf("StripHTMLTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripHTMLTags_NestedBypass(t *testing.T) {
	out := StripHTMLTags("<<script>script>x<</script>/script>")

	if strings.Contains(out, "<script>") {
		t.Errorf("nested bypass survived: %q", out)
	}
}

func TestStripHTMLTags_EventHandlersAndSchemes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		forbids []string
	}{
		{"onclick attribute", `<div onclick="evil()">x</div>`, []string{"onclick", "evil"}},
		{"onerror unquoted", `<img src=x onerror=alert(1)>y`, []string{"onerror"}},
		{"handler in unterminated tag", `<img src=x onerror=alert(1)`, []string{"onerror", "alert"}},
		{"javascript scheme", `<a href="javascript:alert(1)">link</a>`, []string{"javascript:"}},
		{"javascript scheme mixed case", `<a href="JaVaScRiPt:alert(1)">link</a>`, []string{"alert"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := StripHTMLTags(tt.input)
			for _, bad := range tt.forbids {
				if strings.Contains(strings.ToLower(out), bad) {
					t.Errorf("StripHTMLTags(%q) = %q, still contains %q", tt.input, out, bad)
				}
			}
		})
	}
}

func TestStringFields(t *testing.T) {
	input := map[string]any{
		"description": "a\x00b",
		"count":       float64(3),
		"flag":        true,
		"nothing":     nil,
		"nested": map[string]any{
			"inner": "c\x1fd",
			"list":  []any{"e\x07f", float64(1)},
		},
	}

	out, ok := StringFields(input).(map[string]any)
	if !ok {
		t.Fatal("expected map output")
	}

	if out["description"] != "ab" {
		t.Errorf("description = %q, want 'ab'", out["description"])
	}
	if out["count"] != float64(3) {
		t.Errorf("count changed: %v", out["count"])
	}
	if out["flag"] != true {
		t.Errorf("flag changed: %v", out["flag"])
	}
	if out["nothing"] != nil {
		t.Errorf("nil changed: %v", out["nothing"])
	}

	nested := out["nested"].(map[string]any)
	if nested["inner"] != "cd" {
		t.Errorf("nested.inner = %q, want 'cd'", nested["inner"])
	}
	list := nested["list"].([]any)
	if list[0] != "ef" {
		t.Errorf("nested.list[0] = %q, want 'ef'", list[0])
	}
}

func TestStringFields_RewritesInPlace(t *testing.T) {
	input := map[string]any{"description": "a\x00b"}

	StringFields(input)

	// The caller's structure carries the cleaned values afterwards.
	if input["description"] != "ab" {
		t.Errorf("input not rewritten: %q", input["description"])
	}
}

func TestStringFields_Nil(t *testing.T) {
	if out := StringFields(nil); out != nil {
		t.Errorf("StringFields(nil) = %v, want nil", out)
	}
}

func TestContainsPrototypePollutionKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"proto key", `{"__proto__":{}}`, true},
		{"constructor key", `{"constructor":{"x":1}}`, true},
		{"prototype key", `{"prototype":1}`, true},
		{"case insensitive", `{"__PROTO__":{}}`, true},
		{"whitespace tolerant", `{ "__proto__" : {} }`, true},
		{"nested key", `{"a":{"b":{"__proto__":{}}}}`, true},
		{"key as value", `{"key":"__proto__"}`, false},
		{"clean object", `{"description":"hello"}`, false},
		{"empty string", "", false},
		{"whitespace only", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsPrototypePollutionKeys(tt.input); got != tt.want {
				t.Errorf("ContainsPrototypePollutionKeys(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHasPollutedKeys(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{"top-level proto", map[string]any{"__proto__": map[string]any{}}, true},
		{"nested constructor", map[string]any{"a": map[string]any{"constructor": 1}}, true},
		{"inside array element", []any{map[string]any{"prototype": 1}}, true},
		{"value only", map[string]any{"key": "__proto__"}, false},
		{"clean", map[string]any{"a": 1}, false},
		{"scalar", "hello", false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPollutedKeys(tt.input); got != tt.want {
				t.Errorf("HasPollutedKeys(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidBodySize(t *testing.T) {
	if !ValidBodySize(nil) {
		t.Error("nil body should be accepted")
	}
	if !ValidBodySize([]byte("{}")) {
		t.Error("small body should be accepted")
	}
	if !ValidBodySize(make([]byte, MaxBodyBytes)) {
		t.Error("body at the limit should be accepted")
	}
	if ValidBodySize(make([]byte, MaxBodyBytes+1)) {
		t.Error("oversized body should be rejected")
	}
}

// Package sanitize provides string-cleaning primitives applied to request
// input before validation: control-character removal, HTML/script stripping,
// pollution-key detection and body-size guarding. StringFields rewrites the
// decoded structure it is given; every other function is a pure function of
// its input.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxBodyBytes is the largest accepted request body, measured in UTF-8 bytes.
const MaxBodyBytes = 10 * 1024

// maxStripPasses bounds the fixed-point reduction in StripHTMLTags.
const maxStripPasses = 10

var (
	entityLT      = regexp.MustCompile(`(?i)&(#0*60|#x0*3c|lt);`)
	entityGT      = regexp.MustCompile(`(?i)&(#0*62|#x0*3e|gt);`)
	scriptBlock   = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleBlock    = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	eventHandler  = regexp.MustCompile(`(?i)\bon\w+\s*=\s*("[^"]*"|'[^']*'|[^\s>]*)`)
	jsScheme      = regexp.MustCompile(`(?i)javascript:[^"'\s>]*`)
	tagRegion     = regexp.MustCompile(`<[^>]*>?`)
	anyTag        = regexp.MustCompile(`<[^>]*>`)
	pollutionKeys = regexp.MustCompile(`(?i)"\s*(__proto__|constructor|prototype)\s*"\s*:`)
)

// StripControlCharacters removes ASCII and Unicode control characters from s,
// keeping newlines. Idempotent; strings without control characters are
// returned unchanged.
func StripControlCharacters(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// StripHTMLTags removes tag-delimited markup from s: script and style blocks
// including their content, inline event-handler attributes, javascript:
// scheme URLs, and any remaining tags. Entity-encoded angle brackets are
// decoded first so they cannot smuggle markup past the tag pass. Handler
// attributes are stripped only inside tag regions, including tags left
// unterminated, so prose such as "once = fine" survives untouched. The
// reduction repeats until the string stops changing, which defeats nested
// bypasses such as "<<script>script>". Surrounding plain text is preserved.
func StripHTMLTags(s string) string {
	for i := 0; i < maxStripPasses; i++ {
		prev := s
		s = entityLT.ReplaceAllString(s, "<")
		s = entityGT.ReplaceAllString(s, ">")
		s = scriptBlock.ReplaceAllString(s, "")
		s = styleBlock.ReplaceAllString(s, "")
		s = tagRegion.ReplaceAllStringFunc(s, func(region string) string {
			return eventHandler.ReplaceAllString(region, "")
		})
		s = jsScheme.ReplaceAllString(s, "")
		s = anyTag.ReplaceAllString(s, "")
		if s == prev {
			break
		}
	}
	return s
}

// StringFields walks an arbitrarily nested decoded-JSON structure and strips
// control characters from every string value. Maps and slices are rewritten
// in place; the caller owns the decoded structure. Non-string leaves pass
// through unchanged; nil input returns nil.
func StringFields(v any) any {
	switch vv := v.(type) {
	case string:
		return StripControlCharacters(vv)
	case map[string]any:
		for k, e := range vv {
			vv[k] = StringFields(e)
		}
		return vv
	case []any:
		for i, e := range vv {
			vv[i] = StringFields(e)
		}
		return vv
	default:
		return v
	}
}

// ContainsPrototypePollutionKeys scans a raw, unparsed JSON document for
// "__proto__", "constructor" or "prototype" appearing in key position at any
// depth. It must run before the body is decoded and merged into untyped
// maps, where smuggled keys would otherwise survive. Empty input is clean.
func ContainsPrototypePollutionKeys(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	return pollutionKeys.MatchString(raw)
}

// HasPollutedKeys is the post-parse complement: it walks an already decoded
// structure, including array elements, looking for the same forbidden keys.
func HasPollutedKeys(v any) bool {
	switch vv := v.(type) {
	case map[string]any:
		for k, e := range vv {
			switch strings.ToLower(k) {
			case "__proto__", "constructor", "prototype":
				return true
			}
			if HasPollutedKeys(e) {
				return true
			}
		}
	case []any:
		for _, e := range vv {
			if HasPollutedKeys(e) {
				return true
			}
		}
	}
	return false
}

// ValidBodySize reports whether a raw request body is within MaxBodyBytes.
// An empty body is accepted.
func ValidBodySize(body []byte) bool {
	return len(body) <= MaxBodyBytes
}

// Package decklist parses pasted card-list text into structured import
// requests. Two dialects are supported: plain lists ("4 Lightning Bolt (LEA) 1")
// and sectioned exports whose Deck/Commander/Companion/Sideboard headers tag
// sideboard membership. Parsing never touches the network or the database.
package decklist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MinQuantity and MaxQuantity bound the leading quantity token.
	MinQuantity = 1
	MaxQuantity = 99
)

// Request is one successfully parsed card line.
type Request struct {
	Quantity        int
	Name            string
	SetCode         string // upper-cased, empty when absent
	CollectorNumber string // empty when absent
	Foil            bool
	Sideboard       bool   // set by the sectioned dialect, never by the tokenizer
	Raw             string // original line, kept for error reporting
}

// Failure records a line that was neither a skip-line nor parseable.
type Failure struct {
	Line   string `json:"line"`
	Reason string `json:"reason"`
}

var (
	// Optional "(SET)" plus collector number following the card name.
	// Collector numbers: "148", "307b", or list-style "BBD-190".
	setRE = regexp.MustCompile(`\(([A-Za-z0-9]{2,6})\)(?:\s+([A-Za-z0-9][A-Za-z0-9-]*))?`)

	// Foil markers found in the wild.
	foilRE = regexp.MustCompile(`(?i)\*f\*|\(foil\)|\[foil\]|<foil>|\+foil|\bfoil\b`)

	// Comment markers and section keywords; these lines are never card requests.
	skipRE = regexp.MustCompile(`(?i)^\s*(//|#|--|SB:|Sideboard|Commander|Companion|Deck).*$`)

	// A line that is exactly one section keyword toggles sideboard state.
	sectionRE = regexp.MustCompile(`(?i)^\s*(Deck|Commander|Companion|Sideboard)\s*$`)

	// Leading quantity: "4 ", "4x ", "x4 ".
	qtyRE = regexp.MustCompile(`^[xX]?(\d+)[xX]?\s+`)
)

// ParseLine parses one line into a Request. It returns nil for blank lines,
// skip-lines, and anything that fails the grammar; it never returns an error.
// Callers decide whether a nil result counts as a failure (it does not for
// blank/comment lines).
func ParseLine(raw string) *Request {
	line := strings.TrimSpace(raw)
	if line == "" {
		return nil
	}
	if skipRE.MatchString(line) {
		return nil
	}

	// Detect and strip foil markers before anything else so "(foil)" is
	// never mistaken for a set code.
	foil := foilRE.MatchString(line)
	if foil {
		line = strings.TrimSpace(foilRE.ReplaceAllString(line, ""))
	}

	m := qtyRE.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	quantity, err := strconv.Atoi(m[1])
	if err != nil || quantity < MinQuantity || quantity > MaxQuantity {
		return nil
	}
	rest := line[len(m[0]):]

	var setCode, collector string
	if sm := setRE.FindStringSubmatchIndex(rest); sm != nil {
		setCode = strings.ToUpper(rest[sm[2]:sm[3]])
		if sm[4] >= 0 {
			collector = rest[sm[4]:sm[5]]
		}
		rest = strings.TrimSpace(rest[:sm[0]])
	}

	name := strings.Trim(strings.TrimSpace(rest), `"'`)
	if name == "" {
		return nil
	}

	return &Request{
		Quantity:        quantity,
		Name:            name,
		SetCode:         setCode,
		CollectorNumber: collector,
		Foil:            foil,
		Raw:             strings.TrimSpace(raw),
	}
}

// Parse parses a plain-dialect decklist. Lines are independent; there is no
// section state. Both result slices preserve input order.
func Parse(text string) ([]Request, []Failure) {
	var parsed []Request
	var failures []Failure

	for _, raw := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(raw)
		if stripped == "" || skipRE.MatchString(stripped) {
			continue
		}
		req := ParseLine(raw)
		if req == nil {
			failures = append(failures, Failure{
				Line:   stripped,
				Reason: "could not parse line; expected format: '4 Card Name (SET)'",
			})
			continue
		}
		parsed = append(parsed, *req)
	}
	return parsed, failures
}

// ParseSectioned parses the sectioned export dialect. Section header lines
// (Deck / Commander / Companion / Sideboard, case-insensitive) switch the
// sideboard flag for subsequent card lines and are never parsed as cards.
func ParseSectioned(text string) ([]Request, []Failure) {
	var parsed []Request
	var failures []Failure
	inSideboard := false

	for _, raw := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(raw)
		if stripped == "" {
			continue
		}

		if m := sectionRE.FindStringSubmatch(stripped); m != nil {
			inSideboard = strings.EqualFold(m[1], "sideboard")
			continue
		}
		if skipRE.MatchString(stripped) {
			continue
		}

		req := ParseLine(raw)
		if req == nil {
			failures = append(failures, Failure{
				Line:   stripped,
				Reason: "could not parse line; expected: qty name (SET) collector#",
			})
			continue
		}
		req.Sideboard = inSideboard
		parsed = append(parsed, *req)
	}
	return parsed, failures
}

// FormatLine renders a request in the canonical plain-dialect form:
// "{qty} {name} ({SET}) {collector} *F*". Parsing the result yields the
// same structured fields back.
func FormatLine(r Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s", r.Quantity, r.Name)
	if r.SetCode != "" {
		fmt.Fprintf(&b, " (%s)", strings.ToUpper(r.SetCode))
		if r.CollectorNumber != "" {
			fmt.Fprintf(&b, " %s", r.CollectorNumber)
		}
	}
	if r.Foil {
		b.WriteString(" *F*")
	}
	return b.String()
}

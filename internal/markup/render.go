// Package markup renders the small markdown-like dialect used in quiz
// questions and explanations into a flat block/node tree.
package markup

import (
	"regexp"
	"strings"
)

// BlockKind distinguishes paragraphs from headings.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
)

func (k BlockKind) String() string {
	if k == Heading {
		return "heading"
	}
	return "paragraph"
}

// MarshalText encodes the kind by name.
func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// NodeKind identifies an inline node.
type NodeKind int

const (
	Text NodeKind = iota
	Bold
	Italic
	Strike
	Code
	Fraction
	Superscript
)

func (k NodeKind) String() string {
	switch k {
	case Text:
		return "text"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Strike:
		return "strike"
	case Code:
		return "code"
	case Fraction:
		return "fraction"
	case Superscript:
		return "superscript"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Block is one line of rendered input.
type Block struct {
	ID    int       `json:"id"`
	Kind  BlockKind `json:"kind"`
	Level int       `json:"level,omitempty"` // 1-6 for headings
	Nodes []Node    `json:"nodes"`
}

// Node is an inline element. Styled spans (bold, italic, strike, code)
// carry their content in Children; math nodes carry their digits.
type Node struct {
	ID          int      `json:"id"`
	Kind        NodeKind `json:"kind"`
	Text        string   `json:"text,omitempty"`
	Numerator   string   `json:"numerator,omitempty"`
	Denominator string   `json:"denominator,omitempty"`
	Children    []Node   `json:"children,omitempty"`
}

var (
	headingLine = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	fraction    = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
	exponent    = regexp.MustCompile(`\^(\d+)`)
)

// spanPatterns are tried at every scan step. The earliest match wins;
// on a tie the pattern listed first wins.
var spanPatterns = []struct {
	kind NodeKind
	re   *regexp.Regexp
}{
	{Bold, regexp.MustCompile(`\*\*(.*?)\*\*`)},
	{Italic, regexp.MustCompile(`_(.*?)_`)},
	{Strike, regexp.MustCompile(`~~(.*?)~~`)},
	{Code, regexp.MustCompile("`(.*?)`")},
}

// renderer hands out ids for one Render call.
type renderer struct {
	next int
}

func (r *renderer) id() int {
	id := r.next
	r.next++
	return id
}

// Render parses text into blocks, one per line. Lines starting with one
// to six '#' and whitespace become headings. Render never fails:
// anything it does not recognize is kept as literal text.
func Render(text string) []Block {
	if text == "" {
		return nil
	}

	r := &renderer{}
	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		b := Block{ID: r.id(), Kind: Paragraph}
		content := line
		if m := headingLine.FindStringSubmatch(line); m != nil {
			b.Kind = Heading
			b.Level = len(m[1])
			content = m[2]
		}
		b.Nodes = r.inline(content)
		blocks = append(blocks, b)
	}
	return blocks
}

// inline scans s for styled spans. Spans do not nest: once a span is
// consumed scanning resumes after its closing marker.
func (r *renderer) inline(s string) []Node {
	var nodes []Node
	for s != "" {
		kind, loc := earliestSpan(s)
		if loc == nil {
			nodes = append(nodes, r.math(s)...)
			break
		}
		if loc[0] > 0 {
			nodes = append(nodes, r.math(s[:loc[0]])...)
		}
		span := Node{ID: r.id(), Kind: kind}
		span.Children = r.math(s[loc[2]:loc[3]])
		nodes = append(nodes, span)
		s = s[loc[1]:]
	}
	return nodes
}

func earliestSpan(s string) (NodeKind, []int) {
	var (
		bestKind NodeKind
		best     []int
	)
	for _, p := range spanPatterns {
		loc := p.re.FindStringSubmatchIndex(s)
		if loc != nil && (best == nil || loc[0] < best[0]) {
			bestKind, best = p.kind, loc
		}
	}
	return bestKind, best
}

// math splits plain text into text, fraction and superscript nodes.
// Fractions are recognized before exponents. Digits right after a caret
// belong to the exponent, so such a match only gets its fraction slash.
func (r *renderer) math(s string) []Node {
	var (
		nodes   []Node
		pending strings.Builder
	)
	last := 0
	for _, loc := range fraction.FindAllStringSubmatchIndex(s, -1) {
		num, den := s[loc[2]:loc[3]], s[loc[4]:loc[5]]
		pending.WriteString(s[last:loc[0]])
		last = loc[1]
		if loc[0] > 0 && s[loc[0]-1] == '^' {
			pending.WriteString(num + "⁄" + den)
			continue
		}
		nodes = append(nodes, r.exponents(pending.String())...)
		pending.Reset()
		nodes = append(nodes, Node{
			ID:          r.id(),
			Kind:        Fraction,
			Text:        num + "⁄" + den,
			Numerator:   num,
			Denominator: den,
		})
	}
	pending.WriteString(s[last:])
	return append(nodes, r.exponents(pending.String())...)
}

func (r *renderer) exponents(s string) []Node {
	var nodes []Node
	for _, part := range splitMatches(s, exponent) {
		if part.match == nil {
			nodes = append(nodes, Node{ID: r.id(), Kind: Text, Text: part.text})
			continue
		}
		nodes = append(nodes, Node{ID: r.id(), Kind: Superscript, Text: part.match[1]})
	}
	return nodes
}

type segment struct {
	text  string
	match []string // submatches when this segment matched re
}

// splitMatches cuts s into alternating literal and matched segments.
// Empty literal segments are dropped.
func splitMatches(s string, re *regexp.Regexp) []segment {
	var out []segment
	last := 0
	for _, loc := range re.FindAllStringSubmatchIndex(s, -1) {
		if loc[0] > last {
			out = append(out, segment{text: s[last:loc[0]]})
		}
		m := make([]string, len(loc)/2)
		for i := range m {
			m[i] = s[loc[2*i]:loc[2*i+1]]
		}
		out = append(out, segment{text: m[0], match: m})
		last = loc[1]
	}
	if last < len(s) {
		out = append(out, segment{text: s[last:]})
	}
	return out
}

const superscriptDigits = "⁰¹²³⁴⁵⁶⁷⁸⁹"

// SuperscriptGlyphs converts ASCII digits to their superscript forms.
func SuperscriptGlyphs(digits string) string {
	glyphs := []rune(superscriptDigits)
	var b strings.Builder
	for _, c := range digits {
		if c >= '0' && c <= '9' {
			b.WriteRune(glyphs[c-'0'])
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// PlainText flattens nodes into a string using fraction slashes and
// superscript glyphs.
func PlainText(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case Superscript:
			b.WriteString(SuperscriptGlyphs(n.Text))
		case Bold, Italic, Strike, Code:
			b.WriteString(PlainText(n.Children))
		default:
			b.WriteString(n.Text)
		}
	}
	return b.String()
}

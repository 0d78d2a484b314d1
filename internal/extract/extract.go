// Package extract turns segmented blocks and tabular rows into vendor
// candidates.
package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/vendor-intake/internal/model"
	"github.com/sells-group/vendor-intake/internal/patterns"
)

// contactLabelRe matches a leading label such as "Phone:" or "E-mail -".
var contactLabelRe = regexp.MustCompile(`(?i)^(?:phone|ph|tel|telephone|mobile|cell|email|e-mail|mail|web|website|url|site)\b\s*[:#.\-]?`)

// Extractor builds vendor candidates. It holds no mutable state and is safe
// for concurrent use.
type Extractor struct {
	logos Directory
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDirectory sets the logo lookup table consulted for each candidate.
func WithDirectory(d Directory) Option {
	return func(e *Extractor) {
		e.logos = d
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// lineRole records what a block line was used for.
type lineRole int

const (
	roleNote lineRole = iota
	roleName
	roleToken
	roleAddress
)

// FromBlock extracts a candidate from one block. Confidence is left at zero
// for the scorer.
func (e *Extractor) FromBlock(block model.RawBlock) model.VendorCandidate {
	lines := block.Lines
	if len(lines) == 0 {
		lines = splitLines(block.Text)
	}

	c := model.VendorCandidate{
		Source: model.SourceRef{Block: block.Index, StartLine: block.StartLine},
	}

	// Contact tokens are searched over the full block text, once each.
	var tokens []string
	if email, ok := patterns.ExtractEmail(block.Text); ok {
		c.Email = strings.ToLower(email)
		tokens = append(tokens, email)
	}
	if phone, ok := patterns.ExtractPhone(block.Text); ok {
		c.Phone = phone
		tokens = append(tokens, phone)
	}
	if site, ok := patterns.ExtractWebsite(block.Text); ok {
		c.Website = site
		tokens = append(tokens, site)
	}

	roles := make([]lineRole, len(lines))

	nameIdx := -1
	for i, line := range lines {
		if patterns.IsCompanyNameLike(line) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 && len(lines) > 0 {
		nameIdx = 0
	}
	if nameIdx >= 0 {
		c.Name = lines[nameIdx]
		roles[nameIdx] = roleName
	}

	for i, line := range lines {
		if roles[i] == roleNote && isTokenOnly(line, tokens) {
			roles[i] = roleToken
		}
	}

	c.Address = assignAddress(lines, roles)

	var notes []string
	for i, line := range lines {
		if roles[i] == roleNote {
			notes = append(notes, line)
		}
	}
	c.Notes = strings.Join(notes, "\n")

	c.FieldHits = hitsOf(c)
	c.LogoURL = e.logos.Lookup(c.Name)
	return c
}

// isTokenOnly reports whether line holds nothing but extracted contact
// tokens, separators and an optional contact label.
func isTokenOnly(line string, tokens []string) bool {
	rest := line
	found := false
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		idx := strings.Index(rest, tok)
		if idx < 0 {
			continue
		}
		found = true
		rest = rest[:idx] + " " + rest[idx+len(tok):]
	}
	if !found {
		return false
	}

	rest = strings.TrimSpace(rest)
	rest = contactLabelRe.ReplaceAllString(rest, "")
	for _, r := range rest {
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f
}

func hitsOf(c model.VendorCandidate) model.FieldSet {
	var s model.FieldSet
	for _, f := range model.AllFields() {
		if strings.TrimSpace(c.Value(f)) != "" {
			s = s.With(f)
		}
	}
	return s
}

func splitLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

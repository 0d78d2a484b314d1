package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"contact line", "Contact: jane.doe@example.com, phone 555-1234", "jane.doe@example.com", true},
		{"first match wins", "a@one.com b@two.com", "a@one.com", true},
		{"plus and percent", "x+tag%1@mail.example.org", "x+tag%1@mail.example.org", true},
		{"trailing period", "write to ops@acme.io.", "ops@acme.io", true},
		{"short tld rejected", "bob@host.c", "", false},
		{"no match", "no address here", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractEmail(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"parenthesized area code", "Call us at (212) 555-7890 anytime", "(212) 555-7890", true},
		{"dashes", "Call 555-111-2222", "555-111-2222", true},
		{"dots", "tel 212.555.7890", "212.555.7890", true},
		{"seven digits", "phone 555-1234", "555-1234", true},
		{"first match wins", "555-333-4444 or 555-999-0000", "555-333-4444", true},
		{"zip code is not a phone", "Springfield, IL 62701", "", false},
		{"unseparated digits", "5551112222", "", false},
		{"no match", "no digits", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractPhone(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractWebsite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"https", "see https://acme.com/about for more", "https://acme.com/about", true},
		{"www", "Visit www.acme.com", "www.acme.com", true},
		{"uppercase scheme", "HTTP://ACME.COM", "HTTP://ACME.COM", true},
		{"trailing punctuation", "Visit www.acme.com.", "www.acme.com", true},
		{"email is not a website", "sales@acme.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractWebsite(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCompanyNameLike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want bool
	}{
		{"Ace Hardware", true},
		{"Budget Supplies", true},
		{"Smith & Sons, Ltd.", true},
		{"O'Brien-Walsh Plumbing", true},
		{"acme widgets llc", true},
		{"3M Company", true},
		{"24/7 Services", true},
		{"123 Main St", false},
		{"Call 555-111-2222", false},
		{"ace@hardware.com", false},
		{"A", false},
		{"", false},
		{longTitle(), false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsCompanyNameLike(tt.line))
		})
	}
}

func longTitle() string {
	s := ""
	for len(s) < 120 {
		s += "Word "
	}
	return s
}

func TestDigits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2125557890", Digits("(212) 555-7890"))
	assert.Equal(t, "", Digits("none"))
}

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ace hardware", NormalizeKey("  Ace   Hardware "))
	assert.Equal(t, "smith sons ltd", NormalizeKey("Smith & Sons, Ltd."))
	assert.Equal(t, NormalizeKey("ACE HARDWARE"), NormalizeKey("ace-hardware"))
}

package extract

import (
	"regexp"
	"strings"
)

// abbrToState maps lowercase state abbreviations to lowercase full names.
var abbrToState = map[string]string{
	"al": "alabama", "ak": "alaska", "az": "arizona", "ar": "arkansas",
	"ca": "california", "co": "colorado", "ct": "connecticut", "de": "delaware",
	"fl": "florida", "ga": "georgia", "hi": "hawaii", "id": "idaho",
	"il": "illinois", "in": "indiana", "ia": "iowa", "ks": "kansas",
	"ky": "kentucky", "la": "louisiana", "me": "maine", "md": "maryland",
	"ma": "massachusetts", "mi": "michigan", "mn": "minnesota", "ms": "mississippi",
	"mo": "missouri", "mt": "montana", "ne": "nebraska", "nv": "nevada",
	"nh": "new hampshire", "nj": "new jersey", "nm": "new mexico", "ny": "new york",
	"nc": "north carolina", "nd": "north dakota", "oh": "ohio", "ok": "oklahoma",
	"or": "oregon", "pa": "pennsylvania", "ri": "rhode island", "sc": "south carolina",
	"sd": "south dakota", "tn": "tennessee", "tx": "texas", "ut": "utah",
	"vt": "vermont", "va": "virginia", "wa": "washington", "wv": "west virginia",
	"wi": "wisconsin", "wy": "wyoming", "dc": "district of columbia",
	"pr": "puerto rico",
}

var (
	zipSuffixRe = regexp.MustCompile(`^(.*?)[\s,]+(\d{5}(?:-\d{4})?)$`)
	// "Springfield, IL" with an upper-case state code and no ZIP.
	cityStateRe = regexp.MustCompile(`^[A-Za-z][A-Za-z .'\-]*,\s*([A-Z]{2})$`)
	streetRe    = regexp.MustCompile(`(?i)^(?:\d+[a-z]?\s+\S|p\.?\s*o\.?\s*box\b|suite\b|ste\.?\s|unit\b|apt\.?\s|floor\b)`)
)

// hasLocality reports whether line ends in a postal locality: a state
// followed by a ZIP, or a "City, ST" pair.
func hasLocality(line string) bool {
	line = strings.TrimRight(strings.TrimSpace(line), ".;")

	if m := zipSuffixRe.FindStringSubmatch(line); m != nil {
		return endsWithState(strings.TrimRight(m[1], " ,."))
	}

	if m := cityStateRe.FindStringSubmatch(line); m != nil {
		_, ok := abbrToState[strings.ToLower(m[1])]
		return ok
	}
	return false
}

// endsWithState checks whether text ends with a state code or full name as
// a whole word.
func endsWithState(text string) bool {
	lower := strings.ToLower(text)
	if lower == "" {
		return false
	}

	fields := strings.FieldsFunc(lower, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 0 {
		return false
	}
	last := strings.TrimSuffix(fields[len(fields)-1], ".")
	if _, ok := abbrToState[last]; ok && len(fields) > 1 {
		return true
	}

	for _, full := range abbrToState {
		if lower == full || strings.HasSuffix(lower, " "+full) || strings.HasSuffix(lower, ","+full) {
			return true
		}
	}
	return false
}

func isStreetLine(line string) bool {
	return streetRe.MatchString(strings.TrimSpace(line))
}

// assignAddress marks locality lines, and the street lines directly above
// them, as address lines. It returns them joined with ", ".
func assignAddress(lines []string, roles []lineRole) string {
	var parts []string
	for i, line := range lines {
		if roles[i] != roleNote || !hasLocality(line) {
			continue
		}

		// Walk up through unassigned street lines that belong to this
		// locality.
		first := i
		for j := i - 1; j >= 0; j-- {
			if roles[j] != roleNote || !isStreetLine(lines[j]) {
				break
			}
			first = j
		}
		for j := first; j <= i; j++ {
			roles[j] = roleAddress
			parts = append(parts, strings.TrimRight(lines[j], " ,"))
		}
	}
	return strings.Join(parts, ", ")
}

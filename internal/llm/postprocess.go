package llm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tripdocs/extractor/constants"
)

// Trip classification windows (characters of lower-cased source text).
const (
	repetitionWindow = 400 // destination reappearing this soon marks a restated outbound leg
	plausibleBefore  = 50
	plausibleAfter   = 100
)

var (
	reSpaces    = regexp.MustCompile(`\s+`)
	reNonTicket = regexp.MustCompile(`[^0-9 ]`)

	honorifics = map[string]struct{}{
		"MR": {}, "MS": {}, "MRS": {}, "DR": {}, "PROF": {},
	}

	titleCaser = cases.Title(language.English)
)

// CleanPersonName strips honorific tokens and punctuation noise, keeps
// letters (including accented), spaces, hyphens and apostrophes, collapses
// whitespace and upper-cases. An empty survivor yields "".
func CleanPersonName(s string) string {
	var kept []string
	for _, tok := range strings.Fields(s) {
		base := strings.ToUpper(strings.TrimSuffix(tok, "."))
		if _, ok := honorifics[base]; ok {
			continue
		}
		kept = append(kept, tok)
	}

	var b strings.Builder
	for _, r := range strings.Join(kept, " ") {
		if unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'' {
			b.WriteRune(r)
		}
	}
	out := reSpaces.ReplaceAllString(b.String(), " ")
	return strings.ToUpper(strings.TrimSpace(out))
}

// CleanTicketNumber strips everything but digits and spaces and collapses
// whitespace. An empty survivor yields "".
func CleanTicketNumber(s string) string {
	out := reNonTicket.ReplaceAllString(s, "")
	return strings.TrimSpace(reSpaces.ReplaceAllString(out, " "))
}

// ClassifyTrip decides one_way vs round_trip by scanning the full source text
// for a genuine opposite-direction occurrence of the origin after the
// outbound leg. Matching is case-insensitive on the raw city strings.
func ClassifyTrip(sourceText, from, to string) string {
	text := strings.ToLower(sourceText)
	origin := strings.ToLower(strings.TrimSpace(from))
	dest := strings.ToLower(strings.TrimSpace(to))
	if origin == "" || dest == "" {
		return constants.TripOneWay
	}

	oi := strings.Index(text, origin)
	if oi < 0 {
		return constants.TripOneWay
	}
	di := indexFrom(text, dest, oi)
	if di < 0 {
		return constants.TripOneWay
	}

	pos := di + len(dest)
	for {
		occ := indexFrom(text, origin, pos)
		if occ < 0 {
			return constants.TripOneWay
		}
		pos = occ + len(origin)

		// restated outbound leg: the destination follows again shortly
		end := pos + repetitionWindow
		if end > len(text) {
			end = len(text)
		}
		if strings.Contains(text[pos:end], dest) {
			continue
		}

		// incidental mention: no date or flight number nearby
		lo := occ - plausibleBefore
		if lo < 0 {
			lo = 0
		}
		hi := occ + plausibleAfter
		if hi > len(text) {
			hi = len(text)
		}
		if !containsDigit(text[lo:hi]) {
			continue
		}

		return constants.TripRoundTrip
	}
}

func indexFrom(s, sub string, from int) int {
	if from >= len(s) {
		return -1
	}
	i := strings.Index(s[from:], sub)
	if i < 0 {
		return -1
	}
	return from + i
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// PostProcess applies the deterministic cleanups and, for flight records, the
// trip classifier. The classifier always overrides the model's own
// tripType/returnDate guess: one_way forces returnDate to null, round_trip
// retains the model's returnDate. Runs between the two completion passes.
func PostProcess(rec *CandidateRecord, sourceText string) {
	switch rec.Kind {
	case constants.Flight:
		cleanNameField(rec, "passengerName")
		cleanTicketField(rec, "ticketNumber")
		upperField(rec, "overallFrom")
		upperField(rec, "overallTo")
		upperField(rec, "currency")

		from, _ := rec.StringField("overallFrom")
		to, _ := rec.StringField("overallTo")
		trip := ClassifyTrip(sourceText, from, to)
		rec.Fields["tripType"] = trip
		if trip == constants.TripOneWay {
			rec.Fields["returnDate"] = nil
		}
	case constants.Hotel:
		cleanNameField(rec, "guestName")
		upperField(rec, "hotelCity")
		upperField(rec, "currency")
		titleField(rec, "hotelName")
	}
	rec.Complete()
}

func cleanNameField(rec *CandidateRecord, key string) {
	s, ok := rec.StringField(key)
	if !ok {
		return
	}
	if cleaned := CleanPersonName(s); cleaned != "" {
		rec.Fields[key] = cleaned
	} else {
		rec.Fields[key] = nil
	}
}

func cleanTicketField(rec *CandidateRecord, key string) {
	s, ok := rec.StringField(key)
	if !ok {
		return
	}
	if cleaned := CleanTicketNumber(s); cleaned != "" {
		rec.Fields[key] = cleaned
	} else {
		rec.Fields[key] = nil
	}
}

func upperField(rec *CandidateRecord, key string) {
	if s, ok := rec.StringField(key); ok {
		rec.Fields[key] = strings.ToUpper(strings.TrimSpace(s))
	}
}

func titleField(rec *CandidateRecord, key string) {
	if s, ok := rec.StringField(key); ok {
		rec.Fields[key] = titleCaser.String(strings.ToLower(strings.TrimSpace(s)))
	}
}

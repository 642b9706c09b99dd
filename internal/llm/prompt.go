package llm

import (
	"encoding/json"
	"strings"
)

// DefaultInputCharBudget caps how much source text goes into the prompt.
const DefaultInputCharBudget = 12000

// BuildSystemPrompt states the output contract: exactly one JSON object
// tagged "flight" or "hotel", plus the field-level extraction rules and both
// target schemas.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a travel receipt parser. Read the document text and return EXACTLY ONE JSON object, nothing else.",
		`The object carries a "type" tag: "flight" for airline receipts, "hotel" for hotel receipts, and must match the corresponding JSON Schema below.`,
		`Dates are "YYYY-MM-DD" or null.`,
		"City fields contain the city name only, upper-case; never an airport code or a country.",
		`Person names are "FIRST LAST", upper-case, with honorifics (MR, MRS, MS, DR, PROF) removed.`,
		"For flights, overallFrom and overallTo are the true origin and final destination of the outbound journey, never a layover; departureDate is the first leg's date; set tripType and returnDate only when a genuine opposite-direction return leg exists, otherwise tripType is \"one_way\" and returnDate is null.",
		"totalPrice is a bare non-negative number: the full amount paid including taxes and fees.",
		"currency is the 3-letter code.",
		"bookingReference (flight) or receiptNumber (hotel) is the single most prominent reference shown on the document.",
		"hotelName is title-cased.",
		"Flight schema:\n" + mustJSON(BuildFlightJSONSchema()),
		"Hotel schema:\n" + mustJSON(BuildHotelJSONSchema()),
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt packages the source file name and the normalized text,
// truncated to the configured budget to bound cost.
func BuildUserPrompt(req ExtractRequest, budget int) string {
	if budget <= 0 {
		budget = DefaultInputCharBudget
	}
	text := req.Text
	if len(text) > budget {
		text = text[:budget] + "\n…(truncated)"
	}

	var b strings.Builder
	if req.SourceFile != "" {
		b.WriteString("Filename: ")
		b.WriteString(req.SourceFile)
		b.WriteString("\n\n")
	}
	b.WriteString("Document text:\n")
	b.WriteString(text)
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

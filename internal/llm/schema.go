package llm

import "github.com/tripdocs/extractor/constants"

// Required field sets per record tag. A field may be null, never missing.
var (
	flightRequired = []string{
		"passengerName", "bookingReference", "ticketNumber", "tripType",
		"overallFrom", "overallTo", "departureDate", "returnDate",
		"currency", "totalPrice",
	}
	hotelRequired = []string{
		"guestName", "hotelName", "receiptNumber", "hotelCity",
		"checkInDate", "checkOutDate", "currency", "totalPrice",
	}
)

// RequiredKeys returns the required field set for a record tag.
func RequiredKeys(kind constants.RecordKind) []string {
	if kind == constants.Flight {
		return flightRequired
	}
	return hotelRequired
}

// BuildFlightJSONSchema returns the flight schema (draft 2020-12 subset) as a
// generic map. It is embedded in the prompt and used locally to validate.
func BuildFlightJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"type":             map[string]any{"const": "flight"},
			"passengerName":    nullableString(),
			"bookingReference": nullableString(),
			"ticketNumber":     nullableString(),
			"tripType": map[string]any{
				"enum": []any{constants.TripOneWay, constants.TripRoundTrip, nil},
			},
			"overallFrom":   nullableString(),
			"overallTo":     nullableString(),
			"departureDate": dateProp(),
			"returnDate":    dateProp(),
			"currency":      currencyProp(),
			"totalPrice":    priceProp(),
		},
		"required": append([]string{"type"}, flightRequired...),
	}
}

// BuildHotelJSONSchema returns the hotel schema as a generic map.
func BuildHotelJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"type":          map[string]any{"const": "hotel"},
			"guestName":     nullableString(),
			"hotelName":     nullableString(),
			"receiptNumber": nullableString(),
			"hotelCity":     nullableString(),
			"checkInDate":   dateProp(),
			"checkOutDate":  dateProp(),
			"currency":      currencyProp(),
			"totalPrice":    priceProp(),
		},
		"required": append([]string{"type"}, hotelRequired...),
	}
}

// schemaFor picks the validation schema for a record's kind.
func schemaFor(kind constants.RecordKind) map[string]any {
	if kind == constants.Flight {
		return BuildFlightJSONSchema()
	}
	return BuildHotelJSONSchema()
}

func nullableString() map[string]any {
	return map[string]any{"type": []any{"string", "null"}}
}

func dateProp() map[string]any {
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			map[string]any{"type": "null"},
		},
	}
}

func currencyProp() map[string]any {
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": "string", "pattern": `^[A-Z]{3}$`},
			map[string]any{"type": "null"},
		},
	}
}

// priceProp keeps totalPrice lenient on type but non-negative when numeric.
func priceProp() map[string]any {
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": "number", "minimum": 0.0},
			map[string]any{"type": "string"},
			map[string]any{"type": "null"},
		},
	}
}

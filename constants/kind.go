package constants

// RecordKind discriminates the two receipt schemas.
type RecordKind string

// Stable values (these exact strings appear in model output and the eval log).
const (
	Flight RecordKind = "flight"
	Hotel  RecordKind = "hotel"
)

// IsRecordKind reports whether s is a known record tag.
func IsRecordKind(s string) bool {
	return s == string(Flight) || s == string(Hotel)
}

// Trip types for flight records.
const (
	TripOneWay    = "one_way"
	TripRoundTrip = "round_trip"
)

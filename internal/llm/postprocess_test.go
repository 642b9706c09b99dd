package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdocs/extractor/constants"
)

func TestCleanPersonName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"MR. JOHN A. SMITH", "JOHN A SMITH"},
		{"Dr Jane O'Brien", "JANE O'BRIEN"},
		{"mrs   anna-maria  lopez", "ANNA-MARIA LOPEZ"},
		{"PROF. MÜLLER", "MÜLLER"},
		{"...###...", ""},
		{"MR.", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CleanPersonName(c.in), "input %q", c.in)
	}
}

func TestCleanTicketNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ETKT 057-2345678901", "057 2345678901"},
		{"057 2345 678 901", "057 2345 678 901"},
		{"no digits here", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CleanTicketNumber(c.in), "input %q", c.in)
	}
}

func TestClassifyTrip_OneWaySingleLeg(t *testing.T) {
	text := "Flight from LONDON to PARIS departing 2024-04-01, flight BA308."
	assert.Equal(t, constants.TripOneWay, ClassifyTrip(text, "LONDON", "PARIS"))
}

func TestClassifyTrip_RestatedOutboundLeg(t *testing.T) {
	// the itinerary repeats the outbound leg; the second LONDON is not a return
	text := "Itinerary: LONDON to PARIS on 2024-04-01 flight BA308.\n" +
		"Leg detail: LONDON dep 08:15 2024-04-01 arriving PARIS 10:30."
	assert.Equal(t, constants.TripOneWay, ClassifyTrip(text, "LONDON", "PARIS"))
}

func TestClassifyTrip_GenuineReturn(t *testing.T) {
	text := "Outbound: LONDON to PARIS on 2024-04-01 flight BA308.\n" +
		"Return: PARIS to LONDON on 2024-05-01 flight BA309."
	assert.Equal(t, constants.TripRoundTrip, ClassifyTrip(text, "LONDON", "PARIS"))
}

func TestClassifyTrip_IncidentalMentionWithoutDigits(t *testing.T) {
	text := "LONDON to PARIS on 2024-04-01. " +
		"Thank you for flying with us and we hope you enjoyed the journey. " +
		"Our LONDON office team wishes you a pleasant stay in the city of lights."
	assert.Equal(t, constants.TripOneWay, ClassifyTrip(text, "LONDON", "PARIS"))
}

func TestClassifyTrip_MissingCities(t *testing.T) {
	assert.Equal(t, constants.TripOneWay, ClassifyTrip("anything", "", "PARIS"))
	assert.Equal(t, constants.TripOneWay, ClassifyTrip("anything", "LONDON", ""))
	assert.Equal(t, constants.TripOneWay, ClassifyTrip("no cities at all", "LONDON", "PARIS"))
}

func TestPostProcess_FlightOverridesModelTripType(t *testing.T) {
	rec, err := NewCandidate(map[string]any{
		"type":          "flight",
		"passengerName": "MR. JOHN SMITH",
		"ticketNumber":  "ETKT 057-2345678901",
		"overallFrom":   "london",
		"overallTo":     "paris",
		"tripType":      "round_trip",
		"returnDate":    "2024-05-09",
		"currency":      "gbp",
	})
	require.NoError(t, err)

	// one-way source text despite the model's round_trip guess
	PostProcess(rec, "Flight from LONDON to PARIS departing 2024-04-01, flight BA308.")

	assert.Equal(t, "JOHN SMITH", rec.Fields["passengerName"])
	assert.Equal(t, "057 2345678901", rec.Fields["ticketNumber"])
	assert.Equal(t, "LONDON", rec.Fields["overallFrom"])
	assert.Equal(t, "PARIS", rec.Fields["overallTo"])
	assert.Equal(t, "GBP", rec.Fields["currency"])
	assert.Equal(t, constants.TripOneWay, rec.Fields["tripType"])
	assert.Nil(t, rec.Fields["returnDate"])

	assert.NoError(t, rec.Validate())
}

func TestPostProcess_FlightKeepsReturnDateOnRoundTrip(t *testing.T) {
	rec, err := NewCandidate(map[string]any{
		"type":        "flight",
		"overallFrom": "LONDON",
		"overallTo":   "PARIS",
		"returnDate":  "2024-05-01",
	})
	require.NoError(t, err)

	text := "Outbound: LONDON to PARIS on 2024-04-01.\nReturn: PARIS to LONDON on 2024-05-01."
	PostProcess(rec, text)

	assert.Equal(t, constants.TripRoundTrip, rec.Fields["tripType"])
	assert.Equal(t, "2024-05-01", rec.Fields["returnDate"])
}

func TestPostProcess_NameCleanupToNull(t *testing.T) {
	rec, err := NewCandidate(map[string]any{
		"type":          "flight",
		"passengerName": "...###...",
	})
	require.NoError(t, err)
	PostProcess(rec, "")
	assert.Nil(t, rec.Fields["passengerName"])
}

func TestPostProcess_Hotel(t *testing.T) {
	rec, err := NewCandidate(map[string]any{
		"type":      "hotel",
		"guestName": "ms jane doe",
		"hotelName": "GRAND PLAZA HOTEL",
		"hotelCity": "berlin",
		"currency":  "eur",
	})
	require.NoError(t, err)
	PostProcess(rec, "")

	assert.Equal(t, "JANE DOE", rec.Fields["guestName"])
	assert.Equal(t, "Grand Plaza Hotel", rec.Fields["hotelName"])
	assert.Equal(t, "BERLIN", rec.Fields["hotelCity"])
	assert.Equal(t, "EUR", rec.Fields["currency"])
	assert.NoError(t, rec.Validate())
}

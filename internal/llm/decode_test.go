package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdocs/extractor/internal/common"
)

func TestDecodeResponse_PlainObject(t *testing.T) {
	m, err := DecodeResponse(`{"type":"flight","passengerName":"JOHN SMITH"}`)
	require.NoError(t, err)
	assert.Equal(t, "flight", m["type"])
	assert.Equal(t, "JOHN SMITH", m["passengerName"])
}

func TestDecodeResponse_FencedObject(t *testing.T) {
	raw := "```json\n{\"type\": \"hotel\", \"hotelName\": \"Grand Plaza\"}\n```"
	m, err := DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "hotel", m["type"])
	assert.Equal(t, "Grand Plaza", m["hotelName"])
}

func TestDecodeResponse_FencedWithProse(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"type\":\"hotel\", \"hotelCity\": \"BERLIN\"}\n```\nThanks!"
	m, err := DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "hotel", m["type"])
	assert.Equal(t, "BERLIN", m["hotelCity"])
}

func TestDecodeResponse_ProseAroundObject(t *testing.T) {
	raw := `Here is the extracted record: {"type":"flight","currency":"EUR"} Let me know if you need more.`
	m, err := DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "EUR", m["currency"])
}

func TestDecodeResponse_BraceInsideString(t *testing.T) {
	raw := `noise {"type":"hotel","hotelName":"Curly {Brace} Inn","note":"escaped \" quote"} trailing`
	m, err := DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Curly {Brace} Inn", m["hotelName"])
	assert.Equal(t, `escaped " quote`, m["note"])
}

func TestDecodeResponse_NestedObject(t *testing.T) {
	raw := `prefix {"a":{"b":{"c":1}},"type":"flight"} suffix`
	m, err := DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "flight", m["type"])
}

func TestDecodeResponse_NoObject(t *testing.T) {
	_, err := DecodeResponse("I could not find any receipt data in this document.")
	require.Error(t, err)
	assert.Equal(t, common.KindDecode, common.KindOf(err))
}

func TestDecodeResponse_UnbalancedObject(t *testing.T) {
	_, err := DecodeResponse(`{"type":"flight","passengerName":`)
	require.Error(t, err)
	assert.Equal(t, common.KindDecode, common.KindOf(err))
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatCode(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    SeatCode
		wantErr bool
	}{
		{name: "single digit row", raw: "1A", want: SeatCode{Row: 1, Letter: 'A'}},
		{name: "two digit row", raw: "20F", want: SeatCode{Row: 20, Letter: 'F'}},
		{name: "lower case and spaces", raw: " 12c ", want: SeatCode{Row: 12, Letter: 'C'}},
		{name: "empty", raw: "", wantErr: true},
		{name: "letter only", raw: "A", wantErr: true},
		{name: "row zero", raw: "0A", wantErr: true},
		{name: "letter first", raw: "A1", wantErr: true},
		{name: "signed row", raw: "-1A", wantErr: true},
		{name: "digit in the middle of letters", raw: "1AB", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSeatCode(tc.raw)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSeatCode_StringAndColumn(t *testing.T) {
	seat := NewSeatCode(7, 2)

	assert.Equal(t, "7C", seat.String())
	assert.Equal(t, 2, seat.Column())
	assert.Equal(t, SeatCode{Row: 7, Letter: 'C'}, seat)
}

func TestSeatCode_JSON(t *testing.T) {
	var payload struct {
		Seat SeatCode `json:"seat"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"seat":"3b"}`), &payload))
	assert.Equal(t, SeatCode{Row: 3, Letter: 'B'}, payload.Seat)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"seat":"3B"}`, string(out))
}

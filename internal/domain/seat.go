package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SeatCode identifies one physical seat: a 1-based row and a column letter.
type SeatCode struct {
	Row    int
	Letter byte
}

func NewSeatCode(row int, column int) SeatCode {
	return SeatCode{Row: row, Letter: byte('A' + column)}
}

// Column returns the zero-based column index of the letter.
func (s SeatCode) Column() int {
	return int(s.Letter - 'A')
}

func (s SeatCode) String() string {
	return strconv.Itoa(s.Row) + string(s.Letter)
}

func (s SeatCode) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SeatCode) UnmarshalText(text []byte) error {
	parsed, err := ParseSeatCode(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeatCode parses "12A" style codes. Letters are case-insensitive.
// The result is syntactically valid only; bounds are checked against a layout
// elsewhere.
func ParseSeatCode(raw string) (SeatCode, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if len(raw) < 2 {
		return SeatCode{}, fmt.Errorf("%w: malformed seat %q", ErrValidation, raw)
	}
	letter := raw[len(raw)-1]
	if letter < 'A' || letter > 'Z' {
		return SeatCode{}, fmt.Errorf("%w: malformed seat %q", ErrValidation, raw)
	}
	digits := raw[:len(raw)-1]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return SeatCode{}, fmt.Errorf("%w: malformed seat %q", ErrValidation, raw)
		}
	}
	row, err := strconv.Atoi(digits)
	if err != nil || row < 1 {
		return SeatCode{}, fmt.Errorf("%w: malformed seat %q", ErrValidation, raw)
	}
	return SeatCode{Row: row, Letter: letter}, nil
}

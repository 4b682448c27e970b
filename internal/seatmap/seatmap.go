// Package seatmap derives free seats of a flight from its layout and the set
// of seats already held. It has no side effects.
package seatmap

import "github.com/Domenick1991/airtickets/internal/domain"

const maxColumns = 'Z' - 'A' + 1

// Set is a set of seat codes.
type Set map[domain.SeatCode]struct{}

func NewSet(seats ...domain.SeatCode) Set {
	set := make(Set, len(seats))
	for _, s := range seats {
		set[s] = struct{}{}
	}
	return set
}

func (s Set) Has(seat domain.SeatCode) bool {
	_, ok := s[seat]
	return ok
}

// All enumerates every seat of the layout, row-major then by letter.
func All(layout domain.SeatLayout) []domain.SeatCode {
	return Available(layout, nil)
}

// Available returns the seats of layout that are not in booked, in the same
// order as All. Degenerate layouts yield an empty slice.
func Available(layout domain.SeatLayout, booked Set) []domain.SeatCode {
	rows, cols := dims(layout)
	seats := make([]domain.SeatCode, 0, rows*cols)
	for row := 1; row <= rows; row++ {
		for col := 0; col < cols; col++ {
			seat := domain.NewSeatCode(row, col)
			if booked.Has(seat) {
				continue
			}
			seats = append(seats, seat)
		}
	}
	return seats
}

// IsValid reports whether seat lies within the layout bounds.
func IsValid(layout domain.SeatLayout, seat domain.SeatCode) bool {
	rows, cols := dims(layout)
	if seat.Row < 1 || seat.Row > rows {
		return false
	}
	col := seat.Column()
	return col >= 0 && col < cols
}

func dims(layout domain.SeatLayout) (int, int) {
	rows, cols := layout.Rows, layout.SeatsPerRow
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	if cols > maxColumns {
		cols = maxColumns
	}
	return rows, cols
}

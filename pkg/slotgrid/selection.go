package slotgrid

import "time"

// Selection is the patient's currently chosen cell. The zero value means no
// selection.
type Selection struct {
	cell   Cell
	active bool
}

// NoSelection is the empty selection.
var NoSelection = Selection{}

// Select returns a selection holding cell.
func Select(cell Cell) Selection {
	return Selection{cell: cell, active: true}
}

// Active reports whether a cell is selected.
func (s Selection) Active() bool { return s.active }

// Cell returns the selected cell; ok is false when nothing is selected.
func (s Selection) Cell() (Cell, bool) {
	return s.cell, s.active
}

// Matches reports whether cell is the selected one.
func (s Selection) Matches(cell Cell) bool {
	return s.active && s.cell.Clock == cell.Clock && SameDay(s.cell.Date, cell.Date)
}

// Click applies a click on cell, classified as c, and returns the next
// selection. Clicking an occupied, expired or off-hours cell changes nothing;
// clicking the selected cell clears it; clicking another free cell moves it.
func (s Selection) Click(cell Cell, c Classification) Selection {
	switch c.Status {
	case StatusAvailable, StatusSelected:
		if s.Matches(cell) {
			return NoSelection
		}
		return Select(cell)
	default:
		return s
	}
}

// Reset clears the selection, used when the doctor or week changes.
func (s Selection) Reset() Selection {
	return NoSelection
}

// SelectionView is the JSON shape of a selection.
type SelectionView struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Display string `json:"display_date"`
}

// View renders the selection, or nil when nothing is selected.
func (s Selection) View() *SelectionView {
	if !s.active {
		return nil
	}
	return &SelectionView{
		Date:    s.cell.Date.Format(time.DateOnly),
		Time:    s.cell.Clock.String(),
		Display: s.cell.Date.Format("02/01/2006"),
	}
}

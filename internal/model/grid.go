package model

import (
	"fmt"
	"time"

	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = time.DateOnly

type GridQuery struct {
	Week         string `form:"week" binding:"omitempty,datetime=2006-01-02"`
	SelectedDate string `form:"selected_date" binding:"omitempty,datetime=2006-01-02"`
	SelectedTime string `form:"selected_time" binding:"omitempty,hhmm"`
}

// HasSelection reports whether a selected cell was given. Both parts are
// required together.
func (q GridQuery) HasSelection() (bool, error) {
	switch {
	case q.SelectedDate == "" && q.SelectedTime == "":
		return false, nil
	case q.SelectedDate == "" || q.SelectedTime == "":
		return false, fmt.Errorf("selected_date and selected_time must be given together")
	}
	return true, nil
}

type AgendaQuery struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
}

type BoardContextRequest struct {
	DoctorID int64  `json:"doctor_id" binding:"required,gt=0"`
	Week     string `json:"week" binding:"omitempty,datetime=2006-01-02"`
}

type ClickRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	Time string `json:"time" binding:"required,hhmm"`
}

// ParseDate parses a wire date as midnight in loc. Empty means today.
func ParseDate(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if s == "" {
		return slotgrid.StartOfDay(now, loc), nil
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// ParseCell parses a (date, time) pair into a grid cell.
func ParseCell(date, clock string, loc *time.Location) (slotgrid.Cell, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return slotgrid.Cell{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	c, err := slotgrid.ParseClock(clock)
	if err != nil {
		return slotgrid.Cell{}, err
	}
	return slotgrid.NewCell(d, c, loc), nil
}

func weekdayOf(day int) time.Weekday {
	return time.Weekday(day)
}

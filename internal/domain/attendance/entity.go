package attendance

import (
	"math"
	"time"
)

const DateLayout = "2006-01-02"

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusLate    Status = "LATE"
	StatusHalfDay Status = "HALF_DAY"
	// StatusAbsent is never stored by check-in or check-out. Read APIs use it
	// for roster days that have no record.
	StatusAbsent Status = "ABSENT"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusHalfDay, StatusAbsent:
		return true
	}
	return false
}

// Attendance is the single record for one employee on one calendar date.
type Attendance struct {
	ID         string
	EmployeeID string
	// Date is the calendar day at midnight UTC.
	Date time.Time

	CheckInTime      *time.Time
	CheckInLocation  *string
	CheckInLatitude  *float64
	CheckInLongitude *float64

	CheckOutTime      *time.Time
	CheckOutLocation  *string
	CheckOutLatitude  *float64
	CheckOutLongitude *float64

	WorkingHours *float64
	Status       Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Attendance) HasCheckedIn() bool {
	return a != nil && a.CheckInTime != nil
}

func (a *Attendance) HasCheckedOut() bool {
	return a != nil && a.CheckOutTime != nil
}

// DateKey formats the record date as YYYY-MM-DD.
func (a *Attendance) DateKey() string {
	return a.Date.Format(DateLayout)
}

// Policy holds the working schedule used to classify a day.
type Policy struct {
	// WorkStart and WorkEnd are offsets from local midnight.
	WorkStart     time.Duration
	WorkEnd       time.Duration
	LateThreshold time.Duration
	HalfDayHours  float64
	Location      *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		WorkStart:     8 * time.Hour,
		WorkEnd:       17 * time.Hour,
		LateThreshold: 15 * time.Minute,
		HalfDayHours:  4,
		Location:      time.UTC,
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// CalendarDate returns the local calendar day of t as midnight UTC.
func (p Policy) CalendarDate(t time.Time) time.Time {
	local := t.In(p.location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (p Policy) ScheduledStart(date time.Time) time.Time {
	return p.at(date, p.WorkStart)
}

func (p Policy) ScheduledEnd(date time.Time) time.Time {
	return p.at(date, p.WorkEnd)
}

// at returns the wall-clock time offset after midnight on date, so DST
// transition days still start at the configured hour.
func (p Policy) at(date time.Time, offset time.Duration) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		int(offset/time.Hour), int(offset%time.Hour/time.Minute), int(offset%time.Minute/time.Second),
		0, p.location())
}

// MinutesLate is floor((checkIn - scheduledStart) in minutes). It is negative
// for early arrivals.
func (p Policy) MinutesLate(date, checkIn time.Time) int {
	return floorMinutes(checkIn.Sub(p.ScheduledStart(date)))
}

// MinutesPastEnd is floor((checkOut - scheduledEnd) in minutes).
func (p Policy) MinutesPastEnd(date, checkOut time.Time) int {
	return floorMinutes(checkOut.Sub(p.ScheduledEnd(date)))
}

func (p Policy) thresholdMinutes() int {
	return int(p.LateThreshold / time.Minute)
}

func (p Policy) IsLateCheckIn(date, checkIn time.Time) bool {
	return p.MinutesLate(date, checkIn) > p.thresholdMinutes()
}

func (p Policy) IsLateCheckOut(date, checkOut time.Time) bool {
	return p.MinutesPastEnd(date, checkOut) > p.thresholdMinutes()
}

// CheckInStatus applies the lateness rule.
func (p Policy) CheckInStatus(date, checkIn time.Time) Status {
	if p.IsLateCheckIn(date, checkIn) {
		return StatusLate
	}
	return StatusPresent
}

// CheckOutStatus applies the combined rule. Lateness is never erased by hours worked.
func (p Policy) CheckOutStatus(current Status, workingHours float64) Status {
	if current == StatusLate {
		return StatusLate
	}
	if workingHours < p.HalfDayHours {
		return StatusHalfDay
	}
	return StatusPresent
}

func floorMinutes(d time.Duration) int {
	return int(math.Floor(d.Minutes()))
}

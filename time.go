package xclox

import (
	"strconv"
	"time"
)

// day is one full day.
const day = 24 * time.Hour

// Time is an immutable time without a time zone in the ISO-8601
// calendar system, such as "09:55:02".
//
// Time is represented with nanosecond precision. Internally, it
// describes the time as a duration elapsed since midnight, and it is
// valid only when that duration is a fraction of a day. The zero value
// is invalid.
//
// Note that durations are stored relative to one full day so that the
// zero value falls outside the valid range.
type Time struct {
	d time.Duration
}

func timeOf(sinceMidnight time.Duration) Time {
	return Time{d: sinceMidnight - day}
}

// NewTime returns the time of day composed of the given hours, minutes,
// seconds, and subseconds.
func NewTime(hour, minute, second int, subsecond time.Duration) Time {
	return timeOf(time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second +
		subsecond)
}

// TimeFromDuration returns the time of day at the given duration
// elapsed since midnight ("00:00:00").
func TimeFromDuration(sinceMidnight time.Duration) Time {
	return timeOf(sinceMidnight)
}

// TimeOf returns the time-of-day part of the given time point in
// Coordinated Universal Time (UTC).
func TimeOf(t time.Time) Time {
	t = t.UTC()
	return NewTime(t.Hour(), t.Minute(), t.Second(), time.Duration(t.Nanosecond()))
}

// CurrentTime returns the current system time of day in Coordinated
// Universal Time (UTC), not the current local time. The accuracy
// depends on the accuracy of the underlying operating system clock.
func CurrentTime() Time {
	return TimeOf(time.Now())
}

// Midnight returns the time of day at "00:00:00".
func Midnight() Time {
	return timeOf(0)
}

// ParseTime scans a time of day out of the given string according to
// the given layout. The layout patterns are the ones documented on
// Format. The scan fails only on malformed input; out-of-range fields
// yield an invalid time.
func ParseTime(value, layout string) (Time, error) {
	f, err := parseFields(value, layout, "hHmsfaA")
	if err != nil {
		return Time{}, err
	}
	return NewTime(f.hour, f.minute, f.second, time.Duration(f.nanos)), nil
}

// SinceMidnight returns the duration elapsed since midnight.
func (t Time) SinceMidnight() time.Duration {
	return t.d + day
}

// IsValid returns whether this time represents a valid time of day. A
// valid time is a fraction of a day; negative times or times of 24
// hours or more are invalid.
func (t Time) IsValid() bool {
	s := t.SinceMidnight()
	return s >= 0 && s < day
}

// Hour returns the hour of the day (0, 23).
func (t Time) Hour() int {
	return int(t.SinceMidnight() % day / time.Hour)
}

// Minute returns the minute of the hour (0, 59).
func (t Time) Minute() int {
	return int(t.SinceMidnight() % time.Hour / time.Minute)
}

// Second returns the second of the minute (0, 59).
func (t Time) Second() int {
	return int(t.SinceMidnight() % time.Minute / time.Second)
}

// Millisecond returns the millisecond of the second (0, 999).
func (t Time) Millisecond() int {
	return int(t.SinceMidnight() % time.Second / time.Millisecond)
}

// Microsecond returns the microsecond of the second (0, 999999).
func (t Time) Microsecond() int {
	return int(t.SinceMidnight() % time.Second / time.Microsecond)
}

// Nanosecond returns the nanosecond of the second (0, 999999999).
func (t Time) Nanosecond() int {
	return int(t.SinceMidnight() % time.Second)
}

// Add returns the result of adding the given duration to this time as a
// new Time.
func (t Time) Add(d time.Duration) Time {
	return Time{d: t.d + d}
}

// Subtract returns the result of subtracting the given duration from
// this time as a new Time.
func (t Time) Subtract(d time.Duration) Time {
	return Time{d: t.d - d}
}

// AddHours returns the result of adding the given number of hours to
// this time as a new Time.
func (t Time) AddHours(hours int) Time {
	return t.Add(time.Duration(hours) * time.Hour)
}

// SubtractHours returns the result of subtracting the given number of
// hours from this time as a new Time.
func (t Time) SubtractHours(hours int) Time {
	return t.Subtract(time.Duration(hours) * time.Hour)
}

// AddMinutes returns the result of adding the given number of minutes
// to this time as a new Time.
func (t Time) AddMinutes(minutes int) Time {
	return t.Add(time.Duration(minutes) * time.Minute)
}

// SubtractMinutes returns the result of subtracting the given number of
// minutes from this time as a new Time.
func (t Time) SubtractMinutes(minutes int) Time {
	return t.Subtract(time.Duration(minutes) * time.Minute)
}

// AddSeconds returns the result of adding the given number of seconds
// to this time as a new Time.
func (t Time) AddSeconds(seconds int) Time {
	return t.Add(time.Duration(seconds) * time.Second)
}

// SubtractSeconds returns the result of subtracting the given number of
// seconds from this time as a new Time.
func (t Time) SubtractSeconds(seconds int) Time {
	return t.Subtract(time.Duration(seconds) * time.Second)
}

// AddMilliseconds returns the result of adding the given number of
// milliseconds to this time as a new Time.
func (t Time) AddMilliseconds(milliseconds int) Time {
	return t.Add(time.Duration(milliseconds) * time.Millisecond)
}

// SubtractMilliseconds returns the result of subtracting the given
// number of milliseconds from this time as a new Time.
func (t Time) SubtractMilliseconds(milliseconds int) Time {
	return t.Subtract(time.Duration(milliseconds) * time.Millisecond)
}

// AddMicroseconds returns the result of adding the given number of
// microseconds to this time as a new Time.
func (t Time) AddMicroseconds(microseconds int) Time {
	return t.Add(time.Duration(microseconds) * time.Microsecond)
}

// SubtractMicroseconds returns the result of subtracting the given
// number of microseconds from this time as a new Time.
func (t Time) SubtractMicroseconds(microseconds int) Time {
	return t.Subtract(time.Duration(microseconds) * time.Microsecond)
}

// AddNanoseconds returns the result of adding the given number of
// nanoseconds to this time as a new Time.
func (t Time) AddNanoseconds(nanoseconds int) Time {
	return t.Add(time.Duration(nanoseconds))
}

// SubtractNanoseconds returns the result of subtracting the given
// number of nanoseconds from this time as a new Time.
func (t Time) SubtractNanoseconds(nanoseconds int) Time {
	return t.Subtract(time.Duration(nanoseconds))
}

// Sub returns the duration between this time and the other. If the
// other time is later, the difference is negative.
func (t Time) Sub(other Time) time.Duration {
	return t.d - other.d
}

// Before reports whether this time is earlier than the other.
func (t Time) Before(other Time) bool {
	return t.d < other.d
}

// After reports whether this time is later than the other.
func (t Time) After(other Time) bool {
	return t.d > other.d
}

// Equal reports whether this time is equal to the other.
func (t Time) Equal(other Time) bool {
	return t == other
}

// Format returns this time as a string rendered according to the given
// layout. The layout may contain the following patterns:
//
//	Pattern     | Meaning
//	----------- | -------------------------------------------
//	h           | one-digit hour (0, 23)
//	hh          | two-digit hour (00, 23)
//	H           | one-digit hour (1, 12)
//	HH          | two-digit hour (01, 12)
//	m           | one-digit minute (0, 59)
//	mm          | two-digit minute (00, 59)
//	s           | one-digit second (0, 59)
//	ss          | two-digit second (00, 59)
//	f..fffffffff| subsecond as 1 to 9 digits, left-aligned
//	a           | before/after noon indicator (am or pm)
//	A           | before/after noon indicator (AM or PM)
//
// Any other character, and any run of a pattern letter of an
// unrecognized length, is inserted as-is into the output. If this time
// is invalid, an empty string is returned.
func (t Time) Format(layout string) string {
	if !t.IsValid() {
		return ""
	}
	return formatFields(layout, "hHmsfaA", t.stringify)
}

// String returns this time in the ISO-8601 time format "hh:mm:ss.fff".
func (t Time) String() string {
	return t.Format("hh:mm:ss.fff")
}

func (t Time) stringify(c byte, n int) string {
	switch c {
	case 'h':
		if n == 1 {
			return strconv.Itoa(t.Hour())
		}
		return pad(t.Hour(), 2)
	case 'H':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		if n == 1 {
			return strconv.Itoa(h)
		}
		return pad(h, 2)
	case 'm':
		if n == 1 {
			return strconv.Itoa(t.Minute())
		}
		return pad(t.Minute(), 2)
	case 's':
		if n == 1 {
			return strconv.Itoa(t.Second())
		}
		return pad(t.Second(), 2)
	case 'f':
		return pad(t.Nanosecond(), 9)[:n]
	case 'a':
		if t.Hour() >= 12 {
			return "pm"
		}
		return "am"
	case 'A':
		if t.Hour() >= 12 {
			return "PM"
		}
		return "AM"
	}
	return ""
}

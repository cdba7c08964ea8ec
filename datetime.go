package xclox

import (
	"strings"
	"time"
)

// DateTime is an immutable datetime without a time zone in the ISO-8601
// calendar system, such as "2017-12-31, 22:34:55 UTC".
//
// DateTime describes the datetime as a Date part (year, month, day) and
// a Time part (hour, minute, second, subsecond). The zero value is
// invalid.
type DateTime struct {
	date Date
	time Time
}

// NewDateTime returns the datetime composed of the given date and time.
func NewDateTime(date Date, tod Time) DateTime {
	return DateTime{date: date, time: tod}
}

// DateTimeAt returns the datetime at the given date, leaving the time
// part at midnight ("00:00:00").
func DateTimeAt(date Date) DateTime {
	return DateTime{date: date, time: Midnight()}
}

// DateTimeFromDuration returns the datetime at the given duration
// elapsed since the epoch "1970-01-01 00:00:00 UTC". The constructed
// datetime has whatever precision it is given, down to nanoseconds.
func DateTimeFromDuration(d time.Duration) DateTime {
	days := d / day
	sub := d % day
	if sub < 0 {
		days--
		sub += day
	}
	return DateTime{date: DateFromDays(int(days)), time: TimeFromDuration(sub)}
}

// DateTimeOf returns the datetime of the given time point in
// Coordinated Universal Time (UTC).
func DateTimeOf(t time.Time) DateTime {
	t = t.UTC()
	return DateTime{date: DateOf(t), time: TimeOf(t)}
}

// CurrentDateTime returns the current system datetime in Coordinated
// Universal Time (UTC), not the current local datetime.
func CurrentDateTime() DateTime {
	return DateTimeOf(time.Now())
}

// EpochDateTime returns the datetime of the epoch
// "1970-01-01 00:00:00".
func EpochDateTime() DateTime {
	return DateTime{date: EpochDate(), time: Midnight()}
}

// ParseDateTime scans a datetime out of the given string according to
// the given layout. The layout patterns are the ones documented on
// Format. The scan fails only on malformed input; out-of-range fields
// yield an invalid datetime.
func ParseDateTime(value, layout string) (DateTime, error) {
	f, err := parseFields(value, layout, "#EyMdhHmsfaA")
	if err != nil {
		return DateTime{}, err
	}
	return DateTime{
		date: NewDate(f.sign*f.year, f.month, f.day),
		time: NewTime(f.hour, f.minute, f.second, time.Duration(f.nanos)),
	}, nil
}

// DateTimeFromJulianDay returns the datetime corresponding to the given
// fractional Julian Day Number. See JulianDay.
func DateTimeFromJulianDay(julianDay float64) DateTime {
	integer := int(julianDay)
	fraction := julianDay - float64(integer)
	milliseconds := time.Duration(86400000*fraction) * time.Millisecond
	return DateTimeAt(DateFromDays(integer - epochJulianDay + 1)).
		SubtractHours(12).
		Add(milliseconds)
}

// IsValid returns whether this datetime represents a valid datetime,
// that is, both the date and time parts are valid.
func (dt DateTime) IsValid() bool {
	return dt.date.IsValid() && dt.time.IsValid()
}

// Date returns the date part of this datetime.
func (dt DateTime) Date() Date {
	return dt.date
}

// Time returns the time part of this datetime.
func (dt DateTime) Time() Time {
	return dt.time
}

// Year returns the year of this datetime. There is no year zero;
// negative numbers indicate years before 1 CE.
func (dt DateTime) Year() int {
	return dt.date.Year()
}

// Month returns the month of the year (1, 12).
func (dt DateTime) Month() int {
	return dt.date.Month()
}

// Day returns the day of the month (1, 31).
func (dt DateTime) Day() int {
	return dt.date.Day()
}

// Hour returns the hour of the day (0, 23).
func (dt DateTime) Hour() int {
	return dt.time.Hour()
}

// Minute returns the minute of the hour (0, 59).
func (dt DateTime) Minute() int {
	return dt.time.Minute()
}

// Second returns the second of the minute (0, 59).
func (dt DateTime) Second() int {
	return dt.time.Second()
}

// Millisecond returns the millisecond of the second (0, 999).
func (dt DateTime) Millisecond() int {
	return dt.time.Millisecond()
}

// Microsecond returns the microsecond of the second (0, 999999).
func (dt DateTime) Microsecond() int {
	return dt.time.Microsecond()
}

// Nanosecond returns the nanosecond of the second (0, 999999999).
func (dt DateTime) Nanosecond() int {
	return dt.time.Nanosecond()
}

// DayOfWeek returns the weekday as a number between 1 and 7,
// corresponding to the enumeration Weekday.
func (dt DateTime) DayOfWeek() int {
	return dt.date.DayOfWeek()
}

// DayOfYear returns the day of the year as a number between 1 and 365
// (1 to 366 on leap years).
func (dt DateTime) DayOfYear() int {
	return dt.date.DayOfYear()
}

// DaysInMonth returns the number of days in the current month (28, 31).
func (dt DateTime) DaysInMonth() int {
	return dt.date.DaysInMonth()
}

// DaysInYear returns the number of days in the current year (365, 366).
func (dt DateTime) DaysInYear() int {
	return dt.date.DaysInYear()
}

// IsLeapYear returns whether the year of this datetime is a leap year.
func (dt DateTime) IsLeapYear() bool {
	return dt.date.IsLeapYear()
}

// WeekOfYear returns the ISO-8601 week of the year along with the year
// it belongs to. See Date.WeekOfYear.
func (dt DateTime) WeekOfYear() (week, year int) {
	return dt.date.WeekOfYear()
}

// DayOfWeekName returns the English name of the weekday, such as
// "Saturday", or "Sat" if short is true.
func (dt DateTime) DayOfWeekName(short bool) string {
	return dt.date.DayOfWeekName(short)
}

// MonthName returns the English name of the month, such as "January",
// or "Jan" if short is true.
func (dt DateTime) MonthName(short bool) string {
	return dt.date.MonthName(short)
}

// Before reports whether this datetime is earlier than the other.
func (dt DateTime) Before(other DateTime) bool {
	return dt.date.Before(other.date) ||
		(dt.date == other.date && dt.time.Before(other.time))
}

// After reports whether this datetime is later than the other.
func (dt DateTime) After(other DateTime) bool {
	return other.Before(dt)
}

// Equal reports whether this datetime is equal to the other.
func (dt DateTime) Equal(other DateTime) bool {
	return dt == other
}

// Add returns the result of adding the given duration to this datetime
// as a new DateTime, borrowing days as needed.
func (dt DateTime) Add(d time.Duration) DateTime {
	total := dt.time.SinceMidnight() + d
	days := total / day
	sub := total % day
	if sub < 0 {
		days--
		sub += day
	}
	return DateTime{date: dt.date.AddDays(int(days)), time: TimeFromDuration(sub)}
}

// Subtract returns the result of subtracting the given duration from
// this datetime as a new DateTime, borrowing days as needed.
func (dt DateTime) Subtract(d time.Duration) DateTime {
	return dt.Add(-d)
}

// AddNanoseconds returns a new DateTime with the given number of
// nanoseconds added to it.
func (dt DateTime) AddNanoseconds(nanoseconds int) DateTime {
	return dt.Add(time.Duration(nanoseconds))
}

// SubtractNanoseconds returns a new DateTime with the given number of
// nanoseconds subtracted from it.
func (dt DateTime) SubtractNanoseconds(nanoseconds int) DateTime {
	return dt.Subtract(time.Duration(nanoseconds))
}

// AddMicroseconds returns a new DateTime with the given number of
// microseconds added to it.
func (dt DateTime) AddMicroseconds(microseconds int) DateTime {
	return dt.Add(time.Duration(microseconds) * time.Microsecond)
}

// SubtractMicroseconds returns a new DateTime with the given number of
// microseconds subtracted from it.
func (dt DateTime) SubtractMicroseconds(microseconds int) DateTime {
	return dt.Subtract(time.Duration(microseconds) * time.Microsecond)
}

// AddMilliseconds returns a new DateTime with the given number of
// milliseconds added to it.
func (dt DateTime) AddMilliseconds(milliseconds int) DateTime {
	return dt.Add(time.Duration(milliseconds) * time.Millisecond)
}

// SubtractMilliseconds returns a new DateTime with the given number of
// milliseconds subtracted from it.
func (dt DateTime) SubtractMilliseconds(milliseconds int) DateTime {
	return dt.Subtract(time.Duration(milliseconds) * time.Millisecond)
}

// AddSeconds returns a new DateTime with the given number of seconds
// added to it.
func (dt DateTime) AddSeconds(seconds int) DateTime {
	return dt.Add(time.Duration(seconds) * time.Second)
}

// SubtractSeconds returns a new DateTime with the given number of
// seconds subtracted from it.
func (dt DateTime) SubtractSeconds(seconds int) DateTime {
	return dt.Subtract(time.Duration(seconds) * time.Second)
}

// AddMinutes returns a new DateTime with the given number of minutes
// added to it.
func (dt DateTime) AddMinutes(minutes int) DateTime {
	return dt.Add(time.Duration(minutes) * time.Minute)
}

// SubtractMinutes returns a new DateTime with the given number of
// minutes subtracted from it.
func (dt DateTime) SubtractMinutes(minutes int) DateTime {
	return dt.Subtract(time.Duration(minutes) * time.Minute)
}

// AddHours returns a new DateTime with the given number of hours added
// to it.
func (dt DateTime) AddHours(hours int) DateTime {
	return dt.Add(time.Duration(hours) * time.Hour)
}

// SubtractHours returns a new DateTime with the given number of hours
// subtracted from it.
func (dt DateTime) SubtractHours(hours int) DateTime {
	return dt.Subtract(time.Duration(hours) * time.Hour)
}

// AddDays returns a new DateTime with the given number of days added to
// it.
func (dt DateTime) AddDays(days int) DateTime {
	return DateTime{date: dt.date.AddDays(days), time: dt.time}
}

// SubtractDays returns a new DateTime with the given number of days
// subtracted from it.
func (dt DateTime) SubtractDays(days int) DateTime {
	return DateTime{date: dt.date.SubtractDays(days), time: dt.time}
}

// AddMonths returns a new DateTime with the given number of months
// added to it. See Date.AddMonths for how month-end clamping is done.
func (dt DateTime) AddMonths(months int) DateTime {
	return DateTime{date: dt.date.AddMonths(months), time: dt.time}
}

// SubtractMonths returns a new DateTime with the given number of months
// subtracted from it. See Date.SubtractMonths.
func (dt DateTime) SubtractMonths(months int) DateTime {
	return DateTime{date: dt.date.SubtractMonths(months), time: dt.time}
}

// AddYears returns a new DateTime with the given number of years added
// to it.
func (dt DateTime) AddYears(years int) DateTime {
	return DateTime{date: dt.date.AddYears(years), time: dt.time}
}

// SubtractYears returns a new DateTime with the given number of years
// subtracted from it.
func (dt DateTime) SubtractYears(years int) DateTime {
	return DateTime{date: dt.date.SubtractYears(years), time: dt.time}
}

// Sub returns the duration between this datetime and the other. If the
// other datetime is later, the difference is negative.
func (dt DateTime) Sub(other DateTime) time.Duration {
	return dt.DurationSinceEpoch() - other.DurationSinceEpoch()
}

// DurationSinceEpoch returns the duration elapsed since the epoch
// "1970-01-01 00:00:00 UTC", not counting leap seconds.
func (dt DateTime) DurationSinceEpoch() time.Duration {
	return time.Duration(dt.date.DaysSinceEpoch())*day + dt.time.SinceMidnight()
}

// NanosecondsSinceEpoch returns the number of elapsed nanoseconds since
// "1970-01-01 00:00:00 UTC", not counting leap seconds.
func (dt DateTime) NanosecondsSinceEpoch() int64 {
	return int64(dt.DurationSinceEpoch())
}

// MicrosecondsSinceEpoch returns the number of elapsed microseconds
// since "1970-01-01 00:00:00 UTC", not counting leap seconds.
func (dt DateTime) MicrosecondsSinceEpoch() int64 {
	return int64(dt.DurationSinceEpoch() / time.Microsecond)
}

// MillisecondsSinceEpoch returns the number of elapsed milliseconds
// since "1970-01-01 00:00:00 UTC", not counting leap seconds.
func (dt DateTime) MillisecondsSinceEpoch() int64 {
	return int64(dt.DurationSinceEpoch() / time.Millisecond)
}

// SecondsSinceEpoch returns the number of elapsed seconds since
// "1970-01-01 00:00:00 UTC", not counting leap seconds.
func (dt DateTime) SecondsSinceEpoch() int64 {
	return int64(dt.date.DaysSinceEpoch())*86400 +
		int64(dt.time.SinceMidnight()/time.Second)
}

// MinutesSinceEpoch returns the number of elapsed minutes since
// "1970-01-01 00:00:00 UTC", not counting leap seconds.
func (dt DateTime) MinutesSinceEpoch() int64 {
	return dt.SecondsSinceEpoch() / 60
}

// HoursSinceEpoch returns the number of elapsed hours since
// "1970-01-01 00:00:00 UTC", not counting leap seconds.
func (dt DateTime) HoursSinceEpoch() int64 {
	return dt.SecondsSinceEpoch() / 3600
}

// DaysSinceEpoch returns the number of elapsed days since
// "1970-01-01 00:00:00 UTC", not counting leap seconds.
func (dt DateTime) DaysSinceEpoch() int {
	return dt.date.DaysSinceEpoch()
}

// ToTime returns a standard library representation of this datetime in
// Coordinated Universal Time (UTC).
func (dt DateTime) ToTime() time.Time {
	y := dt.Year()
	if y < 0 {
		// the standard library numbers years astronomically, with a
		// year zero.
		y++
	}
	return time.Date(y, time.Month(dt.Month()), dt.Day(),
		dt.Hour(), dt.Minute(), dt.Second(), dt.Nanosecond(), time.UTC)
}

// JulianDay returns the corresponding Julian Day Number (JDN) of this
// datetime as a float64, where the integral part represents the day
// count and the fractional part represents the time since midday
// Universal Time (UT). The JDN is the consecutive numbering of days and
// fractions since noon UT on 1 January 4713 BCE in the proleptic Julian
// calendar, which occurs on 24 November 4714 BCE in the proleptic
// Gregorian calendar. The date to be converted is considered Gregorian,
// and the current Gregorian rules are extended backwards and forwards.
func (dt DateTime) JulianDay() float64 {
	return float64(dt.date.DaysSinceEpoch()) + float64(epochJulianDay) - 0.5 +
		float64(dt.time.SinceMidnight())/float64(day)
}

// Format returns this datetime as a string rendered according to the
// given layout. The layout may contain the patterns documented on
// Date.Format and Time.Format. Any other character, and any run of a
// pattern letter of an unrecognized length, is inserted as-is into the
// output. If this datetime is invalid, an empty string is returned.
func (dt DateTime) Format(layout string) string {
	if !dt.IsValid() || layout == "" {
		return ""
	}
	return formatFields(layout, "#EyMdhHmsfaA", func(c byte, n int) string {
		if strings.IndexByte("#EyMd", c) >= 0 {
			return dt.date.stringify(c, n)
		}
		return dt.time.stringify(c, n)
	})
}

// String returns this datetime in the ISO-8601 date and time format
// "yyyy-MM-ddThh:mm:ss.fff".
func (dt DateTime) String() string {
	return dt.Format("yyyy-MM-ddThh:mm:ss.fff")
}

// NanosecondsBetween returns the absolute number of nanoseconds between
// the two datetimes.
func NanosecondsBetween(from, to DateTime) int64 {
	return absInt64(int64(from.Sub(to)))
}

// MicrosecondsBetween returns the absolute number of microseconds
// between the two datetimes.
func MicrosecondsBetween(from, to DateTime) int64 {
	return absInt64(int64(from.Sub(to) / time.Microsecond))
}

// MillisecondsBetween returns the absolute number of milliseconds
// between the two datetimes.
func MillisecondsBetween(from, to DateTime) int64 {
	return absInt64(int64(from.Sub(to) / time.Millisecond))
}

// SecondsBetween returns the absolute number of seconds between the two
// datetimes.
func SecondsBetween(from, to DateTime) int64 {
	return absInt64(from.SecondsSinceEpoch() - to.SecondsSinceEpoch())
}

// MinutesBetween returns the absolute number of minutes between the two
// datetimes.
func MinutesBetween(from, to DateTime) int64 {
	return SecondsBetween(from, to) / 60
}

// HoursBetween returns the absolute number of hours between the two
// datetimes.
func HoursBetween(from, to DateTime) int64 {
	return SecondsBetween(from, to) / 3600
}

// DateTimeDaysBetween returns the absolute number of whole days between
// the two datetimes.
func DateTimeDaysBetween(from, to DateTime) int64 {
	return SecondsBetween(from, to) / 86400
}

// DateTimeWeeksBetween returns the absolute number of whole weeks
// between the two datetimes.
func DateTimeWeeksBetween(from, to DateTime) int64 {
	return SecondsBetween(from, to) / 604800
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

package xclox

import (
	"fmt"
	"strconv"
	"strings"
)

var shortWeekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var longWeekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

var shortMonthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

var longMonthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// patternLengths maps each pattern letter to a bitmask of its
// recognized run lengths, bit N-1 marking length N. A run of an
// unrecognized length is treated as literal text.
var patternLengths = map[byte]uint16{
	'#': 1,
	'E': 1,
	'y': 1 | 1<<1 | 1<<3,
	'M': 1 | 1<<1 | 1<<2 | 1<<3,
	'd': 1 | 1<<1 | 1<<2 | 1<<3,
	'h': 1 | 1<<1,
	'H': 1 | 1<<1,
	'm': 1 | 1<<1,
	's': 1 | 1<<1,
	'f': 1<<9 - 1,
	'a': 1,
	'A': 1,
}

func isPatternRun(c byte, n int) bool {
	m, ok := patternLengths[c]
	return ok && n <= 16 && m&(1<<(n-1)) != 0
}

// runLength counts the identical characters at pos.
func runLength(s string, pos int) int {
	i := pos + 1
	for i < len(s) && s[i] == s[pos] {
		i++
	}
	return i - pos
}

func pad(v, width int) string {
	return fmt.Sprintf("%0*d", width, v)
}

// formatFields renders layout, replacing every recognized pattern run
// of an allowed letter via stringify and keeping everything else
// literal.
func formatFields(layout, allowed string, stringify func(c byte, n int) string) string {
	var b strings.Builder
	for pos := 0; pos < len(layout); {
		c := layout[pos]
		n := runLength(layout, pos)
		if strings.IndexByte(allowed, c) >= 0 && isPatternRun(c, n) {
			b.WriteString(stringify(c, n))
		} else {
			b.WriteString(layout[pos : pos+n])
		}
		pos += n
	}
	return b.String()
}

// parsedFields carries the values scanned out of a formatted string.
// Absent fields keep their neutral defaults.
type parsedFields struct {
	sign   int
	year   int
	month  int
	day    int
	hour   int
	minute int
	second int
	nanos  int
	pm     int // -1 before noon, +1 after noon, 0 unspecified
}

// parseFields scans value according to layout. Pattern letters outside
// allowed, and runs of unrecognized lengths of non-pattern letters, are
// treated as literal text and skipped in the value. A run of an allowed
// pattern letter with an unrecognized length is an error, as is input
// that does not match a pattern.
func parseFields(value, layout, allowed string) (parsedFields, error) {
	f := parsedFields{sign: 1, year: 1, month: 1, day: 1}
	pos := 0
	for fmtPos := 0; fmtPos < len(layout); {
		c := layout[fmtPos]
		n := runLength(layout, fmtPos)
		if _, known := patternLengths[c]; known && strings.IndexByte(allowed, c) >= 0 {
			if !isPatternRun(c, n) {
				return f, fmt.Errorf("unrecognized pattern '%s'", layout[fmtPos:fmtPos+n])
			}
			if err := f.scan(c, n, value, &pos); err != nil {
				return f, err
			}
		} else {
			pos += n
		}
		fmtPos += n
	}
	if f.pm == 1 && f.hour < 12 {
		f.hour += 12
	} else if f.pm == -1 && f.hour >= 12 {
		f.hour -= 12
	}
	return f, nil
}

func (f *parsedFields) scan(c byte, n int, value string, pos *int) error {
	switch c {
	case '#':
		if *pos < len(value) && (value[*pos] == '+' || value[*pos] == '-') {
			if value[*pos] == '-' {
				f.sign = -1
			}
			*pos++
			return nil
		}
		return fmt.Errorf("expected an era sign at %d", *pos)
	case 'E':
		switch {
		case strings.HasPrefix(value[minInt(*pos, len(value)):], "BCE"):
			f.sign = -1
			*pos += 3
		case strings.HasPrefix(value[minInt(*pos, len(value)):], "CE"):
			f.sign = 1
			*pos += 2
		default:
			return fmt.Errorf("expected an era word at %d", *pos)
		}
	case 'y':
		maxDigits := 2
		if n == 1 || n == 4 {
			maxDigits = 4
		}
		v, err := readInt(value, pos, maxDigits)
		if err != nil {
			return err
		}
		if n == 2 {
			v += 2000
		}
		f.year = v
	case 'M':
		switch n {
		case 1, 2:
			v, err := readInt(value, pos, 2)
			if err != nil {
				return err
			}
			f.month = v
		case 3:
			i, err := matchName(value, pos, shortMonthNames[:])
			if err != nil {
				return err
			}
			f.month = i + 1
		case 4:
			i, err := matchName(value, pos, longMonthNames[:])
			if err != nil {
				return err
			}
			f.month = i + 1
		}
	case 'd':
		switch n {
		case 1, 2:
			v, err := readInt(value, pos, 2)
			if err != nil {
				return err
			}
			f.day = v
		case 3:
			// the weekday name only keeps the strings in sync.
			if _, err := matchName(value, pos, shortWeekdayNames[:]); err != nil {
				return err
			}
		case 4:
			if _, err := matchName(value, pos, longWeekdayNames[:]); err != nil {
				return err
			}
		}
	case 'h', 'H':
		v, err := readInt(value, pos, 2)
		if err != nil {
			return err
		}
		f.hour = v
	case 'm':
		v, err := readInt(value, pos, 2)
		if err != nil {
			return err
		}
		f.minute = v
	case 's':
		v, err := readInt(value, pos, 2)
		if err != nil {
			return err
		}
		f.second = v
	case 'f':
		v, err := readInt(value, pos, n)
		if err != nil {
			return err
		}
		f.nanos = v * pow10(9-n)
	case 'a', 'A':
		rest := value[minInt(*pos, len(value)):]
		if len(rest) >= 2 {
			switch strings.ToLower(rest[:2]) {
			case "am":
				f.pm = -1
				*pos += 2
				return nil
			case "pm":
				f.pm = 1
				*pos += 2
				return nil
			}
		}
		return fmt.Errorf("expected a meridiem indicator at %d", *pos)
	}
	return nil
}

// readInt reads up to maxDigits decimal digits.
func readInt(value string, pos *int, maxDigits int) (int, error) {
	start := *pos
	for *pos < len(value) && *pos-start < maxDigits && value[*pos] >= '0' && value[*pos] <= '9' {
		*pos++
	}
	if *pos == start {
		return 0, fmt.Errorf("expected a digit at %d", start)
	}
	return strconv.Atoi(value[start:*pos])
}

// matchName finds the name at the current position, case-insensitively,
// and returns its index.
func matchName(value string, pos *int, names []string) (int, error) {
	for i, name := range names {
		if len(value)-*pos >= len(name) && strings.EqualFold(value[*pos:*pos+len(name)], name) {
			*pos += len(name)
			return i, nil
		}
	}
	return 0, fmt.Errorf("expected a name at %d", *pos)
}

func pow10(n int) int {
	v := 1
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

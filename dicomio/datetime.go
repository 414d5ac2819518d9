package dicomio

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PartialDate holds a DA value, which PS3.5 6.2 permits to specify only a
// year, or a year and month, when full precision is unknown.
type PartialDate struct {
	Year, Month, Day int
	// Precision is 4 (year only), 6 (year+month), or 8 (full date).
	Precision int
}

// PartialTime holds a TM value, which may specify hours only, down to
// fractional seconds.
type PartialTime struct {
	Hour, Minute, Second, Microsecond int
	// Precision is the count of HH/MM/SS/FFFFFF components present.
	Precision int
}

// PartialDateTime holds a DT value: a PartialDate, an optional PartialTime,
// and an optional UTC offset in minutes.
type PartialDateTime struct {
	Date        PartialDate
	Time        PartialTime
	HasTime     bool
	OffsetMinutes int
	HasOffset   bool
}

// ParseDA parses a DA value of form "YYYY", "YYYYMM" or "YYYYMMDD" (PS3.5
// Table 6.2-1), preserving whichever precision the source provided.
func ParseDA(s string) (PartialDate, error) {
	s = strings.TrimRight(strings.TrimSpace(s), " ")
	switch len(s) {
	case 4:
		y, err := strconv.Atoi(s)
		if err != nil {
			return PartialDate{}, fmt.Errorf("%w: DA %q", ErrMalformedValue, s)
		}
		return PartialDate{Year: y, Precision: 4}, nil
	case 6:
		y, m, err := parseYM(s)
		if err != nil {
			return PartialDate{}, err
		}
		return PartialDate{Year: y, Month: m, Precision: 6}, nil
	case 8:
		y, m, err := parseYM(s[:6])
		if err != nil {
			return PartialDate{}, err
		}
		d, err := strconv.Atoi(s[6:8])
		if err != nil {
			return PartialDate{}, fmt.Errorf("%w: DA %q", ErrMalformedValue, s)
		}
		return PartialDate{Year: y, Month: m, Day: d, Precision: 8}, nil
	default:
		return PartialDate{}, fmt.Errorf("%w: DA %q has unsupported length %d", ErrMalformedValue, s, len(s))
	}
}

func parseYM(s string) (year, month int, err error) {
	y, err := strconv.Atoi(s[0:4])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedValue, s)
	}
	m, err := strconv.Atoi(s[4:6])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedValue, s)
	}
	return y, m, nil
}

// ParseTM parses a TM value of form "HH", "HHMM", "HHMMSS", or
// "HHMMSS.FFFFFF" (PS3.5 Table 6.2-1), preserving source precision.
func ParseTM(s string) (PartialTime, error) {
	s = strings.TrimRight(strings.TrimSpace(s), " ")
	whole, frac, hasFrac := strings.Cut(s, ".")
	var t PartialTime
	switch len(whole) {
	case 2:
		h, err := strconv.Atoi(whole)
		if err != nil {
			return PartialTime{}, fmt.Errorf("%w: TM %q", ErrMalformedValue, s)
		}
		t = PartialTime{Hour: h, Precision: 1}
	case 4:
		h, m, err := parseHM(whole)
		if err != nil {
			return PartialTime{}, err
		}
		t = PartialTime{Hour: h, Minute: m, Precision: 2}
	case 6:
		h, m, err := parseHM(whole[:4])
		if err != nil {
			return PartialTime{}, err
		}
		sec, err := strconv.Atoi(whole[4:6])
		if err != nil {
			return PartialTime{}, fmt.Errorf("%w: TM %q", ErrMalformedValue, s)
		}
		t = PartialTime{Hour: h, Minute: m, Second: sec, Precision: 3}
	default:
		return PartialTime{}, fmt.Errorf("%w: TM %q has unsupported length %d", ErrMalformedValue, s, len(whole))
	}
	if hasFrac {
		frac = (frac + "000000")[:6]
		us, err := strconv.Atoi(frac)
		if err != nil {
			return PartialTime{}, fmt.Errorf("%w: TM %q", ErrMalformedValue, s)
		}
		t.Microsecond = us
		t.Precision = 4
	}
	return t, nil
}

func parseHM(s string) (hour, minute int, err error) {
	h, err := strconv.Atoi(s[0:2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedValue, s)
	}
	m, err := strconv.Atoi(s[2:4])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedValue, s)
	}
	return h, m, nil
}

// ParseDT parses a DT value: "YYYYMMDDHHMMSS.FFFFFF&ZZXX" where the time
// component, fraction, and zone offset are all optional (PS3.5 Table
// 6.2-1).
func ParseDT(s string) (PartialDateTime, error) {
	s = strings.TrimRight(strings.TrimSpace(s), " ")
	body := s
	var offsetMinutes int
	hasOffset := false
	if idx := strings.IndexAny(s, "+-"); idx >= 0 {
		zone := s[idx:]
		if len(zone) != 5 {
			return PartialDateTime{}, fmt.Errorf("%w: DT zone %q", ErrMalformedValue, zone)
		}
		sign := 1
		if zone[0] == '-' {
			sign = -1
		}
		zh, err1 := strconv.Atoi(zone[1:3])
		zm, err2 := strconv.Atoi(zone[3:5])
		if err1 != nil || err2 != nil {
			return PartialDateTime{}, fmt.Errorf("%w: DT zone %q", ErrMalformedValue, zone)
		}
		offsetMinutes = sign * (zh*60 + zm)
		hasOffset = true
		body = s[:idx]
	}

	datePart := body
	timePart := ""
	hasTime := false
	if len(body) > 8 {
		datePart = body[:8]
		timePart = body[8:]
		hasTime = true
	}
	if len(datePart) < 4 {
		return PartialDateTime{}, fmt.Errorf("%w: DT %q missing year", ErrMalformedValue, s)
	}
	// Date portion may itself be truncated to just year or year+month.
	datePrecLen := len(datePart)
	if datePrecLen != 4 && datePrecLen != 6 && datePrecLen != 8 {
		return PartialDateTime{}, fmt.Errorf("%w: DT %q malformed date portion", ErrMalformedValue, s)
	}
	date, err := ParseDA(datePart)
	if err != nil {
		return PartialDateTime{}, err
	}

	result := PartialDateTime{Date: date, OffsetMinutes: offsetMinutes, HasOffset: hasOffset}
	if hasTime && timePart != "" {
		tm, err := ParseTM(timePart)
		if err != nil {
			return PartialDateTime{}, err
		}
		result.Time = tm
		result.HasTime = true
	}
	return result, nil
}

// ToTime converts a fully precise PartialDateTime (date + time +
// UTC offset) into a time.Time. Callers needing partial precision should
// work with the PartialDate/PartialTime fields directly instead.
func (dt PartialDateTime) ToTime() (time.Time, error) {
	if dt.Date.Precision != 8 {
		return time.Time{}, fmt.Errorf("dicomio: DT lacks full date precision")
	}
	loc := time.UTC
	if dt.HasOffset {
		loc = time.FixedZone("", dt.OffsetMinutes*60)
	}
	return time.Date(dt.Date.Year, time.Month(dt.Date.Month), dt.Date.Day,
		dt.Time.Hour, dt.Time.Minute, dt.Time.Second, dt.Time.Microsecond*1000, loc), nil
}

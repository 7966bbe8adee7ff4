package services

import (
	"errors"
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// DateRange is an inclusive [Start, End] window of calendar days, both ends
// normalized to midnight in the resolving location.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (window DateRange) Contains(day time.Time) bool {
	return !day.Before(window.Start) && !day.After(window.End)
}

// PeriodSelector names a reporting period. Empty value fields default to
// the period containing asOf.
type PeriodSelector struct {
	Kind    string
	Date    string
	From    string
	To      string
	Month   string
	Quarter string
	Year    string
}

const (
	PeriodDaily     = "daily"
	PeriodWeekly    = "weekly"
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
	PeriodYearly    = "yearly"
)

var ErrInvalidPeriod = errors.New("invalid period selector")

// DateAtLocation truncates a timestamp to midnight of its calendar day in
// the given location.
func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// ResolvePeriod turns a period selector into a concrete window. The as-of
// timestamp and location are explicit parameters so resolution is a pure
// function of its inputs and reproducible in tests.
func ResolvePeriod(selector PeriodSelector, asOf time.Time, location *time.Location) (DateRange, error) {
	if location == nil {
		location = time.UTC
	}
	today := DateAtLocation(asOf, location)

	switch selector.Kind {
	case PeriodDaily:
		day := today
		if selector.Date != "" {
			parsed, err := time.ParseInLocation(dayLayout, selector.Date, location)
			if err != nil {
				return DateRange{}, fmt.Errorf("%w: bad date %q", ErrInvalidPeriod, selector.Date)
			}
			day = parsed
		}
		return DateRange{Start: day, End: day}, nil

	case PeriodWeekly:
		if selector.From == "" && selector.To == "" {
			start := startOfWeek(today)
			return DateRange{Start: start, End: start.AddDate(0, 0, 6)}, nil
		}
		from, err := time.ParseInLocation(dayLayout, selector.From, location)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: bad from %q", ErrInvalidPeriod, selector.From)
		}
		to, err := time.ParseInLocation(dayLayout, selector.To, location)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: bad to %q", ErrInvalidPeriod, selector.To)
		}
		if to.Before(from) {
			return DateRange{}, fmt.Errorf("%w: to before from", ErrInvalidPeriod)
		}
		return DateRange{Start: from, End: to}, nil

	case PeriodMonthly:
		year, month := today.Year(), today.Month()
		if selector.Month != "" {
			parsed, err := time.ParseInLocation("2006-01", selector.Month, location)
			if err != nil {
				return DateRange{}, fmt.Errorf("%w: bad month %q", ErrInvalidPeriod, selector.Month)
			}
			year, month = parsed.Year(), parsed.Month()
		}
		start := time.Date(year, month, 1, 0, 0, 0, 0, location)
		return DateRange{Start: start, End: start.AddDate(0, 1, -1)}, nil

	case PeriodQuarterly:
		year := today.Year()
		quarter := (int(today.Month())-1)/3 + 1
		if selector.Quarter != "" {
			parsedYear, parsedQuarter, err := parseQuarter(selector.Quarter)
			if err != nil {
				return DateRange{}, err
			}
			year, quarter = parsedYear, parsedQuarter
		}
		start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, location)
		return DateRange{Start: start, End: start.AddDate(0, 3, -1)}, nil

	case PeriodYearly:
		year := today.Year()
		if selector.Year != "" {
			parsed, err := time.ParseInLocation("2006", selector.Year, location)
			if err != nil {
				return DateRange{}, fmt.Errorf("%w: bad year %q", ErrInvalidPeriod, selector.Year)
			}
			year = parsed.Year()
		}
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, location)
		return DateRange{Start: start, End: start.AddDate(1, 0, -1)}, nil
	}

	return DateRange{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidPeriod, selector.Kind)
}

// startOfWeek returns the Monday of the week containing day.
func startOfWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// parseQuarter parses selectors of the form "2026-Q3".
func parseQuarter(value string) (int, int, error) {
	var year, quarter int
	if _, err := fmt.Sscanf(value, "%d-Q%d", &year, &quarter); err != nil || quarter < 1 || quarter > 4 {
		return 0, 0, fmt.Errorf("%w: bad quarter %q", ErrInvalidPeriod, value)
	}
	return year, quarter, nil
}

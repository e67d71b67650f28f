package utils

import (
	"time"
)

// Eastern is the US market time zone.
var Eastern *time.Location

func init() {
	var err error
	Eastern, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback: fixed EST if the tz database is not available
		Eastern = time.FixedZone("EST", -5*60*60)
	}
}

// US exchange holidays observed as full closures.
var marketHolidays = map[string]string{
	"2025-01-01": "New Year's Day",
	"2025-01-20": "Martin Luther King Jr. Day",
	"2025-02-17": "Presidents' Day",
	"2025-04-18": "Good Friday",
	"2025-05-26": "Memorial Day",
	"2025-06-19": "Juneteenth",
	"2025-07-04": "Independence Day",
	"2025-09-01": "Labor Day",
	"2025-11-27": "Thanksgiving Day",
	"2025-12-25": "Christmas Day",
	"2026-01-01": "New Year's Day",
	"2026-01-19": "Martin Luther King Jr. Day",
	"2026-02-16": "Presidents' Day",
	"2026-04-03": "Good Friday",
	"2026-05-25": "Memorial Day",
	"2026-06-19": "Juneteenth",
	"2026-07-03": "Independence Day (observed)",
	"2026-09-07": "Labor Day",
	"2026-11-26": "Thanksgiving Day",
	"2026-12-25": "Christmas Day",
}

// MarketOpenTime returns the regular-session open (9:30 AM ET) on date.
func MarketOpenTime(date time.Time) time.Time {
	d := date.In(Eastern)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 30, 0, 0, Eastern)
}

// MarketCloseTime returns the regular-session close (4:00 PM ET) on date.
func MarketCloseTime(date time.Time) time.Time {
	d := date.In(Eastern)
	return time.Date(d.Year(), d.Month(), d.Day(), 16, 0, 0, 0, Eastern)
}

// IsTradingDay reports whether t falls on a weekday that is not a holiday.
func IsTradingDay(t time.Time) bool {
	t = t.In(Eastern)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	_, holiday := marketHolidays[t.Format("2006-01-02")]
	return !holiday
}

// IsMarketOpenAt reports whether the US regular session is open at t.
func IsMarketOpenAt(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	t = t.In(Eastern)
	return !t.Before(MarketOpenTime(t)) && t.Before(MarketCloseTime(t))
}

// MarketStatusAt returns "open", "pre-market", "after-hours" or "closed".
func MarketStatusAt(t time.Time) string {
	if !IsTradingDay(t) {
		return "closed"
	}
	t = t.In(Eastern)
	switch {
	case t.Before(time.Date(t.Year(), t.Month(), t.Day(), 4, 0, 0, 0, Eastern)):
		return "closed"
	case t.Before(MarketOpenTime(t)):
		return "pre-market"
	case t.Before(MarketCloseTime(t)):
		return "open"
	case t.Before(time.Date(t.Year(), t.Month(), t.Day(), 20, 0, 0, 0, Eastern)):
		return "after-hours"
	default:
		return "closed"
	}
}

// MarketStatus is MarketStatusAt for the current time.
func MarketStatus() string {
	return MarketStatusAt(time.Now())
}

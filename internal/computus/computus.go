// Package computus computes the date of Easter and the calendar facts that
// derive from it.
package computus

import (
	"time"
)

// Gregorian returns Western Easter Sunday of year using the anonymous
// Gregorian algorithm (Meeus/Jones/Butcher).
func Gregorian(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return date(year, month, day)
}

// Julian returns Orthodox Easter of year as a Julian calendar date and the
// same day on the proleptic Gregorian calendar.
func Julian(year int) (julian, gregorian time.Time) {
	a := year % 4
	b := year % 7
	c := year % 19
	d := (19*c + 15) % 30
	e := (2*a + 4*b - d + 34) % 7
	month := (d + e + 114) / 31
	day := (d+e+114)%31 + 1

	julian = date(year, month, day)
	return julian, julian.AddDate(0, 0, julianOffset(year))
}

// julianOffset is the number of days the Julian calendar lags the Gregorian
// one in March and April of year. It is 13 from 1900 to 2099.
func julianOffset(year int) int {
	return year/100 - year/400 - 2
}

// DaysUntil returns the number of days from the date of now to the next
// Gregorian Easter. It is zero on Easter Sunday.
func DaysUntil(now time.Time) int {
	today := date(now.Year(), int(now.Month()), now.Day())
	e := Gregorian(today.Year())
	if e.Before(today) {
		e = Gregorian(today.Year() + 1)
	}
	return daysBetween(today, e)
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from a to b. Both are UTC midnights.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

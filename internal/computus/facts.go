package computus

import (
	"time"
)

// Facts describes where a date sits in the ecclesiastical calendar.
type Facts struct {
	Date   time.Time
	Easter time.Time
	// DaysFromEaster is negative before Easter.
	DaysFromEaster int
	DayOfYear      int
	ISOWeek        int
	// GoldenNumber is the position of the year in the 19 year Metonic cycle,
	// from 1 to 19.
	GoldenNumber int
	// Epact is the age of the moon on January 1, in days.
	Epact           int
	DominicalLetter string
}

// FactsFor computes the calendar facts of the day of t.
func FactsFor(t time.Time) Facts {
	d := date(t.Year(), int(t.Month()), t.Day())
	year := d.Year()
	easter := Gregorian(year)
	golden := year%19 + 1
	_, week := d.ISOWeek()

	return Facts{
		Date:            d,
		Easter:          easter,
		DaysFromEaster:  daysBetween(easter, d),
		DayOfYear:       d.YearDay(),
		ISOWeek:         week,
		GoldenNumber:    golden,
		Epact:           (11 * (golden - 1)) % 30,
		DominicalLetter: dominicalLetter(year),
	}
}

// dominicalLetter is the letter of the first Sunday of year, counting
// January 1 as A.
func dominicalLetter(year int) string {
	// Monday is 0 in this count.
	jan1 := (int(date(year, 1, 1).Weekday()) + 6) % 7
	return string(rune('A' + (6-jan1)%7))
}

// Feast is a movable feast scheduled relative to Easter.
type Feast struct {
	Name   string
	Offset int
}

// Feasts lists the movable feasts derived from Easter, in calendar order.
var Feasts = []Feast{
	{"Ash Wednesday", -46},
	{"Palm Sunday", -7},
	{"Maundy Thursday", -3},
	{"Good Friday", -2},
	{"Holy Saturday", -1},
	{"Easter Sunday", 0},
	{"Easter Monday", 1},
	{"Ascension", 39},
	{"Pentecost", 49},
	{"Trinity Sunday", 56},
	{"Corpus Christi", 60},
}

// FeastDate returns the date of f in year.
func FeastDate(f Feast, year int) time.Time {
	return Gregorian(year).AddDate(0, 0, f.Offset)
}

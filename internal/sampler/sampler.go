// Package sampler builds the fixed grid of dates the price calendar queries:
// six months starting with the current one, two outbound days per month.
package sampler

import (
	"time"

	"github.com/dharmasatrya/farecalendar/internal/models"
)

const (
	WindowMonths = 6
)

// SampleDays are the days of month queried in every window month.
var SampleDays = []int{1, 15}

var MonthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Query is one sampled round trip.
type Query struct {
	MonthOffset  int
	Month        string
	OutboundDate string
	ReturnDate   string
}

// MonthLabel names the month monthOffset months after today's month.
// Queries are grouped under this label, not under the month of their
// computed outbound date.
func MonthLabel(today time.Time, monthOffset int) string {
	return MonthNames[(int(today.Month())-1+monthOffset)%12]
}

// Window lists the month labels of the sampling window in order.
func Window(today time.Time) []string {
	months := make([]string, 0, WindowMonths)
	for i := 0; i < WindowMonths; i++ {
		months = append(months, MonthLabel(today, i))
	}
	return months
}

// Build returns the queries for a trip of tripDuration days, ordered by
// month offset then sample day. Dates are computed in today's location.
func Build(today time.Time, tripDuration int) []Query {
	queries := make([]Query, 0, WindowMonths*len(SampleDays))
	loc := today.Location()

	for offset := 0; offset < WindowMonths; offset++ {
		for _, day := range SampleDays {
			// time.Date normalises month overflow into the following year.
			outbound := time.Date(today.Year(), today.Month()+time.Month(offset), day, 0, 0, 0, 0, loc)
			ret := outbound.AddDate(0, 0, tripDuration)

			queries = append(queries, Query{
				MonthOffset:  offset,
				Month:        MonthLabel(today, offset),
				OutboundDate: outbound.Format(models.DateLayout),
				ReturnDate:   ret.Format(models.DateLayout),
			})
		}
	}

	return queries
}

package forecast

import (
	"math"
	"time"
)

// SummaryDays is the number of days shown in the summary strip.
const SummaryDays = 5

// DailyAggregate summarises the table rows of one local calendar day.
type DailyAggregate struct {
	Date                         time.Time
	MeanTemperature              float64
	MaxTemperature               float64
	MinTemperature               float64
	MeanPrecipitationProbability float64
}

// DaySummary is a DailyAggregate with its strip label.
type DaySummary struct {
	Label string
	DailyAggregate
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

type accumulator struct {
	tempSum, tempMax, tempMin float64
	tempN                     int
	popSum                    float64
	popN                      int
}

func (a *accumulator) add(p TimeSeriesPoint) {
	if !math.IsNaN(p.Temperature) {
		if a.tempN == 0 || p.Temperature > a.tempMax {
			a.tempMax = p.Temperature
		}
		if a.tempN == 0 || p.Temperature < a.tempMin {
			a.tempMin = p.Temperature
		}
		a.tempSum += p.Temperature
		a.tempN++
	}
	if !math.IsNaN(p.PrecipitationProbability) {
		a.popSum += p.PrecipitationProbability
		a.popN++
	}
}

func (a *accumulator) aggregate(date time.Time) DailyAggregate {
	agg := DailyAggregate{
		Date:                         date,
		MeanTemperature:              math.NaN(),
		MaxTemperature:               math.NaN(),
		MinTemperature:               math.NaN(),
		MeanPrecipitationProbability: math.NaN(),
	}
	if a.tempN > 0 {
		agg.MeanTemperature = a.tempSum / float64(a.tempN)
		agg.MaxTemperature = a.tempMax
		agg.MinTemperature = a.tempMin
	}
	if a.popN > 0 {
		agg.MeanPrecipitationProbability = a.popSum / float64(a.popN)
	}
	return agg
}

// GroupByDay aggregates every local calendar day of the table, in order of first appearance.
// NaN samples are left out of the statistics.
func GroupByDay(table *HourlyTable) []DailyAggregate {
	if table.Len() == 0 {
		return nil
	}

	var (
		order []dayKey
		dates = make(map[dayKey]time.Time)
		accs  = make(map[dayKey]*accumulator)
	)
	for _, p := range table.Points {
		y, m, d := p.Time.Date()
		k := dayKey{y, m, d}
		acc, ok := accs[k]
		if !ok {
			acc = &accumulator{}
			accs[k] = acc
			dates[k] = time.Date(y, m, d, 0, 0, 0, 0, p.Time.Location())
			order = append(order, k)
		}
		acc.add(p)
	}

	out := make([]DailyAggregate, len(order))
	for i, k := range order {
		out[i] = accs[k].aggregate(dates[k])
	}
	return out
}

// AggregateByDay returns the first SummaryDays daily aggregates of the table.
func AggregateByDay(table *HourlyTable) ([]DailyAggregate, error) {
	days := GroupByDay(table)
	if len(days) < SummaryDays {
		return nil, &InsufficientDataError{Days: len(days), Required: SummaryDays}
	}
	return days[:SummaryDays], nil
}

// LabelDays names the strip slots: "Today", "Tomorrow", then the weekday of each day's date.
func LabelDays(days []DailyAggregate) []DaySummary {
	out := make([]DaySummary, len(days))
	for i, d := range days {
		label := d.Date.Weekday().String()
		switch i {
		case 0:
			label = "Today"
		case 1:
			label = "Tomorrow"
		}
		out[i] = DaySummary{Label: label, DailyAggregate: d}
	}
	return out
}

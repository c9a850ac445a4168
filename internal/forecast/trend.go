package forecast

import "time"

const (
	// DefaultTrendLimit is the number of hourly samples in the trend window.
	DefaultTrendLimit = 24

	trendLabelLayout = "03PM"
)

type TrendPoint struct {
	Label string
	Time  time.Time
	Value float64
}

type TrendWindow struct {
	Metric Metric
	Points []TrendPoint
}

// Upcoming returns at most limit table rows strictly after now, in table order.
func Upcoming(table *HourlyTable, now time.Time, limit int) []TimeSeriesPoint {
	if table.Len() == 0 || limit <= 0 {
		return nil
	}

	out := make([]TimeSeriesPoint, 0, min(limit, table.Len()))
	for _, p := range table.Points {
		if !p.Time.After(now) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

// BuildTrendWindow selects the rows after now and labels each with its 12-hour clock hour.
// Labels are not unique once the window crosses midnight.
func BuildTrendWindow(table *HourlyTable, now time.Time, metric Metric, limit int) TrendWindow {
	rows := Upcoming(table, now, limit)
	w := TrendWindow{Metric: metric, Points: make([]TrendPoint, len(rows))}
	for i, p := range rows {
		w.Points[i] = TrendPoint{
			Label: p.Time.Format(trendLabelLayout),
			Time:  p.Time,
			Value: metric.Value(p),
		}
	}
	return w
}

// Labels returns the display labels of the window.
func (w TrendWindow) Labels() []string {
	out := make([]string, len(w.Points))
	for i, p := range w.Points {
		out[i] = p.Label
	}
	return out
}

// Values returns the metric values of the window.
func (w TrendWindow) Values() []float64 {
	out := make([]float64, len(w.Points))
	for i, p := range w.Points {
		out[i] = p.Value
	}
	return out
}

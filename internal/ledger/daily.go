package ledger

import (
	"sort"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/montanaflynn/stats"
)

const dayLayout = "2006-01-02"

// DayTotal is the ledger activity of one calendar day.
type DayTotal struct {
	Day      string `json:"day"`
	Income   int64  `json:"income"`
	Expenses int64  `json:"expenses"`
	Net      int64  `json:"net"`
}

// DailyStats summarises the daily net of a set of days.
type DailyStats struct {
	Days      int     `json:"days"`
	MeanNet   float64 `json:"meanNet"`
	MedianNet float64 `json:"medianNet"`
	BestNet   float64 `json:"bestNet"`
	WorstNet  float64 `json:"worstNet"`
	StdDevNet float64 `json:"stdDevNet"`
}

// DailyTotals groups records by the calendar day of their timestamp in loc,
// oldest day first. Records without a timestamp are left out.
func DailyTotals(sales []domain.Sale, stays []domain.Stay, expenses []domain.Expense, loc *time.Location) []DayTotal {
	if loc == nil {
		loc = time.Local
	}
	days := make(map[string]*DayTotal)
	get := func(at int64) *DayTotal {
		key := domain.FromMillis(at).In(loc).Format(dayLayout)
		d, ok := days[key]
		if !ok {
			d = &DayTotal{Day: key}
			days[key] = d
		}
		return d
	}
	for _, s := range sales {
		if s.At > 0 {
			get(s.At).Income += s.TotalCOP
		}
	}
	for _, s := range stays {
		if s.At > 0 {
			get(s.At).Income += s.PriceCOP
		}
	}
	for _, e := range expenses {
		if e.At > 0 {
			get(e.At).Expenses += e.AmountCOP
		}
	}

	out := make([]DayTotal, 0, len(days))
	for _, d := range days {
		d.Net = d.Income - d.Expenses
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// SummariseDays computes the statistics of the daily nets. An empty input
// gives zero stats.
func SummariseDays(days []DayTotal) (DailyStats, error) {
	if len(days) == 0 {
		return DailyStats{}, nil
	}
	data := make(stats.Float64Data, 0, len(days))
	for _, d := range days {
		data = append(data, float64(d.Net))
	}
	var (
		res DailyStats
		err error
	)
	res.Days = len(days)
	if res.MeanNet, err = stats.Mean(data); err != nil {
		return DailyStats{}, err
	}
	if res.MedianNet, err = stats.Median(data); err != nil {
		return DailyStats{}, err
	}
	if res.BestNet, err = stats.Max(data); err != nil {
		return DailyStats{}, err
	}
	if res.WorstNet, err = stats.Min(data); err != nil {
		return DailyStats{}, err
	}
	if res.StdDevNet, err = stats.StandardDeviation(data); err != nil {
		return DailyStats{}, err
	}
	return res, nil
}

// Package earnings reduces task records into worker and organization totals.
// Everything here is a pure function of its inputs.
package earnings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Item is the part of a task the reductions need. Date is a calendar date.
type Item struct {
	WorkerID   uuid.UUID
	Date       time.Time
	Status     string
	Amount     decimal.Decimal
	Deductions []decimal.Decimal
}

// Net is amount minus the sum of deductions. The result may be negative.
func Net(amount decimal.Decimal, deductions []decimal.Decimal) decimal.Decimal {
	return amount.Sub(Sum(deductions))
}

func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

func (it Item) Net() decimal.Decimal {
	return Net(it.Amount, it.Deductions)
}

type Totals struct {
	Count      int             `json:"count"`
	Gross      decimal.Decimal `json:"gross"`
	Deductions decimal.Decimal `json:"deductions"`
	Net        decimal.Decimal `json:"net"`
}

func (t Totals) add(it Item) Totals {
	ded := Sum(it.Deductions)
	t.Count++
	t.Gross = t.Gross.Add(it.Amount)
	t.Deductions = t.Deductions.Add(ded)
	t.Net = t.Net.Add(it.Amount.Sub(ded))
	return t
}

func Total(items []Item) Totals {
	t := Totals{Gross: decimal.Zero, Deductions: decimal.Zero, Net: decimal.Zero}
	for _, it := range items {
		t = t.add(it)
	}
	return t
}

type WorkerStats struct {
	CompletedEarnings  decimal.Decimal `json:"completed_earnings"`
	WeeklyProjectTotal decimal.Decimal `json:"weekly_project_total"`
	AllTimeCount       int             `json:"all_time_count"`
	WeeklyCount        int             `json:"weekly_count"`
	DailyCount         int             `json:"daily_count"`
	AssignedCount      int             `json:"assigned_count"`
	CompletedCount     int             `json:"completed_count"`
}

// Summarize computes the stats of one worker's items for the week containing now.
func Summarize(items []Item, now time.Time, loc *time.Location) WorkerStats {
	week := WeekWindow(now, loc)
	today := DayWindow(now, loc)

	st := WorkerStats{CompletedEarnings: decimal.Zero, WeeklyProjectTotal: decimal.Zero}
	for _, it := range items {
		st.AllTimeCount++
		if today.Contains(it.Date) {
			st.DailyCount++
		}
		if !week.Contains(it.Date) {
			continue
		}
		net := it.Net()
		st.WeeklyCount++
		st.WeeklyProjectTotal = st.WeeklyProjectTotal.Add(net)
		switch it.Status {
		case StatusPending:
			st.AssignedCount++
		case StatusCompleted:
			st.CompletedCount++
			st.CompletedEarnings = st.CompletedEarnings.Add(net)
		}
	}
	return st
}

// SummarizeByWorker groups items by worker and summarizes each group.
func SummarizeByWorker(items []Item, now time.Time, loc *time.Location) map[uuid.UUID]WorkerStats {
	groups := make(map[uuid.UUID][]Item)
	for _, it := range items {
		groups[it.WorkerID] = append(groups[it.WorkerID], it)
	}
	out := make(map[uuid.UUID]WorkerStats, len(groups))
	for id, g := range groups {
		out[id] = Summarize(g, now, loc)
	}
	return out
}

type DayBucket struct {
	Date time.Time `json:"date"`
	Totals
}

// GroupByDay returns one bucket per day of w, in order, including empty days.
func GroupByDay(items []Item, w Window) []DayBucket {
	var buckets []DayBucket
	index := make(map[time.Time]int)
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		index[d] = len(buckets)
		buckets = append(buckets, DayBucket{Date: d, Totals: Total(nil)})
	}
	for _, it := range items {
		i, ok := index[civil(it.Date)]
		if !ok {
			continue
		}
		buckets[i].Totals = buckets[i].Totals.add(it)
	}
	return buckets
}

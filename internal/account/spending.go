package account

import (
	"time"

	"codeberg.org/mutker/wattd/internal/history"
)

const cycleWeek = 7 * 24 * time.Hour

// Spending summarizes a history of period averages. Energy is the average
// load times the period length; costs are rounded to cents.
type Spending struct {
	Entries     int           `json:"entries"`
	PeriodHours float64       `json:"periodHours"`
	PricePerKWh float64       `json:"pricePerKWh"`
	TotalKWh    float64       `json:"totalKWh"`
	AverageKWh  float64       `json:"averageKWh"`
	PeakKWh     float64       `json:"peakKWh"`
	PeakIndex   int           `json:"peakIndex"`
	TotalCost   float64       `json:"totalCost"`
	AverageCost float64       `json:"averageCost"`
	PeakCost    float64       `json:"peakCost"`
	Budget      *BudgetStatus `json:"budget,omitempty"`
}

// BudgetStatus projects the average period cost over one billing cycle
type BudgetStatus struct {
	Limit         float64 `json:"limit"`
	CycleWeeks    int     `json:"cycleWeeks"`
	ProjectedCost float64 `json:"projectedCost"`
	Remaining     float64 `json:"remaining"`
	OverBudget    bool    `json:"overBudget"`
}

// Summarize prices values at price $/kWh. PeakIndex is -1 for an empty
// history; the first of equal peaks wins. Budget is nil unless b is set.
func Summarize(values []float64, period time.Duration, price float64, b Budget) Spending {
	hours := period.Hours()
	s := Spending{
		Entries:     len(values),
		PeriodHours: hours,
		PricePerKWh: price,
		PeakIndex:   -1,
	}

	for i, v := range values {
		kwh := v * hours
		s.TotalKWh += kwh
		if s.PeakIndex < 0 || kwh > s.PeakKWh {
			s.PeakKWh, s.PeakIndex = kwh, i
		}
	}
	if s.Entries > 0 {
		s.AverageKWh = s.TotalKWh / float64(s.Entries)
	}
	averageCost := s.AverageKWh * price

	s.TotalCost = history.Round2(s.TotalKWh * price)
	s.AverageCost = history.Round2(averageCost)
	s.PeakCost = history.Round2(s.PeakKWh * price)
	s.TotalKWh = history.Round2(s.TotalKWh)
	s.AverageKWh = history.Round2(s.AverageKWh)
	s.PeakKWh = history.Round2(s.PeakKWh)

	if b.IsSet() && period > 0 {
		periods := float64(time.Duration(b.CycleWeeks)*cycleWeek) / float64(period)
		projected := history.Round2(averageCost * periods)
		s.Budget = &BudgetStatus{
			Limit:         b.Limit,
			CycleWeeks:    b.CycleWeeks,
			ProjectedCost: projected,
			Remaining:     history.Round2(b.Limit - projected),
			OverBudget:    projected > b.Limit,
		}
	}

	return s
}

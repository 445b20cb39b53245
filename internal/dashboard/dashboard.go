// Package dashboard reduces the booking list to the figures shown on the
// dashboard page.
package dashboard

import (
	"sort"
	"time"

	"showpro/internal/calendar"
	"showpro/internal/models"
)

type WeekCount struct {
	WeekStart models.Date `json:"week_start"`
	Count     int         `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type MonthProfit struct {
	Month   string  `json:"month"`
	SellFee float64 `json:"sell_fee"`
	BuyFee  float64 `json:"buy_fee"`
	Profit  float64 `json:"profit"`
}

// DepositSplit counts bookings that carry a deposit, split by whether it
// has been received.
type DepositSplit struct {
	PaidCount     int     `json:"paid_count"`
	PendingCount  int     `json:"pending_count"`
	PaidAmount    float64 `json:"paid_amount"`
	PendingAmount float64 `json:"pending_amount"`
}

type Totals struct {
	Bookings int     `json:"bookings"`
	SellFee  float64 `json:"sell_fee"`
	BuyFee   float64 `json:"buy_fee"`
	Profit   float64 `json:"profit"`
}

type Summary struct {
	Totals   Totals        `json:"totals"`
	Weeks    []WeekCount   `json:"weeks"`
	Statuses []StatusCount `json:"statuses"`
	Months   []MonthProfit `json:"months"`
	Deposits DepositSplit  `json:"deposits"`
}

func fee(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Compute aggregates bookings. Weeks are ISO weeks keyed by their Monday,
// months by YYYY-MM of the booking date. Missing fees count as zero. Weeks
// and months are chronological, statuses alphabetical.
func Compute(bookings []models.Booking) Summary {
	weeks := make(map[time.Time]int)
	statuses := make(map[string]int)
	months := make(map[string]*MonthProfit)
	var s Summary

	for _, b := range bookings {
		day := b.BookingDate.Time()
		sell, buy := fee(b.SellFee), fee(b.BuyFee)

		weeks[calendar.StartOfWeek(day, time.Monday)]++

		status := b.Status
		if status == "" {
			status = models.StatusPencilled
		}
		statuses[status]++

		key := day.Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &MonthProfit{Month: key}
			months[key] = m
		}
		m.SellFee += sell
		m.BuyFee += buy
		m.Profit += sell - buy

		if deposit := fee(b.DepositAmount); deposit > 0 || b.DepositPaid {
			if b.DepositPaid {
				s.Deposits.PaidCount++
				s.Deposits.PaidAmount += deposit
			} else {
				s.Deposits.PendingCount++
				s.Deposits.PendingAmount += deposit
			}
		}

		s.Totals.Bookings++
		s.Totals.SellFee += sell
		s.Totals.BuyFee += buy
		s.Totals.Profit += sell - buy
	}

	s.Weeks = make([]WeekCount, 0, len(weeks))
	for start, n := range weeks {
		s.Weeks = append(s.Weeks, WeekCount{WeekStart: models.DateOf(start), Count: n})
	}
	sort.Slice(s.Weeks, func(i, j int) bool {
		return s.Weeks[i].WeekStart.Time().Before(s.Weeks[j].WeekStart.Time())
	})

	s.Statuses = make([]StatusCount, 0, len(statuses))
	for status, n := range statuses {
		s.Statuses = append(s.Statuses, StatusCount{Status: status, Count: n})
	}
	sort.Slice(s.Statuses, func(i, j int) bool { return s.Statuses[i].Status < s.Statuses[j].Status })

	s.Months = make([]MonthProfit, 0, len(months))
	for _, m := range months {
		s.Months = append(s.Months, *m)
	}
	sort.Slice(s.Months, func(i, j int) bool { return s.Months[i].Month < s.Months[j].Month })

	return s
}

package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("некорректная дата в тесте: %v", err)
	}
	return d
}

func TestCommittedDays_InclusiveBounds(t *testing.T) {
	offer := &Offer{
		StartDate: date(t, "2024-03-01"),
		EndDate:   date(t, "2024-03-05"),
	}
	// Обе границы включительно.
	assert.Equal(t, 5, offer.CommittedDays())

	offer.EndDate = offer.StartDate
	assert.Equal(t, 1, offer.CommittedDays())

	offer.EndDate = date(t, "2024-02-28")
	assert.Equal(t, 0, offer.CommittedDays())
}

func TestComputeTotalCost_SingleCandidate(t *testing.T) {
	offer := &Offer{
		StartDate:  date(t, "2024-03-01"),
		EndDate:    date(t, "2024-03-05"),
		OnsiteDays: 1,
		Candidates: []Candidate{{
			DailyRate:              680,
			TravelCostPerOnsiteDay: 40,
		}},
	}
	// 680×5 + 40×1
	assert.Equal(t, 3440.0, offer.ComputeTotalCost())
}

func TestComputeTotalCost_SumsOverCandidates(t *testing.T) {
	offer := &Offer{
		StartDate:  date(t, "2024-03-01"),
		EndDate:    date(t, "2024-03-02"),
		OnsiteDays: 2,
		Candidates: []Candidate{
			{DailyRate: 500, TravelCostPerOnsiteDay: 30},
			{DailyRate: 300, TravelCostPerOnsiteDay: 0},
		},
	}
	// (500×2 + 30×2) + (300×2 + 0×2)
	assert.Equal(t, 1660.0, offer.ComputeTotalCost())

	// Без кандидатов стоимость нулевая.
	offer.Candidates = nil
	assert.Equal(t, 0.0, offer.ComputeTotalCost())
}

func TestComputeTotalCost_Deterministic(t *testing.T) {
	offer := &Offer{
		StartDate:  date(t, "2024-03-01"),
		EndDate:    date(t, "2024-03-10"),
		OnsiteDays: 3,
		Candidates: []Candidate{
			{DailyRate: 123.45, TravelCostPerOnsiteDay: 10.5},
			{DailyRate: 678.9, TravelCostPerOnsiteDay: 0},
		},
	}
	first := offer.ComputeTotalCost()
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, offer.ComputeTotalCost())
	}
}

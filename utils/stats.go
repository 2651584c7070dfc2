package utils

import "time"

// Stats tracks simulation throughput for the status displays.
type Stats struct {
	GenerationsPerSecond float64
	AveragePopulation    float64
	TotalGenerations     int
	StartTime            time.Time
}

// Snapshot is an immutable copy of the derived stats, embedded in frames so
// sinks never touch the live Stats value.
type Snapshot struct {
	GenerationsPerSecond float64 `json:"generations_per_second"`
	AveragePopulation    float64 `json:"average_population"`
	Uptime               float64 `json:"uptime_seconds"`
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// Update records one generation: the tick duration drives the throughput
// figure and the population feeds a simple moving average.
func (s *Stats) Update(generation int, population int, duration time.Duration) {
	s.TotalGenerations = generation
	if duration > 0 {
		s.GenerationsPerSecond = 1.0 / duration.Seconds()
	}

	// Simple moving average for population
	if s.AveragePopulation == 0 {
		s.AveragePopulation = float64(population)
	} else {
		s.AveragePopulation = (s.AveragePopulation * 0.9) + (float64(population) * 0.1)
	}
}

// Snapshot returns a copy of the current figures.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		GenerationsPerSecond: s.GenerationsPerSecond,
		AveragePopulation:    s.AveragePopulation,
		Uptime:               time.Since(s.StartTime).Seconds(),
	}
}

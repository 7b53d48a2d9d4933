package models

import "time"

// AnomalyPattern is a recurring anomaly hotspot mined from anomaly reports:
// one series repeatedly spiking in the same UTC hour of day.
type AnomalyPattern struct {
	SeriesName   string
	HourOfDay    int
	Occurrences  int
	Prevalence   float64
	AvgDeviation float64
	LastSeen     time.Time
}

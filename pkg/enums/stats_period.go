package enums

import "fmt"

// StatsPeriod is the bucket width used by statistics endpoints.
type StatsPeriod string

const (
	StatsPeriodDay   StatsPeriod = "day"
	StatsPeriodWeek  StatsPeriod = "week"
	StatsPeriodMonth StatsPeriod = "month"
)

var validStatsPeriods = []StatsPeriod{
	StatsPeriodDay,
	StatsPeriodWeek,
	StatsPeriodMonth,
}

// String implements fmt.Stringer.
func (v StatsPeriod) String() string {
	return string(v)
}

// IsValid reports whether the value is a known StatsPeriod.
func (v StatsPeriod) IsValid() bool {
	for _, candidate := range validStatsPeriods {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseStatsPeriod converts raw input into a StatsPeriod.
func ParseStatsPeriod(value string) (StatsPeriod, error) {
	for _, candidate := range validStatsPeriods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid statistics period %q", value)
}

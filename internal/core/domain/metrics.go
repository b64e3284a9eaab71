package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Metric string

const (
	MetricUserJoins Metric = "user_joins"
	MetricIncome    Metric = "income"
)

func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricUserJoins, MetricIncome:
		return Metric(s), nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Resource returns the stats resource guarding the metric.
func (m Metric) Resource() ResourceType {
	if m == MetricIncome {
		return ResourceIncomeStats
	}
	return ResourceUserJoinStats
}

// MetricEvent is one row of the event log: an account creation (Value 1) or a
// transaction amount.
type MetricEvent struct {
	At    time.Time
	Value decimal.Decimal
}

// Bucket is a half-open [Start, End) calendar slice.
type Bucket struct {
	Start time.Time `json:"bucket_start"`
	End   time.Time `json:"bucket_end"`
}

func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

type BucketPoint struct {
	Bucket
	Raw        decimal.Decimal `json:"raw"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

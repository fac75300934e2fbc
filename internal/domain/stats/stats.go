package stats

import (
	"context"
	"time"
)

// Curator is one entry of the top-curators leaderboard.
type Curator struct {
	Username        string `json:"username"`
	CollectionCount int    `json:"collectionCount"`
	ItemCount       int    `json:"itemCount"`
}

// DayActivity is one bar of the weekly activity histogram.
type DayActivity struct {
	Day    time.Time `json:"day"`
	Events int       `json:"events"`
}

// Platform is the aggregate admin metrics RPC payload.
type Platform struct {
	DailyActiveUsers   int           `json:"dailyActiveUsers"`
	MonthlyActiveUsers int           `json:"monthlyActiveUsers"`
	RetentionRate      float64       `json:"retentionRate"`
	ChurnCandidates    int           `json:"churnCandidates"`
	PublicLists        int           `json:"publicLists"`
	PrivateLists       int           `json:"privateLists"`
	AverageListSize    float64       `json:"averageListSize"`
	TopCurators        []Curator     `json:"topCurators"`
	WeeklyActivity     []DayActivity `json:"weeklyActivity"`
}

type Repository interface {
	Platform(ctx context.Context) (*Platform, error)
	// RecordActivity appends one event to the activity log the aggregates
	// are computed from.
	RecordActivity(ctx context.Context, userID string, kind string, occurredAt time.Time) error
}

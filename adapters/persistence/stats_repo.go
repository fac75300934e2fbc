package persistence

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hntran/reelist/internal/domain/stats"
	"github.com/hntran/reelist/pkg/apperror"
	"github.com/hntran/reelist/pkg/logger"
)

type postgresStatsRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresStatsRepo(db *pgxpool.Pool, logger logger.Logger) stats.Repository {
	return &postgresStatsRepo{db: db, logger: logger}
}

var psqlStats = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// churnWindow is how long an account may stay idle before it counts as a
// churn candidate.
const churnWindow = 30 * 24 * time.Hour

func (r *postgresStatsRepo) Platform(ctx context.Context) (*stats.Platform, error) {
	now := time.Now().UTC()
	out := &stats.Platform{}

	if err := r.countActive(ctx, now.Add(-24*time.Hour), &out.DailyActiveUsers); err != nil {
		return nil, err
	}
	if err := r.countActive(ctx, now.AddDate(0, -1, 0), &out.MonthlyActiveUsers); err != nil {
		return nil, err
	}
	if out.MonthlyActiveUsers > 0 {
		out.RetentionRate = float64(out.DailyActiveUsers) / float64(out.MonthlyActiveUsers)
	}

	churnSQL, churnArgs, err := psqlStats.
		Select("COUNT(*)").
		From("profiles p").
		Where(sq.Expr(`NOT EXISTS (
			SELECT 1 FROM activity_log a
			WHERE a.user_id = p.id::text AND a.occurred_at > ?
		)`, now.Add(-churnWindow))).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build churn query", err)
	}
	if err := r.db.QueryRow(ctx, churnSQL, churnArgs...).Scan(&out.ChurnCandidates); err != nil {
		return nil, apperror.NewInternal("failed to count churn candidates", err)
	}

	listSQL, listArgs, err := psqlStats.
		Select(
			"COUNT(*) FILTER (WHERE is_public)",
			"COUNT(*) FILTER (WHERE NOT is_public)",
			"COALESCE(AVG(jsonb_array_length(items)), 0)",
		).
		From("collections").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list stats query", err)
	}
	if err := r.db.QueryRow(ctx, listSQL, listArgs...).Scan(
		&out.PublicLists, &out.PrivateLists, &out.AverageListSize,
	); err != nil {
		return nil, apperror.NewInternal("failed to query list stats", err)
	}

	curatorSQL, curatorArgs, err := psqlStats.
		Select("p.username", "COUNT(c.id)", "COALESCE(SUM(jsonb_array_length(c.items)), 0)").
		From("collections c").
		Join("profiles p ON p.id = c.owner_id").
		GroupBy("p.username").
		OrderBy("SUM(jsonb_array_length(c.items)) DESC").
		Limit(10).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build curators query", err)
	}
	rows, err := r.db.Query(ctx, curatorSQL, curatorArgs...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query top curators", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c stats.Curator
		if err := rows.Scan(&c.Username, &c.CollectionCount, &c.ItemCount); err != nil {
			return nil, apperror.NewInternal("failed to scan curator", err)
		}
		out.TopCurators = append(out.TopCurators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating curators", err)
	}

	weekSQL, weekArgs, err := psqlStats.
		Select("date_trunc('day', occurred_at) AS day", "COUNT(*)").
		From("activity_log").
		Where(sq.Gt{"occurred_at": now.AddDate(0, 0, -7)}).
		GroupBy("day").
		OrderBy("day ASC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build weekly activity query", err)
	}
	weekRows, err := r.db.Query(ctx, weekSQL, weekArgs...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query weekly activity", err)
	}
	defer weekRows.Close()
	for weekRows.Next() {
		var d stats.DayActivity
		if err := weekRows.Scan(&d.Day, &d.Events); err != nil {
			return nil, apperror.NewInternal("failed to scan weekly activity", err)
		}
		out.WeeklyActivity = append(out.WeeklyActivity, d)
	}
	if err := weekRows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating weekly activity", err)
	}

	return out, nil
}

func (r *postgresStatsRepo) RecordActivity(ctx context.Context, userID string, kind string, occurredAt time.Time) error {
	insertSQL, args, err := psqlStats.
		Insert("activity_log").
		Columns("user_id", "kind", "occurred_at").
		Values(userID, kind, occurredAt).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build activity insert", err)
	}
	if _, err := r.db.Exec(ctx, insertSQL, args...); err != nil {
		return apperror.NewInternal("failed to record activity", err)
	}
	return nil
}

func (r *postgresStatsRepo) countActive(ctx context.Context, since time.Time, out *int) error {
	activeSQL, args, err := psqlStats.
		Select("COUNT(DISTINCT user_id)").
		From("activity_log").
		Where(sq.Gt{"occurred_at": since}).
		ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build active users query", err)
	}
	if err := r.db.QueryRow(ctx, activeSQL, args...).Scan(out); err != nil {
		return apperror.NewInternal("failed to count active users", err)
	}
	return nil
}

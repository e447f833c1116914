package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnStats holds server-side connection counters for one database.
type ConnStats struct {
	Total  int64
	Active int64
}

// connStatsQuery counts backends for this service's own database, split
// into total and currently-active. coalesce covers the zero-row case.
const connStatsQuery = `
SELECT count(*),
       coalesce(sum(CASE WHEN state = 'active' THEN 1 ELSE 0 END), 0)
FROM pg_stat_activity
WHERE datname = $1`

// Stats returns a closure that fetches connection counters from
// pg_stat_activity, scoped to the database name the pool is connected to.
func Stats(pool *pgxpool.Pool) func(context.Context) (ConnStats, error) {
	return func(ctx context.Context) (ConnStats, error) {
		if pool == nil {
			return ConnStats{}, ErrStatsUnavailable
		}
		dbname := pool.Config().ConnConfig.Database

		var stats ConnStats
		if err := pool.QueryRow(ctx, connStatsQuery, dbname).Scan(&stats.Total, &stats.Active); err != nil {
			return ConnStats{}, errors.Join(ErrStatsUnavailable, err)
		}
		return stats, nil
	}
}

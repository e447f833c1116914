package db

import "errors"

var (
	ErrFailedToParseConfig = errors.New("db: failed to parse database configuration")
	ErrConnectionFailed    = errors.New("db: failed to open database connection")
	ErrHealthcheckFailed   = errors.New("db: healthcheck failed")
	ErrStatsUnavailable    = errors.New("db: connection stats unavailable")
)

package config

import "errors"

var ErrInvalidConfig = errors.New("config: failed to parse environment configuration")

package sysinfo

import "errors"

var (
	ErrUnavailable  = errors.New("sysinfo: resource metrics unavailable on this host")
	ErrSampleFailed = errors.New("sysinfo: failed to sample host resources")
)

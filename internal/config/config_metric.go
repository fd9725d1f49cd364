package config

import (
	"regexp"
)

const metricIDPattern = `^[a-z0-9][a-z0-9_-]*$`

var metricIDRegex = regexp.MustCompile(metricIDPattern)

// IsValidMetricID checks that an id is usable as a DOM id, JSON key and
// NATS subject token.
func IsValidMetricID(id string) bool {
	return metricIDRegex.MatchString(id)
}

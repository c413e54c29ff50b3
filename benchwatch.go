/*
Package benchwatch holds application level constants and the shared
environment for the benchwatch service, which records benchmark results
from CI runs and publishes their history for dashboard rendering.
*/
package benchwatch

const (
	ShortDateFormat = "2006-01-02T15:04"

	QueueName       = "benchwatch.service"
	ServiceName     = "benchwatch"
	DefaultDatabase = "benchwatch"
)

// BuildRevision stores the commit in the git repository at build time and is
// specified with -ldflags at build time.
var BuildRevision = ""

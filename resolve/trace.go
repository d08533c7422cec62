package resolve

import (
	"github.com/sirupsen/logrus"
)

// Trace receives structured progress events from the Resolver as it runs.
// It mirrors the role a bare Logger plays, but carries
// structured fields (level, name, version) instead of formatted strings, so
// a caller can pipe it to JSON, a file, or discard it entirely.
type Trace struct {
	log *logrus.Logger
}

// NewTrace wraps an existing logrus.Logger. A nil logger yields a Trace
// whose logging is silenced entirely (logrus.PanicLevel, matching the
// silent mode).
func NewTrace(logger *logrus.Logger) *Trace {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}
	return &Trace{log: logger}
}

func (t *Trace) attempt(level int, name, version string) {
	t.log.WithFields(logrus.Fields{"level": level, "name": name, "version": version}).Debug("attempting")
}

func (t *Trace) applied(level int, name, version string) {
	t.log.WithFields(logrus.Fields{"level": level, "name": name, "version": version}).Info("applied")
}

func (t *Trace) rejected(level int, name, version, reason string) {
	t.log.WithFields(logrus.Fields{"level": level, "name": name, "version": version, "reason": reason}).Debug("rejected")
}

func (t *Trace) backtrack(fromLevel, toLevel int, name string) {
	t.log.WithFields(logrus.Fields{"from": fromLevel, "to": toLevel, "name": name}).Warn("backtracking")
}

func (t *Trace) done(nodes int) {
	t.log.WithFields(logrus.Fields{"nodes": nodes}).Info("resolved")
}

func (t *Trace) failed(name, report string) {
	t.log.WithFields(logrus.Fields{"name": name}).WithField("report", report).Error("could not resolve")
}

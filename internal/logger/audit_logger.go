// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for wagering decisions, so a
// card's output can be reconstructed from logs alone.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogTicket records one vertical ticket.
func (al *AuditLogger) LogTicket(runID string, race int, betType, ticket, cost string) {
	al.WithFields(logrus.Fields{
		"run_id": runID,
		"race":   race,
		"type":   betType,
		"ticket": ticket,
		"cost":   cost,
	}).Info("Ticket recorded")
}

// LogSequence records one horizontal sequence with its trim outcome.
func (al *AuditLogger) LogSequence(runID, name string, startRace, endRace int, unit string, combos int, cost, legs, notes string) {
	al.WithFields(logrus.Fields{
		"run_id":     runID,
		"sequence":   name,
		"start_race": startRace,
		"end_race":   endRace,
		"unit":       unit,
		"combos":     combos,
		"cost":       cost,
		"legs":       legs,
		"notes":      notes,
	}).Info("Sequence recorded")
}

// LogRaceState records the per-race classification verdict.
func (al *AuditLogger) LogRaceState(runID string, race int, chaos bool, single int) {
	fields := logrus.Fields{
		"run_id": runID,
		"race":   race,
		"chaos":  chaos,
	}
	if single > 0 {
		fields["single"] = single
	}
	al.WithFields(fields).Debug("Race state recorded")
}

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportStatusValid(t *testing.T) {
	assert.True(t, ReportStatusPending.Valid())
	assert.True(t, ReportStatusInProgress.Valid())
	assert.True(t, ReportStatusResolved.Valid())
	assert.True(t, ReportStatusRejected.Valid())
	assert.False(t, ReportStatus("Pending").Valid())
	assert.False(t, ReportStatus("escalated").Valid())
}

func TestReportStatusTransitions(t *testing.T) {
	// Pending can go anywhere.
	assert.True(t, ReportStatusPending.CanTransition(ReportStatusInProgress))
	assert.True(t, ReportStatusPending.CanTransition(ReportStatusResolved))
	assert.True(t, ReportStatusPending.CanTransition(ReportStatusRejected))

	// In progress can only close out.
	assert.True(t, ReportStatusInProgress.CanTransition(ReportStatusResolved))
	assert.True(t, ReportStatusInProgress.CanTransition(ReportStatusRejected))
	assert.False(t, ReportStatusInProgress.CanTransition(ReportStatusPending))

	// Terminal states reject everything but themselves.
	assert.False(t, ReportStatusResolved.CanTransition(ReportStatusPending))
	assert.False(t, ReportStatusResolved.CanTransition(ReportStatusRejected))
	assert.False(t, ReportStatusRejected.CanTransition(ReportStatusInProgress))

	// Re-setting the same status is idempotent everywhere.
	for _, s := range []ReportStatus{ReportStatusPending, ReportStatusInProgress, ReportStatusResolved, ReportStatusRejected} {
		assert.True(t, s.CanTransition(s))
	}
}

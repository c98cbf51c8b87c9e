package scheduler

import (
	"time"

	apperp "github.com/erpbridge/backend/internal/application/erp"
	"github.com/google/uuid"
)

// JobStatus represents the status of a batch job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusPartial JobStatus = "PARTIAL"
	JobStatusSkipped JobStatus = "SKIPPED"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobTrigger records what queued a job
type JobTrigger string

const (
	JobTriggerScheduled JobTrigger = "SCHEDULED"
	JobTriggerManual    JobTrigger = "MANUAL"
)

// ErpBatchJob is one tenant's run of the automatic generate-and-send sweep
type ErpBatchJob struct {
	ID          uuid.UUID                `json:"id"`
	TenantID    uuid.UUID                `json:"tenant_id"`
	Trigger     JobTrigger               `json:"trigger"`
	Status      JobStatus                `json:"status"`
	Error       string                   `json:"error,omitempty"`
	QueuedAt    time.Time                `json:"queued_at"`
	StartedAt   *time.Time               `json:"started_at,omitempty"`
	CompletedAt *time.Time               `json:"completed_at,omitempty"`
	Summary     *apperp.AutoBatchSummary `json:"summary,omitempty"`
}

// NewErpBatchJob creates a pending job
func NewErpBatchJob(tenantID uuid.UUID, trigger JobTrigger) *ErpBatchJob {
	return &ErpBatchJob{
		ID:       uuid.New(),
		TenantID: tenantID,
		Trigger:  trigger,
		Status:   JobStatusPending,
		QueuedAt: time.Now(),
	}
}

// Start marks the job as running
func (j *ErpBatchJob) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the sweep summary. Any generate or send failure makes the job PARTIAL.
func (j *ErpBatchJob) Complete(summary *apperp.AutoBatchSummary) {
	now := time.Now()
	j.CompletedAt = &now
	j.Summary = summary

	switch {
	case summary == nil:
		j.Status = JobStatusSuccess
	case summary.Skipped:
		j.Status = JobStatusSkipped
	case summary.GenerateFailCount > 0 || summary.SendFailCount > 0:
		j.Status = JobStatusPartial
	default:
		j.Status = JobStatusSuccess
	}
}

// Fail marks the job as failed
func (j *ErpBatchJob) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// Duration returns how long the job ran, zero until it completes
func (j *ErpBatchJob) Duration() time.Duration {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return 0
	}
	return j.CompletedAt.Sub(*j.StartedAt)
}

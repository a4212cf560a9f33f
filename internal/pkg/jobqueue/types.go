package jobqueue

import (
	"encoding/json"
	"time"

	"github.com/dztechshop/dzshop/internal/pkg/payments"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeProviderNotification JobType = "provider_notification"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
}

// MarkAsProcessing marks the job as currently being processed
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.ProcessedAt = &now
	j.UpdatedAt = now
}

// MarkAsCompleted marks the job as completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed marks the job as failed, retaining the error message on the
// job record for inspection.
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMsg = errorMsg
	j.UpdatedAt = time.Now()
}

// ProviderNotificationJobPayload carries one outbound webhook notification.
// The notifier owns the per-delivery retry loop, so the queue itself never
// re-runs a notification job.
type ProviderNotificationJobPayload struct {
	WebhookURL   string                       `json:"webhook_url"`
	ProviderSlug string                       `json:"provider_slug"`
	Notification payments.NotificationPayload `json:"notification"`
}

// ToMap converts the payload to a map for storage on the job record
func (p ProviderNotificationJobPayload) ToMap() map[string]interface{} {
	data, _ := json.Marshal(p)
	var m map[string]interface{}
	_ = json.Unmarshal(data, &m)
	return m
}

// ProviderNotificationJobPayloadFromMap creates a payload from a job record
func ProviderNotificationJobPayloadFromMap(data map[string]interface{}) (*ProviderNotificationJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var p ProviderNotificationJobPayload
	if err := json.Unmarshal(jsonData, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

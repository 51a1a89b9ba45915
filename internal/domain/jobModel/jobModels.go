package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	IngestInit       InternalStatus = "IngestInit"
	CollectionInit   InternalStatus = "CollectionInit"
	LoadCall         InternalStatus = "Load"
	SplitCall        InternalStatus = "Split"
	EmbeddingAPICall InternalStatus = "EmbeddingAPI"
	VectorDBCall     InternalStatus = "VectorDB"
	RedisCall        InternalStatus = "Redis"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeIngestLocal   JobType = "IngestLocal"
	JobTypeIngestWebsite JobType = "IngestWebsite"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// JobPayload carries the ingestion request and, once finished, its result.
type JobPayload struct {
	Paths                 []string `json:"paths,omitempty"`
	URLs                  []string `json:"urls,omitempty"`
	CollectionName        string   `json:"collection_name,omitempty"`
	CollectionDescription string   `json:"collection_description,omitempty"`
	RemoveAfterIngest     bool     `json:"remove_after_ingest,omitempty"` //uploaded temp files

	DocumentCount int `json:"document_count,omitempty"`
	ChunkCount    int `json:"chunk_count,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

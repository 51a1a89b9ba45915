package api

import (
	"time"

	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
)

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	JobType   string            `json:"job_type" example:"IngestLocal"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type IngestResult struct {
	CollectionName string `json:"collection_name" example:"deepsearcher"`
	DocumentCount  int    `json:"document_count" example:"12"`
	ChunkCount     int    `json:"chunk_count" example:"240"`
}

type Result struct {
	Status       string        `json:"status"`
	CurrentStep  string        `json:"current_step,omitempty"`
	IngestResult *IngestResult `json:"ingest_result,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type HealthResponse struct {
	Status         string `json:"status" example:"ok"`
	EmbeddingModel string `json:"embedding_model" example:"default"`
	Dimension      int    `json:"dimension" example:"768"`
}

// requests---------------------

// LocalIngestRequest accepts "paths" as a single string or a list.
type LocalIngestRequest struct {
	Paths                 commonModels.PathList `json:"paths" validate:"required" swaggertype:"array,string"`
	CollectionName        string                `json:"collection_name,omitempty"`
	CollectionDescription string                `json:"collection_description,omitempty"`
}

type WebsiteIngestRequest struct {
	URLs                  commonModels.PathList `json:"urls" validate:"required" swaggertype:"array,string"`
	CollectionName        string                `json:"collection_name,omitempty"`
	CollectionDescription string                `json:"collection_description,omitempty"`
}

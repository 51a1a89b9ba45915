package rag_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/domain/jobModel"
	"github.com/niexiaoning/deep-searcher/internal/rag"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/niexiaoning/deep-searcher/internal/rag/ingest"
	"github.com/niexiaoning/deep-searcher/internal/rag/vectorDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestLocalFiles_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(m *MockIngester)
		expectedStep   jobModel.InternalStatus
		expectedStatus jobModel.JobStatus
		expectedChunks int
		expectRetry    bool
	}{
		{
			name: "Success",
			setupMock: func(m *MockIngester) {
				m.OnLoadFromLocalFiles = func(ctx context.Context, paths []string, name, desc string) (ingest.Result, error) {
					return ingest.Result{Collection: "docs", Documents: 2, Chunks: 7}, nil
				}
			},
			expectedStep:   jobModel.Complete,
			expectedStatus: jobModel.JobStatusComplete,
			expectedChunks: 7,
		},
		{
			name: "Failure_Backend_Is_Retryable",
			setupMock: func(m *MockIngester) {
				m.OnLoadFromLocalFiles = func(ctx context.Context, paths []string, name, desc string) (ingest.Result, error) {
					return ingest.Result{}, errors.New("embedding api timeout")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectRetry:    true,
		},
		{
			name: "Failure_Configuration_Is_Not_Retryable",
			setupMock: func(m *MockIngester) {
				m.OnLoadFromLocalFiles = func(ctx context.Context, paths []string, name, desc string) (ingest.Result, error) {
					return ingest.Result{}, embedding.NewConfigurationError("jina-embeddings-v3", "missing api key")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
		},
		{
			name: "Failure_Dimension_Mismatch_Is_Not_Retryable",
			setupMock: func(m *MockIngester) {
				m.OnLoadFromLocalFiles = func(ctx context.Context, paths []string, name, desc string) (ingest.Result, error) {
					return ingest.Result{}, fmt.Errorf("initialising collection: %w", vectorDB.ErrDimensionMismatch)
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mIngest := &MockIngester{}
			tt.setupMock(mIngest)
			s := rag.NewService(mIngest)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := jobModel.Job{
				Id:         "test-job",
				JobType:    jobModel.JobTypeIngestLocal,
				JobPayload: jobModel.JobPayload{Paths: []string{"a.txt"}, CollectionName: "docs"},
			}

			result := s.IngestLocalFiles(ctx, job)

			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.Equal(t, tt.expectedStep, result.CurrentStep)
			assert.Equal(t, tt.expectedChunks, result.JobPayload.ChunkCount)
			if tt.expectedStatus == jobModel.JobStatusError {
				assert.Equal(t, http.StatusInternalServerError, result.Error.Code)
				assert.Equal(t, tt.expectRetry, result.Error.Retry)
				assert.NotEmpty(t, result.Error.Message)
			}
		})
	}
}

func TestIngestLocalFiles_PassesPayload(t *testing.T) {
	var gotPaths []string
	var gotName, gotDesc string
	mIngest := &MockIngester{
		OnLoadFromLocalFiles: func(ctx context.Context, paths []string, name, desc string) (ingest.Result, error) {
			gotPaths, gotName, gotDesc = paths, name, desc
			return ingest.Result{Collection: name}, nil
		},
	}

	job := jobModel.Job{JobPayload: jobModel.JobPayload{
		Paths:                 []string{"dir1", "dir2"},
		CollectionName:        "papers",
		CollectionDescription: "research papers",
	}}
	rag.NewService(mIngest).IngestLocalFiles(context.Background(), job)

	assert.Equal(t, []string{"dir1", "dir2"}, gotPaths)
	assert.Equal(t, "papers", gotName)
	assert.Equal(t, "research papers", gotDesc)
}

func TestIngestLocalFiles_RemovesUploadsEvenOnFailure(t *testing.T) {
	upload := filepath.Join(t.TempDir(), "upload.txt")
	require.NoError(t, os.WriteFile(upload, []byte("uploaded"), 0o644))

	mIngest := &MockIngester{
		OnLoadFromLocalFiles: func(ctx context.Context, paths []string, name, desc string) (ingest.Result, error) {
			return ingest.Result{}, errors.New("vector db down")
		},
	}
	job := jobModel.Job{JobPayload: jobModel.JobPayload{Paths: []string{upload}, RemoveAfterIngest: true}}
	result := rag.NewService(mIngest).IngestLocalFiles(context.Background(), job)

	assert.Equal(t, jobModel.JobStatusError, result.Status)
	_, err := os.Stat(upload)
	assert.True(t, os.IsNotExist(err))
}

func TestIngestWebsite(t *testing.T) {
	var gotURLs []string
	mIngest := &MockIngester{
		OnLoadFromWebsite: func(ctx context.Context, urls []string, name, desc string) (ingest.Result, error) {
			gotURLs = urls
			return ingest.Result{Collection: "web", Documents: 1, Chunks: 3}, nil
		},
	}
	job := jobModel.Job{
		JobType:    jobModel.JobTypeIngestWebsite,
		JobPayload: jobModel.JobPayload{URLs: []string{"https://example.com"}},
	}
	result := rag.NewService(mIngest).IngestWebsite(context.Background(), job)

	assert.Equal(t, []string{"https://example.com"}, gotURLs)
	assert.Equal(t, jobModel.JobStatusComplete, result.Status)
	assert.Equal(t, "web", result.JobPayload.CollectionName)
	assert.Equal(t, 3, result.JobPayload.ChunkCount)
}

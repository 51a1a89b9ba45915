package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/niexiaoning/deep-searcher/internal/adapter"
	"github.com/niexiaoning/deep-searcher/internal/adapter/utils"
	"github.com/niexiaoning/deep-searcher/internal/api"
	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
	"github.com/niexiaoning/deep-searcher/internal/domain/jobModel"
	"github.com/niexiaoning/deep-searcher/internal/rag/loader"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

type RequestHandler struct {
	jobs      *JobHandler
	uploadDir string
	health    api.HealthResponse
	logger    *logger_i.Logger
}

// NewRequestHandler serves the ingestion API. Uploaded files are written
// under uploadDir; an empty uploadDir means config.UploadDir in the working
// directory.
func NewRequestHandler(jobs *JobHandler, uploadDir string, embeddingModel string, dimension int) *RequestHandler {
	return &RequestHandler{
		jobs:      jobs,
		uploadDir: uploadDir,
		health:    api.HealthResponse{Status: "ok", EmbeddingModel: embeddingModel, Dimension: dimension},
		logger:    logger_i.NewLogger("RequestHandler"),
	}
}

// GetHandler godoc
// @Summary      Health check
// @Description  Reports that the service is up and which embedding model it ingests with.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func (h *RequestHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, h.health, h.logger)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of an ingestion job using its ID.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func (h *RequestHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	h.logger.Debug("Get Status Request", "URL path", r.URL.Path)

	result, isFound := h.jobs.GetJobStatus(r.Context(), idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result), h.logger)
}

// PostLocalIngestHandler godoc
// @Summary      Ingest local files or directories
// @Description  Queues a job that recreates the collection and loads every path in order. "paths" may be a single string or a list.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.LocalIngestRequest  true  "Paths and target collection"
// @Success      202      {object}  api.InitJobResponse     "Job successfully created"
// @Failure      400      {object}  api.JobResponse         "Invalid request or missing path"
// @Failure      503      {object}  api.JobResponse         "Job queue is full"
// @Router       /ingest/local [post]
func (h *RequestHandler) PostLocalIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	defer closeBody(r.Body, h.logger)

	var requestData api.LocalIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || len(requestData.Paths) == 0 {
		h.logger.Warn("Bad local ingest request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "paths is required")
		return
	}
	for _, p := range requestData.Paths {
		if _, err := os.Stat(p); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", fmt.Sprintf("path %q is not readable", p))
			return
		}
	}

	h.queue(w, r, newJobData{
		jobType:     jobModel.JobTypeIngestLocal,
		paths:       requestData.Paths,
		collection:  requestData.CollectionName,
		description: requestData.CollectionDescription,
	})
}

// PostWebsiteIngestHandler godoc
// @Summary      Ingest web pages
// @Description  Queues a job that recreates the collection and loads every URL in order. "urls" may be a single string or a list.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.WebsiteIngestRequest  true  "URLs and target collection"
// @Success      202      {object}  api.InitJobResponse       "Job successfully created"
// @Failure      400      {object}  api.JobResponse           "Invalid request or URL"
// @Failure      503      {object}  api.JobResponse           "Job queue is full"
// @Router       /ingest/website [post]
func (h *RequestHandler) PostWebsiteIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}
	defer closeBody(r.Body, h.logger)

	var requestData api.WebsiteIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || len(requestData.URLs) == 0 {
		h.logger.Warn("Bad website ingest request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "urls is required")
		return
	}
	for _, raw := range requestData.URLs {
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", fmt.Sprintf("invalid url %q", raw))
			return
		}
	}

	h.queue(w, r, newJobData{
		jobType:     jobModel.JobTypeIngestWebsite,
		urls:        requestData.URLs,
		collection:  requestData.CollectionName,
		description: requestData.CollectionDescription,
	})
}

// PostUploadIngestHandler handles the uploading of a document for ingestion.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, saves it to a temporary directory, and queues an ingestion job. The file is removed once the job finishes.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document                formData  file    true   "pdf, docx, odt, rtf, txt or md file"
// @Param        collection_name         formData  string  false  "Target collection"
// @Param        collection_description  formData  string  false  "Collection description"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing fields, unsupported type or file too large"
// @Failure      503  {object}  api.JobResponse "Job queue is full"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /ingest/upload [post]
func (h *RequestHandler) PostUploadIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context(), h.logger) {
		return
	}

	targetDir, err := getTargetDirectory(h.uploadDir)
	if err != nil {
		h.logger.Error("Couldn't get target directory", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSizeBytes)
	if err := r.ParseMultipartForm(config.MaxUploadSizeBytes); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	baseName := filepath.Base(fileMetadata.Filename)
	if loader.GetDocType(baseName) == commonModels.ERR {
		WriteErrorResponse(w, http.StatusBadRequest, baseName, fmt.Sprintf("unsupported file type, expected one of %v", loader.SupportedExtensions()))
		return
	}

	tempFilePath := filepath.Join(targetDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), baseName))
	if err := saveUpload(tempFilePath, fileReader); err != nil {
		h.logger.Error("Error saving upload", "path", tempFilePath, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, baseName, "Write error")
		return
	}

	queued := h.queue(w, r, newJobData{
		jobType:        jobModel.JobTypeIngestLocal,
		paths:          []string{tempFilePath},
		collection:     r.FormValue("collection_name"),
		description:    r.FormValue("collection_description"),
		removeUploaded: true,
	})
	if !queued {
		if err := os.Remove(tempFilePath); err != nil {
			h.logger.Warn("Could not remove upload", "path", tempFilePath, "error", err)
		}
	}
}

func (h *RequestHandler) queue(w http.ResponseWriter, r *http.Request, newJob newJobData) bool {
	newJob.id = utils.GetNewUUID()
	newJob.traceId, _ = r.Context().Value(config.TRACE_ID_KEY).(string)
	if err := h.jobs.CreateNewJob(r.Context(), newJob); err != nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, newJob.id, "Job queue is full, try again later")
		return false
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id), h.logger)
	return true
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return err
	}
	return dst.Close()
}

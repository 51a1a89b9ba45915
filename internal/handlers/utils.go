package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/niexiaoning/deep-searcher/internal/adapter"
	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

var logUtil = logger_i.NewLogger("handlers")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}, log *logger_i.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already sent
		log.Error("Error encoding response", "error", err)
	}
}

func validateContext(ctx context.Context, log *logger_i.Logger) bool {
	if err := ctx.Err(); err != nil {
		log.Warn("context error", "traceId", ctx.Value(config.TRACE_ID_KEY), "error", err)
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, message, httpCode), logUtil)
}

func getTargetDirectory(dir string) (string, error) {
	if dir == "" {
		root, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(root, config.UploadDir)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}

func closeBody(body io.ReadCloser, log *logger_i.Logger) {
	if err := body.Close(); err != nil {
		log.Error("Couldn't close the request body", "error", err)
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/antonio-alexander/go-org-directory/internal/data"
	"github.com/antonio-alexander/go-org-directory/internal/sql"
	"github.com/antonio-alexander/go-org-directory/internal/utilities"
)

var (
	ErrInvalidPagination = errors.New("invalid pagination")
	ErrInvalidId         = errors.New("invalid id")
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func getCorrelationId(request *http.Request) string {
	return request.Header.Get(data.HeaderCorrelationId)
}

func idFromPath(pathVariables map[string]string, key string) (int64, error) {
	id, err := strconv.ParseInt(pathVariables[key], 10, 64)
	if err != nil {
		return 0, errors.Join(ErrInvalidId, err)
	}
	return id, nil
}

// errorResponse maps an error to its status code and body; not found is
// reported as 410 Gone. Internal errors are logged, never sent.
func errorResponse(err error) (int, *data.ErrorResponse) {
	switch {
	default:
		return http.StatusInternalServerError, &data.ErrorResponse{
			ErrorCode: data.ErrorCodeInternal,
		}
	case errors.Is(err, sql.ErrDepartmentNotFound):
		return http.StatusGone, &data.ErrorResponse{
			ErrorCode: data.ErrorCodeDepartmentNotFound,
		}
	case errors.Is(err, sql.ErrEmployeeNotFound):
		return http.StatusGone, &data.ErrorResponse{
			ErrorCode: data.ErrorCodeEmployeeNotFound,
		}
	case errors.Is(err, ErrInvalidPagination):
		return http.StatusUnprocessableEntity, &data.ErrorResponse{
			ErrorCode: data.ErrorCodeInvalidPagination,
			Message:   err.Error(),
		}
	case errors.Is(err, ErrInvalidId):
		return http.StatusUnprocessableEntity, &data.ErrorResponse{
			ErrorCode: data.ErrorCodeInvalidId,
			Message:   err.Error(),
		}
	}
}

func handleError(ctx context.Context, logger utilities.Logger, writer http.ResponseWriter, err error) {
	statusCode, response := errorResponse(err)
	if statusCode >= http.StatusInternalServerError {
		logger.Error(ctx, "error while handling request: %s", err)
	}
	writeJson(ctx, logger, writer, statusCode, response)
}

func handleResponse(ctx context.Context, logger utilities.Logger, writer http.ResponseWriter, item any) {
	writeJson(ctx, logger, writer, http.StatusOK, item)
}

func writeJson(ctx context.Context, logger utilities.Logger, writer http.ResponseWriter, statusCode int, item any) {
	bytes, err := json.Marshal(item)
	if err != nil {
		logger.Error(ctx, "error handling response: %s", err)
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}
	writer.Header().Set("Content-Type", data.ContentTypeApplicationJsonU)
	writer.WriteHeader(statusCode)
	if _, err := writer.Write(bytes); err != nil {
		logger.Error(ctx, "error handling response: %s", err)
	}
}

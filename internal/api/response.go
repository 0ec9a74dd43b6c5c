package api

import (
	"net/http"
	"strconv"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/services"
)

var kindStatus = map[services.ErrorKind]int{
	services.KindValidation:   http.StatusBadRequest,
	services.KindNotFound:     http.StatusNotFound,
	services.KindConflict:     http.StatusBadRequest,
	services.KindRateLimit:    http.StatusTooManyRequests,
	services.KindDependency:   http.StatusInternalServerError,
	services.KindUnauthorized: http.StatusUnauthorized,
	services.KindForbidden:    http.StatusForbidden,
}

// StatusForError maps a service error to its HTTP status.
func StatusForError(err error) int {
	if se, ok := services.AsServiceError(err); ok {
		if code, ok := kindStatus[se.Kind]; ok {
			return code
		}
	}
	return http.StatusInternalServerError
}

// respondServiceError renders err in the error envelope. Only user facing
// messages leave the process; wrapped causes are logged.
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error, extra map[string]any) {
	se, ok := services.AsServiceError(err)
	if !ok {
		logging.Error("Unhandled error", "error", err.Error())
		common.RespondErrorDetail(w, initTime, http.StatusInternalServerError, "Internal Server Error", "", extra)
		return
	}

	code := StatusForError(err)
	if code >= http.StatusInternalServerError && se.Err != nil {
		logging.Error("Dependency failure", "code", se.Code, "error", se.Err.Error())
	}

	meta := make(map[string]any, len(se.Meta)+len(extra))
	for k, v := range se.Meta {
		meta[k] = v
	}
	for k, v := range extra {
		meta[k] = v
	}
	if len(meta) == 0 {
		meta = nil
	}

	if retry, ok := se.Meta["retry_after_seconds"].(int); ok {
		w.Header().Set("Retry-After", strconv.Itoa(retry))
	}
	common.RespondErrorDetail(w, initTime, code, se.Message, se.Code, meta)
}

func respondBadRequest(w http.ResponseWriter, initTime time.Time, message string) {
	common.RespondErrorDetail(w, initTime, http.StatusBadRequest, message, services.CodeValidation, nil)
}

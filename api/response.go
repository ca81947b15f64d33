package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/logging"
)

// ErrorResponse 是所有错误响应的结构
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Int("status", status).Str("code", code).Msg(message)
	} else {
		logging.Ctx(r.Context()).Debug().Int("status", status).Str("code", code).Msg(message)
	}
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func respondInvalid(w http.ResponseWriter, r *http.Request, message string) {
	respondError(w, r, http.StatusBadRequest, core.ErrorCodeInvalidInput, message)
}

// respondDomainError 把领域错误码映射为 HTTP 状态码
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsInvalidInput(err):
		respondError(w, r, http.StatusBadRequest, core.ErrorCodeInvalidInput, err.Error())
	case core.IsNotFound(err):
		respondError(w, r, http.StatusNotFound, core.ErrorCodeNotFound, err.Error())
	case core.IsUnavailable(err):
		respondError(w, r, http.StatusServiceUnavailable, core.ErrorCodeUnavailable, err.Error())
	default:
		respondError(w, r, http.StatusInternalServerError, core.ErrorCodeInternalError, err.Error())
	}
}

package api

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/placerec/engine"
)

const maxBodyBytes = 1 << 20

// Handler 持有推荐引擎，处理所有 HTTP 请求
type Handler struct {
	engine *engine.Engine
}

func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// recommendRequest 使用指针字段，缺失的 place_id 返回 400 而不是默认为 0
type recommendRequest struct {
	PlaceID *int64 `json:"place_id" validate:"required"`
	TopK    int    `json:"top_k" validate:"omitempty,min=1,max=100"`
	Filter  string `json:"filter" validate:"omitempty,max=512"`
}

// Recommend 处理 POST /recommend。
// JSON 请求体返回相似景点；表单请求（user_id）返回个性化推荐的景点名称。
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if isForm(r) {
		h.recommendForUser(w, r)
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalid(w, r, "invalid JSON body: "+err.Error())
		return
	}
	if err := validateStruct(&req); err != nil {
		respondInvalid(w, r, err.Error())
		return
	}

	recs, err := h.engine.Recommend(r.Context(), *req.PlaceID, engine.RecommendOptions{
		TopK:   req.TopK,
		Filter: req.Filter,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

func (h *Handler) recommendForUser(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.FormValue("user_id"))
	if raw == "" {
		respondInvalid(w, r, "user_id is required")
		return
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondInvalid(w, r, "user_id must be an integer")
		return
	}

	names, err := h.engine.RecommendForUser(r.Context(), userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, names)
}

func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// Clusters 处理 GET /clusters
func (h *Handler) Clusters(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Clusters())
}

// Places 处理 GET /places
func (h *Handler) Places(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Places())
}

// Dashboard 处理 GET /dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.engine.Dashboard(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// HealthResponse 是 GET /healthz 的响应
type HealthResponse struct {
	Status  string `json:"status"`
	Places  int    `json:"places"`
	Ratings int    `json:"ratings"`
	Model   string `json:"model"`
}

// Health 处理 GET /healthz。模型不可用不影响相似推荐，状态仍为 ok。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	resp := HealthResponse{
		Status:  "ok",
		Places:  len(snap.Places),
		Ratings: snap.RatingCount,
		Model:   h.engine.Health(r.Context()),
	}
	respondJSON(w, http.StatusOK, resp)
}

package model

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/metrics"
	"github.com/rushteam/placerec/pkg/breaker"
)

// RPCModel 通过 HTTP 调用自定义打分服务，实现 core.MLService。
//
// 请求格式（JSON）：
//
//	{"features_list": [{"user_id": 12, "place_id": 7}, ...]}
//
// 响应格式（JSON）：
//
//	{"scores": [0.85, 0.72, ...]}
type RPCModel struct {
	name     string
	Endpoint string // 例如 "http://localhost:8080/predict"
	Timeout  time.Duration
	Client   *http.Client

	breaker *breaker.Breaker[[]float64]
}

var _ core.MLService = (*RPCModel)(nil)

func NewRPCModel(name, endpoint string, timeout time.Duration) *RPCModel {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &RPCModel{
		name:     name,
		Endpoint: endpoint,
		Timeout:  timeout,
		Client:   &http.Client{Timeout: timeout},
		breaker:  breaker.New[[]float64](breaker.Settings{Name: "rpc-" + name}),
	}
}

func (m *RPCModel) Name() string {
	return m.name
}

func (m *RPCModel) Predict(ctx context.Context, req *core.MLPredictRequest) (*core.MLPredictResponse, error) {
	if req == nil || len(req.Features) == 0 {
		return &core.MLPredictResponse{Predictions: []float64{}}, nil
	}
	start := time.Now()
	scores, err := m.breaker.Execute(func() ([]float64, error) {
		return m.PredictBatch(ctx, req.Features)
	})
	metrics.RecordModelRequest("rpc", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &core.MLPredictResponse{Predictions: scores, ModelVersion: req.ModelVersion}, nil
}

// PredictBatch 调用远程服务批量打分，不经过熔断器。
func (m *RPCModel) PredictBatch(ctx context.Context, featuresList []map[string]float64) ([]float64, error) {
	if m.Client == nil {
		m.Client = &http.Client{Timeout: m.Timeout}
	}
	if len(featuresList) == 0 {
		return []float64{}, nil
	}

	jsonData, err := json.Marshal(map[string]any{"features_list": featuresList})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w: %w", err, core.ErrModelUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("rpc error: status=%d, body=%s", resp.StatusCode, string(body))
		if resp.StatusCode >= http.StatusInternalServerError {
			err = fmt.Errorf("%w: %w", err, core.ErrModelUnavailable)
		}
		return nil, err
	}

	var result struct {
		Scores []float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Scores) != len(featuresList) {
		return nil, fmt.Errorf("response scores count mismatch: expected %d, got %d", len(featuresList), len(result.Scores))
	}
	return result.Scores, nil
}

// Health 用一条空特征请求探测服务是否可达
func (m *RPCModel) Health(ctx context.Context) error {
	_, err := m.PredictBatch(ctx, []map[string]float64{{core.FeatureUserID: 0, core.FeaturePlaceID: 0}})
	return err
}

func (m *RPCModel) Close(context.Context) error {
	if m.Client != nil {
		m.Client.CloseIdleConnections()
	}
	return nil
}

package service

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

// TFServingClient 是 TensorFlow Serving REST API（端口 8501）的客户端。
//
// 请求为行格式：命名特征会按 UserInput / PlaceInput 映射成模型的两个输入，
//
//	{"signature_name": "serving_default",
//	 "instances": [{"user_input": 12, "place_input": 7}, ...]}
//
// 响应中每条预测可以是数字或单元素数组，取第一个元素。
type TFServingClient struct {
	// Endpoint 服务端点，例如 "http://localhost:8501"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// ModelVersion 模型版本（可选，为空则使用最新版本）
	ModelVersion string

	// SignatureName 签名名称（默认为 "serving_default"）
	SignatureName string

	// UserInput / PlaceInput 模型输入名，默认 "user_input" / "place_input"
	UserInput  string
	PlaceInput string

	// Timeout 超时时间
	Timeout time.Duration

	// Auth 认证信息
	Auth *AuthConfig

	httpClient *http.Client
	breaker    *breaker.Breaker[*core.MLPredictResponse]
}

var _ core.MLService = (*TFServingClient)(nil)

// NewTFServingClient 创建一个新的 TF Serving 客户端。
func NewTFServingClient(endpoint, modelName string, opts ...TFServingOption) *TFServingClient {
	client := &TFServingClient{
		Endpoint:      endpoint,
		ModelName:     modelName,
		SignatureName: "serving_default",
		UserInput:     "user_input",
		PlaceInput:    "place_input",
		Timeout:       30 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.httpClient = &http.Client{Timeout: client.Timeout}
	client.breaker = breaker.New[*core.MLPredictResponse](breaker.Settings{Name: "tf-serving-" + modelName})
	return client
}

// TFServingOption TF Serving 客户端配置选项
type TFServingOption func(*TFServingClient)

// WithTFServingVersion 设置模型版本
func WithTFServingVersion(version string) TFServingOption {
	return func(c *TFServingClient) {
		c.ModelVersion = version
	}
}

// WithTFServingSignature 设置签名名称
func WithTFServingSignature(signatureName string) TFServingOption {
	return func(c *TFServingClient) {
		c.SignatureName = signatureName
	}
}

// WithTFServingTimeout 设置超时时间
func WithTFServingTimeout(timeout time.Duration) TFServingOption {
	return func(c *TFServingClient) {
		c.Timeout = timeout
	}
}

// WithTFServingInputs 设置模型输入名
func WithTFServingInputs(userInput, placeInput string) TFServingOption {
	return func(c *TFServingClient) {
		if userInput != "" {
			c.UserInput = userInput
		}
		if placeInput != "" {
			c.PlaceInput = placeInput
		}
	}
}

// WithTFServingAuth 设置认证信息
func WithTFServingAuth(auth *AuthConfig) TFServingOption {
	return func(c *TFServingClient) {
		c.Auth = auth
	}
}

// Predict 实现 core.MLService 接口
func (c *TFServingClient) Predict(ctx context.Context, req *core.MLPredictRequest) (*core.MLPredictResponse, error) {
	if req == nil || (len(req.Instances) == 0 && len(req.Features) == 0) {
		return nil, fmt.Errorf("instances or features are required: %w", core.ErrInvalidInput)
	}
	start := time.Now()
	resp, err := c.breaker.Execute(func() (*core.MLPredictResponse, error) {
		return c.predictREST(ctx, req)
	})
	metrics.RecordModelRequest("tf_serving", time.Since(start), err)
	return resp, err
}

func (c *TFServingClient) modelURL() string {
	if c.ModelVersion != "" {
		return fmt.Sprintf("%s/v1/models/%s/versions/%s", c.Endpoint, c.ModelName, c.ModelVersion)
	}
	return fmt.Sprintf("%s/v1/models/%s", c.Endpoint, c.ModelName)
}

func (c *TFServingClient) instances(req *core.MLPredictRequest) any {
	if len(req.Instances) > 0 {
		return req.Instances
	}
	rows := make([]map[string]any, len(req.Features))
	for i, f := range req.Features {
		rows[i] = map[string]any{
			c.UserInput:  int64(f[core.FeatureUserID]),
			c.PlaceInput: int64(f[core.FeaturePlaceID]),
		}
	}
	return rows
}

func (c *TFServingClient) predictREST(ctx context.Context, req *core.MLPredictRequest) (*core.MLPredictResponse, error) {
	body := map[string]any{"instances": c.instances(req)}
	if c.SignatureName != "" {
		body["signature_name"] = c.SignatureName
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL()+":predict", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.addAuth(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w: %w", err, core.ErrModelUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("tf serving error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
		if resp.StatusCode >= http.StatusInternalServerError {
			// 服务端故障或过载，对调用方等同于模型不可用
			err = fmt.Errorf("%w: %w", err, core.ErrModelUnavailable)
		}
		return nil, err
	}

	var result struct {
		Predictions []any `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	predictions := make([]float64, 0, len(result.Predictions))
	for _, pred := range result.Predictions {
		switch v := pred.(type) {
		case float64:
			predictions = append(predictions, v)
		case []any:
			if len(v) == 0 {
				return nil, fmt.Errorf("empty prediction row")
			}
			fv, ok := v[0].(float64)
			if !ok {
				return nil, fmt.Errorf("unexpected prediction type: %T", v[0])
			}
			predictions = append(predictions, fv)
		default:
			return nil, fmt.Errorf("unexpected prediction type: %T", pred)
		}
	}
	if len(predictions) != req.Size() {
		return nil, fmt.Errorf("predictions count mismatch: expected %d, got %d", req.Size(), len(predictions))
	}

	return &core.MLPredictResponse{
		Predictions:  predictions,
		ModelVersion: c.ModelVersion,
	}, nil
}

// addAuth 添加认证信息到 HTTP 请求
func (c *TFServingClient) addAuth(req *http.Request) {
	if c.Auth == nil {
		return
	}
	switch c.Auth.Type {
	case "basic":
		req.SetBasicAuth(c.Auth.Username, c.Auth.Password)
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+c.Auth.Token)
	case "api_key":
		req.Header.Set("X-API-Key", c.Auth.APIKey)
	}
}

// Health 查询模型状态
func (c *TFServingClient) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelURL(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.addAuth(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("health check failed: %w: %w", err, core.ErrModelUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("health check failed: status=%d, body=%s: %w", resp.StatusCode, string(bodyBytes), core.ErrModelUnavailable)
	}
	return nil
}

// Close 释放空闲连接
func (c *TFServingClient) Close(context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

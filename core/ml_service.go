package core

import "context"

// MLService 是评分模型的领域接口：给定一批 (用户, 景点) 特征，返回同样长度的分数。
//
// 神经网络推荐只依赖这个接口，模型本身的结构与训练不在本服务范围内。
//
// 实现：
//   - service.TFServingClient（TensorFlow Serving REST）
//   - model.RPCModel（自定义 HTTP 打分服务）
//   - model.FuncModel（进程内函数，测试与嵌入使用）
type MLService interface {
	// Predict 批量预测
	Predict(ctx context.Context, req *MLPredictRequest) (*MLPredictResponse, error)

	// Health 健康检查
	Health(ctx context.Context) error

	// Close 关闭连接
	Close(ctx context.Context) error
}

// MLPredictRequest 预测请求
type MLPredictRequest struct {
	// Instances 特征向量列表，格式：[[f1, f2, ...], ...]
	Instances [][]float64

	// Features 命名特征列表（与 Instances 二选一）
	// 格式：[{"user_id": 12, "place_id": 7}, ...]
	Features []map[string]float64

	// ModelName 模型名称（可选，如果服务支持多模型）
	ModelName string

	// ModelVersion 模型版本（可选）
	ModelVersion string

	// Params 额外参数（可选）
	Params map[string]any
}

// Size 返回请求中的实例数量
func (r *MLPredictRequest) Size() int {
	if r == nil {
		return 0
	}
	if len(r.Instances) > 0 {
		return len(r.Instances)
	}
	return len(r.Features)
}

// MLPredictResponse 预测响应
type MLPredictResponse struct {
	// Predictions 预测结果列表（与请求实例一一对应）
	Predictions []float64

	// ModelVersion 模型版本（如果服务返回）
	ModelVersion string
}

// 特征名：神经网络推荐的输入为 (用户, 景点) 对
const (
	FeatureUserID  = "user_id"
	FeaturePlaceID = "place_id"
)

package service

// ServiceType 服务类型
type ServiceType string

const (
	ServiceTypeTFServing ServiceType = "tf_serving" // TensorFlow Serving REST
	ServiceTypeRPC       ServiceType = "rpc"        // 自定义 HTTP 打分服务
)

// ServiceConfig 服务配置
type ServiceConfig struct {
	// Type 服务类型
	Type ServiceType

	// Endpoint 服务端点
	// TF Serving: "http://localhost:8501"
	// RPC: "http://localhost:8080/predict"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// ModelVersion 模型版本
	ModelVersion string

	// UserInput / PlaceInput 是 TF Serving 模型的两个输入张量名
	UserInput  string
	PlaceInput string

	// Timeout 超时时间（秒）
	Timeout int

	// Auth 认证信息（可选）
	Auth *AuthConfig
}

// AuthConfig 认证配置
type AuthConfig struct {
	Type     string // "basic", "bearer", "api_key"
	Username string
	Password string
	Token    string
	APIKey   string
}

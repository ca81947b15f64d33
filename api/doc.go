// Package api 提供景点推荐的 HTTP 接口。
//
// 路由基于 chi，中间件依次为请求 ID、RealIP、Recoverer、CORS、限流与 Prometheus 指标：
//
//	POST /recommend   JSON {"place_id": 1, "top_k": 5, "filter": "item.price <= 20000"}
//	                  或表单 user_id=<int>（个性化推荐）
//	GET  /clusters
//	GET  /places
//	GET  /dashboard
//	GET  /healthz
//	GET  /metrics
//
// 错误响应统一为 {"error": message, "code": CODE}。
package api

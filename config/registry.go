package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pipeline"
)

// 配置驱动的 pipeline 依赖 config/builders 的 init 注册，入口处需要
// import _ "github.com/rushteam/placerec/config/builders"。

// NodeBuilder 同 pipeline.NodeBuilder
type NodeBuilder = pipeline.NodeBuilder

// 可配置的只有中间段；召回与补全由引擎按快照插入。
var configurableStages = []string{"filter.", "rank.", "rerank."}

var (
	builders   = make(map[string]NodeBuilder)
	buildersMu sync.RWMutex
)

// Register 注册一种 Node 类型。类型名必须以 filter. / rank. / rerank. 开头，否则 panic。
func Register(typeName string, builder NodeBuilder) {
	if builder == nil || !configurable(typeName) {
		panic(fmt.Sprintf("config: cannot register node type %q", typeName))
	}
	buildersMu.Lock()
	defer buildersMu.Unlock()
	builders[typeName] = builder
}

func configurable(typeName string) bool {
	return slices.ContainsFunc(configurableStages, func(prefix string) bool {
		return strings.HasPrefix(typeName, prefix) && len(typeName) > len(prefix)
	})
}

// SupportedTypes 返回已注册的类型（升序）
func SupportedTypes() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	return slices.Sorted(maps.Keys(builders))
}

// DefaultFactory 用当前注册表构建 NodeFactory；调用方可以在返回值上覆盖个别类型。
func DefaultFactory() *pipeline.NodeFactory {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, b := range builders {
		f.Register(typeName, b)
	}
	return f
}

// ValidatePipelineConfig 检查每个 node 都声明了已注册的类型，错误包装 core.ErrInvalidInput。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	for i, nc := range cfg.Pipeline.Nodes {
		if nc.Type == "" {
			return fmt.Errorf("pipeline node %d: missing type: %w", i, core.ErrInvalidInput)
		}
		if _, ok := builders[nc.Type]; !ok {
			return fmt.Errorf("pipeline node %d: unsupported type %q (supported: %s): %w",
				i, nc.Type, strings.Join(slices.Sorted(maps.Keys(builders)), ", "), core.ErrInvalidInput)
		}
	}
	return nil
}

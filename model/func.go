// Package model 提供 core.MLService 的进程内实现与自定义 HTTP 打分服务客户端。
package model

import (
	"context"
	"fmt"

	"github.com/rushteam/placerec/core"
)

// ScoreFunc 对单条命名特征打分
type ScoreFunc func(features map[string]float64) (float64, error)

// FuncModel 用一个函数实现 core.MLService，适合测试或嵌入轻量模型。
type FuncModel struct {
	Name string
	Fn   ScoreFunc
}

var _ core.MLService = (*FuncModel)(nil)

func NewFuncModel(name string, fn ScoreFunc) *FuncModel {
	return &FuncModel{Name: name, Fn: fn}
}

func (m *FuncModel) Predict(ctx context.Context, req *core.MLPredictRequest) (*core.MLPredictResponse, error) {
	if m.Fn == nil {
		return nil, core.ErrModelUnavailable
	}
	if req == nil || len(req.Features) == 0 {
		return &core.MLPredictResponse{Predictions: []float64{}}, nil
	}
	out := make([]float64, len(req.Features))
	for i, f := range req.Features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := m.Fn(f)
		if err != nil {
			return nil, fmt.Errorf("%s: instance %d: %w", m.Name, i, err)
		}
		out[i] = s
	}
	return &core.MLPredictResponse{Predictions: out, ModelVersion: m.Name}, nil
}

func (m *FuncModel) Health(context.Context) error {
	if m.Fn == nil {
		return core.ErrModelUnavailable
	}
	return nil
}

func (m *FuncModel) Close(context.Context) error { return nil }

// Package placerec 是一个旅游景点推荐服务。
//
// 设计要点：
// - 基于物品的协同过滤：评分矩阵按行 L2 归一化后计算余弦相似度，返回与目标景点最相似的景点
// - 价格聚类：票价标准化后做 k-means，簇编号按平均票价升序
// - 个性化推荐（可选）：调用外部评分模型为用户的未评分景点打分
// - Pipeline-first: 召回、补全、过滤、排序、重排都是可插拔的 Node
package placerec

import "github.com/rushteam/placerec/pipeline"

// 轻量 facade：便于直接 import "placerec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

package utils

import "strconv"

// Label 是推荐链路中可解释、可追踪的标记，例如召回来源、打分模型、过滤原因。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rank / rerank / postprocess
}

// NumberLabel 用数值构造 Label，保留 4 位小数。
func NumberLabel(v float64, source string) Label {
	return Label{Value: strconv.FormatFloat(v, 'f', 4, 64), Source: source}
}

// MergeLabel 合并同名 Label：Value 以 '|' 累积，Source 以 ',' 累积。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

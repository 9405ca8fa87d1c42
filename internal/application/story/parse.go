// Package story 实现分阶段的小说生成流水线
package story

import (
	"encoding/json"
	"strings"

	"flow-writer-api/internal/domain/entity"
	wfnode "flow-writer-api/internal/workflow/node"
	"flow-writer-api/pkg/errors"
)

// DefaultWritingStyle 模型未给出写作风格时的默认值
const DefaultWritingStyle = "轻快流畅、画面感强的现代网文风格"

// InitialStructure 首轮生成的故事骨架
type InitialStructure struct {
	Characters   []entity.Character
	Synopsis     string
	WritingStyle string
}

// OutlineDraft 单章概述草稿
type OutlineDraft struct {
	Title   string `json:"title"`
	Outline string `json:"outline"`
}

// 容错中间结构：字段形状不对时按缺失处理，而不是整体失败
type rawInitialStructure struct {
	Characters   json.RawMessage `json:"characters"`
	Synopsis     json.RawMessage `json:"synopsis"`
	WritingStyle json.RawMessage `json:"writing_style"`
}

type rawCharacter struct {
	Name        json.RawMessage `json:"name"`
	Role        json.RawMessage `json:"role"`
	Description json.RawMessage `json:"description"`
}

type rawOutlineList struct {
	Outlines json.RawMessage `json:"outlines"`
}

type rawOutline struct {
	Title   json.RawMessage `json:"title"`
	Outline json.RawMessage `json:"outline"`
}

// ParseInitialStructure 从模型输出解析人物、梗概与写作风格。
// 输出整体不是 JSON 时报 CodeMalformedOutput；单个字段形状不对时按缺失处理。
func ParseInitialStructure(text string) (*InitialStructure, error) {
	jsonText := wfnode.ExtractJSONObject(text)
	if strings.TrimSpace(jsonText) == "" {
		return nil, errors.ErrMalformedOutput.WithDetail("empty model output")
	}

	var raw rawInitialStructure
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedOutput, "model output is not a JSON object")
	}

	result := &InitialStructure{
		Synopsis:     stringFromRaw(raw.Synopsis),
		WritingStyle: stringFromRaw(raw.WritingStyle),
	}
	if result.WritingStyle == "" {
		result.WritingStyle = DefaultWritingStyle
	}

	var rawChars []rawCharacter
	if len(raw.Characters) > 0 && json.Unmarshal(raw.Characters, &rawChars) == nil {
		result.Characters = make([]entity.Character, 0, len(rawChars))
		for _, rc := range rawChars {
			result.Characters = append(result.Characters, entity.NewCharacter(
				stringFromRaw(rc.Name),
				stringFromRaw(rc.Role),
				stringFromRaw(rc.Description),
			))
		}
	} else {
		result.Characters = []entity.Character{}
	}

	return result, nil
}

// ParseChapterOutlines 从模型输出解析分章概述列表
func ParseChapterOutlines(text string) ([]OutlineDraft, error) {
	jsonText := wfnode.ExtractJSONObject(text)
	if strings.TrimSpace(jsonText) == "" {
		return nil, errors.ErrMalformedOutput.WithDetail("empty model output")
	}

	var raw rawOutlineList
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedOutput, "model output is not a JSON object")
	}

	var rawOutlines []rawOutline
	if len(raw.Outlines) == 0 || json.Unmarshal(raw.Outlines, &rawOutlines) != nil {
		// outlines 字段缺失或形状不对，视为空列表
		return []OutlineDraft{}, nil
	}

	drafts := make([]OutlineDraft, 0, len(rawOutlines))
	for _, ro := range rawOutlines {
		drafts = append(drafts, OutlineDraft{
			Title:   stringFromRaw(ro.Title),
			Outline: stringFromRaw(ro.Outline),
		})
	}
	return drafts, nil
}

// stringFromRaw 取字符串字段，非字符串一律按空处理
func stringFromRaw(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flow-writer-api/pkg/errors"
)

func TestParseInitialStructure(t *testing.T) {
	text := "```json\n" + `{
		"characters": [
			{"name": "陈默", "role": "主角", "description": "书店老板"},
			{"name": "", "role": "", "description": ""}
		],
		"synopsis": "末日后的书店故事",
		"writing_style": "冷峻克制"
	}` + "\n```"

	s, err := ParseInitialStructure(text)
	require.NoError(t, err)

	assert.Equal(t, "末日后的书店故事", s.Synopsis)
	assert.Equal(t, "冷峻克制", s.WritingStyle)
	require.Len(t, s.Characters, 2)
	assert.Equal(t, "陈默", s.Characters[0].Name)
	assert.NotEmpty(t, s.Characters[0].ID)
	// 空字段回落默认值
	assert.Equal(t, "未命名", s.Characters[1].Name)
	assert.Equal(t, "主角", s.Characters[1].Role)
}

func TestParseInitialStructureDefaultsWritingStyle(t *testing.T) {
	s, err := ParseInitialStructure(`{"characters": [], "synopsis": "梗概"}`)
	require.NoError(t, err)
	assert.Equal(t, DefaultWritingStyle, s.WritingStyle)
}

func TestParseInitialStructureWrongShapedFieldsTreatedAsAbsent(t *testing.T) {
	s, err := ParseInitialStructure(`{"characters": "不是数组", "synopsis": 42, "writing_style": ["x"]}`)
	require.NoError(t, err)

	assert.Empty(t, s.Characters)
	assert.Empty(t, s.Synopsis)
	assert.Equal(t, DefaultWritingStyle, s.WritingStyle)
}

func TestParseInitialStructureMalformed(t *testing.T) {
	for _, text := range []string{"", "   ", "抱歉，我无法完成这个任务。", "{broken"} {
		_, err := ParseInitialStructure(text)
		assert.True(t, errors.HasCode(err, errors.CodeMalformedOutput), "input=%q got=%v", text, err)
	}
}

func TestParseChapterOutlines(t *testing.T) {
	text := `以下是章节概述：
	{"outlines": [
		{"title": "第一章", "outline": "开端"},
		{"title": "第二章", "outline": "发展"}
	]}`

	drafts, err := ParseChapterOutlines(text)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "第一章", drafts[0].Title)
	assert.Equal(t, "发展", drafts[1].Outline)
}

func TestParseChapterOutlinesMissingFieldIsEmpty(t *testing.T) {
	drafts, err := ParseChapterOutlines(`{"something_else": true}`)
	require.NoError(t, err)
	assert.Empty(t, drafts)

	drafts, err = ParseChapterOutlines(`{"outlines": "不是数组"}`)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestParseChapterOutlinesMalformed(t *testing.T) {
	_, err := ParseChapterOutlines("完全不是JSON")
	assert.True(t, errors.HasCode(err, errors.CodeMalformedOutput))
}

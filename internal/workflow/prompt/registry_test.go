package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInitialStructure(t *testing.T) {
	r := NewRegistry()

	system, user, err := r.Format(context.Background(), PromptInitialStructureV1, map[string]any{
		"user_idea": "快递小哥逆袭成集团CEO",
	})
	require.NoError(t, err)

	assert.Contains(t, system, "output JSON")
	assert.Contains(t, user, "快递小哥逆袭成集团CEO")
	assert.Contains(t, user, `"characters"`)
	assert.Contains(t, user, `"writing_style"`)
	// 双大括号应渲染为字面量
	assert.NotContains(t, user, "{{")
}

func TestFormatChapterOutlines(t *testing.T) {
	r := NewRegistry()

	_, user, err := r.Format(context.Background(), PromptChapterOutlinesV1, map[string]any{
		"synopsis":     "一个普通人的逆袭故事",
		"num_chapters": 5,
	})
	require.NoError(t, err)

	assert.Contains(t, user, "一个普通人的逆袭故事")
	assert.Contains(t, user, "前 5 章")
	assert.Contains(t, user, `"outlines"`)
}

func TestFormatChapterContent(t *testing.T) {
	r := NewRegistry()

	system, user, err := r.Format(context.Background(), PromptChapterContentV1, map[string]any{
		"synopsis":        "梗概",
		"characters":      "- 陈默 (主角): 书店老板",
		"chapter_outline": "第一章的概述",
		"writing_style":   "冷峻克制",
	})
	require.NoError(t, err)

	assert.Contains(t, system, "novelist")
	assert.Contains(t, user, "陈默")
	assert.Contains(t, user, "第一章的概述")
	assert.Contains(t, user, "冷峻克制")
}

func TestUnknownPromptID(t *testing.T) {
	r := NewRegistry()
	_, err := r.ChatTemplate(PromptID("nope"))
	assert.Error(t, err)
}

func TestChatTemplateCached(t *testing.T) {
	r := NewRegistry()
	tpl1, err := r.ChatTemplate(PromptChapterContentV1)
	require.NoError(t, err)
	tpl2, err := r.ChatTemplate(PromptChapterContentV1)
	require.NoError(t, err)
	assert.Same(t, tpl1, tpl2)
}

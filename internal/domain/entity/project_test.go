package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCharacterDefaults(t *testing.T) {
	c := NewCharacter("", "", "")

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "未命名", c.Name)
	assert.Equal(t, "主角", c.Role)
	assert.Equal(t, "待补充", c.Description)

	full := NewCharacter("林远", "反派", "野心勃勃的商人")
	assert.Equal(t, "林远", full.Name)
	assert.Equal(t, "反派", full.Role)
}

func TestFindChapter(t *testing.T) {
	p := NewProject("一个程序员穿越到修仙世界")
	p.Chapters = []Chapter{
		NewOutlineChapter(1, "初入山门", "主角拜师"),
		NewOutlineChapter(2, "筑基", "第一次突破"),
	}

	ch := p.FindChapter(2)
	require.NotNil(t, ch)
	assert.Equal(t, "筑基", ch.Title)

	// 返回的是指针，修改应落回项目
	ch.SetContent("正文内容")
	assert.Equal(t, ChapterStatusCompleted, p.Chapters[1].Status)

	assert.Nil(t, p.FindChapter(99))
}

func TestSetContentOverwritesAndStaysCompleted(t *testing.T) {
	ch := NewOutlineChapter(1, "开端", "大纲")
	assert.Equal(t, ChapterStatusOutline, ch.Status)
	assert.False(t, ch.HasContent())

	ch.SetContent("第一版")
	assert.True(t, ch.HasContent())

	ch.SetContent("第二版")
	assert.Equal(t, "第二版", ch.Content)
	assert.Equal(t, ChapterStatusCompleted, ch.Status)
}

func TestProjectJSONLayout(t *testing.T) {
	p := NewProject("想法")
	p.Synopsis = "梗概"
	p.WritingStyle = "风格"

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))

	for _, key := range []string{"id", "initial_idea", "writing_style", "synopsis", "characters", "chapters", "created_at", "updated_at"} {
		assert.Contains(t, doc, key)
	}

	// 空集合序列化为 []，不是 null
	assert.Equal(t, "[]", string(doc["characters"]))
	assert.Equal(t, "[]", string(doc["chapters"]))
}

func TestTouchAdvancesUpdatedAt(t *testing.T) {
	p := NewProject("想法")
	before := p.UpdatedAt
	p.Touch()
	assert.False(t, p.UpdatedAt.Before(before))

	s := p.Summary()
	assert.Equal(t, p.ID, s.ID)
	assert.Equal(t, "想法", s.InitialIdea)
}

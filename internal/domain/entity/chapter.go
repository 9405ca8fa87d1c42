// Package entity 定义领域实体
package entity

// ChapterStatus 章节状态
type ChapterStatus string

const (
	// ChapterStatusOutline 仅有大纲，尚未生成正文
	ChapterStatusOutline ChapterStatus = "outline"
	// ChapterStatusCompleted 正文已生成
	ChapterStatusCompleted ChapterStatus = "completed"
)

// Chapter 章节实体，ID 为项目内从 1 开始的序号
type Chapter struct {
	ID      int           `json:"id"`
	Title   string        `json:"title"`
	Outline string        `json:"outline"`
	Content string        `json:"content"`
	Status  ChapterStatus `json:"status"`
}

// NewOutlineChapter 创建仅含大纲的章节
func NewOutlineChapter(id int, title, outline string) Chapter {
	return Chapter{
		ID:      id,
		Title:   title,
		Outline: outline,
		Status:  ChapterStatusOutline,
	}
}

// SetContent 写入正文并标记完成。重复生成会覆盖正文，状态保持 completed
func (c *Chapter) SetContent(content string) {
	c.Content = content
	c.Status = ChapterStatusCompleted
}

// HasContent 检查章节是否已有正文
func (c *Chapter) HasContent() bool {
	return c.Status == ChapterStatusCompleted && c.Content != ""
}

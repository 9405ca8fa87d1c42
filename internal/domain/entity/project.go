// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// 角色字段缺失时的兜底值
const (
	DefaultCharacterName = "未命名"
	DefaultCharacterRole = "主角"
	DefaultCharacterDesc = "待补充"
)

// Character 小说角色
type Character struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

// NewCharacter 创建角色，空字段回落到默认值
func NewCharacter(name, role, description string) Character {
	if name == "" {
		name = DefaultCharacterName
	}
	if role == "" {
		role = DefaultCharacterRole
	}
	if description == "" {
		description = DefaultCharacterDesc
	}
	return Character{
		ID:          uuid.NewString(),
		Name:        name,
		Role:        role,
		Description: description,
	}
}

// Project 小说项目实体，整体作为单个 JSON 文档持久化
type Project struct {
	ID           string      `json:"id"`
	InitialIdea  string      `json:"initial_idea"`
	WritingStyle string      `json:"writing_style"`
	Synopsis     string      `json:"synopsis"`
	Characters   []Character `json:"characters"`
	Chapters     []Chapter   `json:"chapters"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewProject 创建新项目
func NewProject(initialIdea string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:          uuid.NewString(),
		InitialIdea: initialIdea,
		Characters:  []Character{},
		Chapters:    []Chapter{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// FindChapter 按序号查找章节，返回可修改的指针
func (p *Project) FindChapter(chapterID int) *Chapter {
	for i := range p.Chapters {
		if p.Chapters[i].ID == chapterID {
			return &p.Chapters[i]
		}
	}
	return nil
}

// Touch 更新修改时间
func (p *Project) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// Summary 生成项目摘要
func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{
		ID:          p.ID,
		InitialIdea: p.InitialIdea,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProjectSummary 项目列表条目，由完整文档派生，不单独存储
type ProjectSummary struct {
	ID          string    `json:"id"`
	InitialIdea string    `json:"initial_idea"`
	UpdatedAt   time.Time `json:"updated_at"`
}

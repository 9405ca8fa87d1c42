package dto

import (
	"time"

	"flow-writer-api/internal/domain/entity"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Idea        string `json:"idea" binding:"required"`
	NumChapters int    `json:"num_chapters"`
}

// ReplaceProjectRequest 整文档替换请求，载荷即完整项目文档
type ReplaceProjectRequest struct {
	ID           string             `json:"id"`
	InitialIdea  string             `json:"initial_idea"`
	WritingStyle string             `json:"writing_style"`
	Synopsis     string             `json:"synopsis"`
	Characters   []CharacterPayload `json:"characters"`
	Chapters     []ChapterPayload   `json:"chapters"`
}

// CharacterPayload 角色载荷
type CharacterPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

// ChapterPayload 章节载荷
type ChapterPayload struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Outline string `json:"outline"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

// ToEntity 转换为领域实体。创建/更新时间由应用层补齐
func (r *ReplaceProjectRequest) ToEntity() *entity.Project {
	characters := make([]entity.Character, 0, len(r.Characters))
	for _, c := range r.Characters {
		characters = append(characters, entity.Character{
			ID:          c.ID,
			Name:        c.Name,
			Role:        c.Role,
			Description: c.Description,
		})
	}
	chapters := make([]entity.Chapter, 0, len(r.Chapters))
	for _, ch := range r.Chapters {
		chapters = append(chapters, entity.Chapter{
			ID:      ch.ID,
			Title:   ch.Title,
			Outline: ch.Outline,
			Content: ch.Content,
			Status:  entity.ChapterStatus(ch.Status),
		})
	}
	return &entity.Project{
		ID:           r.ID,
		InitialIdea:  r.InitialIdea,
		WritingStyle: r.WritingStyle,
		Synopsis:     r.Synopsis,
		Characters:   characters,
		Chapters:     chapters,
	}
}

// ProjectResponse 项目完整文档响应
type ProjectResponse struct {
	ID           string             `json:"id"`
	InitialIdea  string             `json:"initial_idea"`
	WritingStyle string             `json:"writing_style"`
	Synopsis     string             `json:"synopsis"`
	Characters   []CharacterPayload `json:"characters"`
	Chapters     []ChapterPayload   `json:"chapters"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// FromProject 从领域实体构建响应
func FromProject(p *entity.Project) ProjectResponse {
	characters := make([]CharacterPayload, 0, len(p.Characters))
	for _, c := range p.Characters {
		characters = append(characters, CharacterPayload{
			ID:          c.ID,
			Name:        c.Name,
			Role:        c.Role,
			Description: c.Description,
		})
	}
	chapters := make([]ChapterPayload, 0, len(p.Chapters))
	for _, ch := range p.Chapters {
		chapters = append(chapters, ChapterPayload{
			ID:      ch.ID,
			Title:   ch.Title,
			Outline: ch.Outline,
			Content: ch.Content,
			Status:  string(ch.Status),
		})
	}
	return ProjectResponse{
		ID:           p.ID,
		InitialIdea:  p.InitialIdea,
		WritingStyle: p.WritingStyle,
		Synopsis:     p.Synopsis,
		Characters:   characters,
		Chapters:     chapters,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ProjectSummaryResponse 项目列表条目
type ProjectSummaryResponse struct {
	ID          string    `json:"id"`
	InitialIdea string    `json:"initial_idea"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromSummaries 从领域摘要构建列表响应
func FromSummaries(summaries []entity.ProjectSummary) []ProjectSummaryResponse {
	out := make([]ProjectSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, ProjectSummaryResponse{
			ID:          s.ID,
			InitialIdea: s.InitialIdea,
			UpdatedAt:   s.UpdatedAt,
		})
	}
	return out
}

package story

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"flow-writer-api/internal/config"
	"flow-writer-api/internal/domain/entity"
	"flow-writer-api/internal/domain/repository"
	"flow-writer-api/internal/workflow/port"
	"flow-writer-api/internal/workflow/prompt"
	"flow-writer-api/pkg/errors"
	"flow-writer-api/pkg/logger"
	"flow-writer-api/pkg/metrics"
)

var tracer = otel.Tracer("story")

// 大纲阶段软失败时的占位文案
const (
	placeholderMissingSynopsis = "请先完善故事梗概，以便生成本章概述。"
	placeholderOutlineFailed   = "AI 生成概述失败: "
)

// StoryGenerator 分阶段生成流水线：灵感 -> 骨架 -> 分章大纲 -> 按需正文
type StoryGenerator struct {
	gateway port.CompletionGateway
	store   repository.ProjectStore
	prompts *prompt.Registry
	cfg     *config.GenerationConfig

	// 项目级互斥锁 projectID -> *sync.Mutex，串行化同一项目的读改写
	locks sync.Map
}

// NewStoryGenerator 创建生成流水线
func NewStoryGenerator(
	gateway port.CompletionGateway,
	store repository.ProjectStore,
	prompts *prompt.Registry,
	cfg *config.Config,
) *StoryGenerator {
	return &StoryGenerator{
		gateway: gateway,
		store:   store,
		prompts: prompts,
		cfg:     &cfg.Generation,
	}
}

// projectLock 获取项目级互斥锁
func (g *StoryGenerator) projectLock(projectID string) *sync.Mutex {
	value, _ := g.locks.LoadOrStore(projectID, &sync.Mutex{})
	return value.(*sync.Mutex)
}

// CreateProject 从初始灵感创建项目。
// 骨架阶段失败则整体失败，什么都不落盘；大纲阶段软失败，用占位章节兜底。
func (g *StoryGenerator) CreateProject(ctx context.Context, idea string, numChapters int) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "story.CreateProject")
	defer span.End()

	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, errors.ErrInvalidParam.WithDetail("idea is empty")
	}
	if numChapters == 0 {
		numChapters = g.cfg.DefaultChapterCount
	}
	if numChapters < 1 || numChapters > g.cfg.MaxChapterCount {
		return nil, errors.ErrInvalidParam.WithDetail(
			fmt.Sprintf("num_chapters must be within [1, %d]", g.cfg.MaxChapterCount))
	}

	// 阶段一：人物 + 梗概 + 写作风格
	structure, err := g.generateInitialStructure(ctx, idea)
	if err != nil {
		return nil, err
	}

	// 阶段二：分章大纲（软失败）
	outlines := g.GenerateChapterOutlines(ctx, structure.Synopsis, numChapters)

	project := entity.NewProject(idea)
	project.Synopsis = structure.Synopsis
	project.WritingStyle = structure.WritingStyle
	project.Characters = structure.Characters
	project.Chapters = assembleChapters(outlines)

	if err := g.store.Save(ctx, project); err != nil {
		return nil, err
	}

	// 回读持久化后的文档，保证返回的就是存储中的状态
	return g.store.Get(ctx, project.ID)
}

// generateInitialStructure 骨架阶段：一次 JSON 补全 + 容错解析
func (g *StoryGenerator) generateInitialStructure(ctx context.Context, idea string) (_ *InitialStructure, err error) {
	ctx, span := tracer.Start(ctx, "story.generateInitialStructure")
	defer span.End()
	defer g.observeStage("initial_structure", time.Now(), &err)

	system, user, err := g.prompts.Format(ctx, prompt.PromptInitialStructureV1, map[string]any{
		"user_idea": idea,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInitialGenerationFailed, "failed to build initial prompt")
	}

	result, err := g.gateway.Complete(ctx, port.CompletionRequest{
		Prompt:       user,
		SystemPrompt: system,
		Shape:        port.ShapeJSONObject,
		Temperature:  g.cfg.StructureTemperature,
	})
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeInitialGenerationFailed, "initial story generation failed")
	}

	structure, err := ParseInitialStructure(result.Text)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeInitialGenerationFailed, "initial story generation failed")
	}
	return structure, nil
}

// GenerateChapterOutlines 大纲阶段。永不返回错误：
// 梗概为空直接给 n 条占位概述且不调用模型，模型失败给 n 条带失败原因的占位概述
func (g *StoryGenerator) GenerateChapterOutlines(ctx context.Context, synopsis string, numChapters int) []OutlineDraft {
	ctx, span := tracer.Start(ctx, "story.GenerateChapterOutlines",
		trace.WithAttributes(attribute.Int("story.num_chapters", numChapters)))
	defer span.End()

	if strings.TrimSpace(synopsis) == "" {
		return placeholderOutlines(numChapters, placeholderMissingSynopsis)
	}

	start := time.Now()
	drafts, err := g.generateOutlines(ctx, synopsis, numChapters)
	g.observeStage("chapter_outlines", start, &err)

	if err != nil {
		span.RecordError(err)
		logger.Warn(ctx, "chapter outline generation failed, using placeholders",
			"num_chapters", numChapters,
			"error", err.Error(),
		)
		return placeholderOutlines(numChapters, placeholderOutlineFailed+err.Error())
	}
	return drafts
}

// generateOutlines 调模型并解析分章概述
func (g *StoryGenerator) generateOutlines(ctx context.Context, synopsis string, numChapters int) ([]OutlineDraft, error) {
	system, user, err := g.prompts.Format(ctx, prompt.PromptChapterOutlinesV1, map[string]any{
		"synopsis":     synopsis,
		"num_chapters": numChapters,
	})
	if err != nil {
		return nil, err
	}

	result, err := g.gateway.Complete(ctx, port.CompletionRequest{
		Prompt:       user,
		SystemPrompt: system,
		Shape:        port.ShapeJSONObject,
		Temperature:  g.cfg.StructureTemperature,
	})
	if err != nil {
		return nil, err
	}
	return ParseChapterOutlines(result.Text)
}

// GenerateChapterContent 按需生成指定章节的正文。
// 失败时存储保持原样；同一项目的生成请求串行执行
func (g *StoryGenerator) GenerateChapterContent(ctx context.Context, projectID string, chapterID int) (_ *entity.Project, err error) {
	ctx, span := tracer.Start(ctx, "story.GenerateChapterContent",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.Int("chapter.id", chapterID),
		))
	defer span.End()
	defer g.observeStage("chapter_content", time.Now(), &err)

	ctx = logger.WithContext(ctx, logger.ProjectIDKey, projectID)
	ctx = logger.WithContext(ctx, logger.ChapterIDKey, chapterID)

	lock := g.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	project, err := g.store.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	chapter := project.FindChapter(chapterID)
	if chapter == nil {
		return nil, errors.ErrChapterNotFound.WithDetail(fmt.Sprintf("chapter %d", chapterID))
	}

	writingStyle := project.WritingStyle
	if writingStyle == "" {
		writingStyle = DefaultWritingStyle
	}

	system, user, err := g.prompts.Format(ctx, prompt.PromptChapterContentV1, map[string]any{
		"synopsis":        project.Synopsis,
		"characters":      formatCharacters(project.Characters),
		"chapter_outline": chapter.Outline,
		"writing_style":   writingStyle,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeChapterGenerationFailed, "failed to build chapter prompt")
	}

	result, err := g.gateway.Complete(ctx, port.CompletionRequest{
		Prompt:       user,
		SystemPrompt: system,
		Shape:        port.ShapeText,
		Temperature:  g.cfg.ContentTemperature,
		MaxTokens:    g.cfg.MaxContentTokens,
	})
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeChapterGenerationFailed, "chapter content generation failed")
	}

	content := strings.TrimSpace(result.Text)
	chapter.SetContent(content)
	project.Touch()
	metrics.ChapterContentLength.Observe(float64(len([]rune(content))))

	if err := g.store.Save(ctx, project); err != nil {
		return nil, err
	}

	logger.Info(ctx, "chapter content generated",
		"content_chars", len([]rune(content)),
	)
	return project, nil
}

// ReplaceProject 整文档替换。与章节生成共用项目锁，避免交错写入
func (g *StoryGenerator) ReplaceProject(ctx context.Context, project *entity.Project) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "story.ReplaceProject",
		trace.WithAttributes(attribute.String("project.id", project.ID)))
	defer span.End()

	lock := g.projectLock(project.ID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := g.store.Get(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	// 创建时间沿用已有文档，替换只影响内容与更新时间
	project.CreatedAt = existing.CreatedAt
	project.Touch()

	if err := g.store.Save(ctx, project); err != nil {
		return nil, err
	}
	return g.store.Get(ctx, project.ID)
}

// assembleChapters 把概述草稿装配成章节列表；为空时合成一条占位章节
func assembleChapters(outlines []OutlineDraft) []entity.Chapter {
	if len(outlines) == 0 {
		return []entity.Chapter{
			entity.NewOutlineChapter(1, "第 1 章", placeholderMissingSynopsis),
		}
	}

	chapters := make([]entity.Chapter, 0, len(outlines))
	for i, draft := range outlines {
		title := strings.TrimSpace(draft.Title)
		if title == "" {
			title = fmt.Sprintf("第 %d 章", i+1)
		}
		chapters = append(chapters, entity.NewOutlineChapter(i+1, title, draft.Outline))
	}
	return chapters
}

// placeholderOutlines 生成 n 条相同文案的占位概述
func placeholderOutlines(n int, outline string) []OutlineDraft {
	drafts := make([]OutlineDraft, 0, n)
	for i := 0; i < n; i++ {
		drafts = append(drafts, OutlineDraft{
			Title:   fmt.Sprintf("第 %d 章", i+1),
			Outline: outline,
		})
	}
	return drafts
}

// formatCharacters 人物列表转为提示词中的可读文本
func formatCharacters(characters []entity.Character) string {
	if len(characters) == 0 {
		return "（暂无人物设定）"
	}
	lines := make([]string, 0, len(characters))
	for _, c := range characters {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", c.Name, c.Role, c.Description))
	}
	return strings.Join(lines, "\n")
}

// observeStage 记录生成阶段指标
func (g *StoryGenerator) observeStage(stage string, start time.Time, err *error) {
	metrics.StoryGenerationDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil && *err != nil {
		status = "error"
	}
	metrics.StoryGenerationTotal.WithLabelValues(stage, status).Inc()
}

package prompt

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	// PromptInitialStructureV1 灵感 -> 人物/梗概/写作风格
	PromptInitialStructureV1 PromptID = "initial_structure_v1"
	// PromptChapterOutlinesV1 梗概 -> 分章概述
	PromptChapterOutlinesV1 PromptID = "chapter_outlines_v1"
	// PromptChapterContentV1 章节概述 -> 正文
	PromptChapterContentV1 PromptID = "chapter_content_v1"
)

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

// Format 渲染模板并拆出 system/user 两段文本
func (r *Registry) Format(ctx context.Context, id PromptID, vars map[string]any) (system string, user string, err error) {
	tpl, err := r.ChatTemplate(id)
	if err != nil {
		return "", "", err
	}

	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", "", fmt.Errorf("failed to format prompt %s: %w", id, err)
	}

	for _, msg := range msgs {
		switch msg.Role {
		case schema.System:
			system = msg.Content
		case schema.User:
			user = msg.Content
		}
	}
	if user == "" {
		return "", "", fmt.Errorf("prompt %s produced no user message", id)
	}
	return system, user, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptInitialStructureV1:
		return "templates/initial_structure_v1.system.txt", "templates/initial_structure_v1.user.txt", nil
	case PromptChapterOutlinesV1:
		return "templates/chapter_outlines_v1.system.txt", "templates/chapter_outlines_v1.user.txt", nil
	case PromptChapterContentV1:
		return "templates/chapter_content_v1.system.txt", "templates/chapter_content_v1.user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

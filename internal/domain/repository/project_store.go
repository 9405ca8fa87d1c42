// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"flow-writer-api/internal/domain/entity"
)

// ProjectStore 项目文档存储接口，按项目 ID 整文档读写
type ProjectStore interface {
	// Save 写入完整项目文档，存在则整体覆盖
	Save(ctx context.Context, project *entity.Project) error

	// Get 按 ID 读取项目文档，不存在返回 CodeProjectNotFound
	Get(ctx context.Context, id string) (*entity.Project, error)

	// Delete 按 ID 删除项目文档，不存在返回 CodeProjectNotFound
	Delete(ctx context.Context, id string) error

	// ListSummaries 列出所有项目摘要，按更新时间倒序
	ListSummaries(ctx context.Context) ([]entity.ProjectSummary, error)

	// Ping 存储健康检查
	Ping(ctx context.Context) error
}

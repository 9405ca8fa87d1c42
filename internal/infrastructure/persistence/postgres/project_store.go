// Package postgres 提供 PostgreSQL 项目文档存储实现
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"flow-writer-api/internal/domain/entity"
	"flow-writer-api/pkg/errors"
	"flow-writer-api/pkg/metrics"
)

const driverName = "postgres"

// ProjectStore 项目文档存储，整文档存入 jsonb 列
type ProjectStore struct {
	client *Client
}

// NewProjectStore 创建项目文档存储并确保表结构就绪
func NewProjectStore(client *Client) (*ProjectStore, error) {
	store := &ProjectStore{client: client}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// ensureSchema 建表
func (s *ProjectStore) ensureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS projects (
			id         TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := s.client.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure projects table: %w", err)
	}
	return nil
}

// Save 写入完整项目文档，存在则整体覆盖
func (s *ProjectStore) Save(ctx context.Context, project *entity.Project) (err error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectStore.Save",
		trace.WithAttributes(attribute.String("project.id", project.ID)))
	defer span.End()
	defer s.observe("save", time.Now(), &err)

	doc, err := json.Marshal(project)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to marshal project")
	}

	query := `
		INSERT INTO projects (id, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.client.db.ExecContext(ctx, query, project.ID, doc, project.CreatedAt, project.UpdatedAt); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, errors.CodeStorageError, "failed to save project")
	}
	return nil
}

// Get 按 ID 读取项目文档
func (s *ProjectStore) Get(ctx context.Context, id string) (_ *entity.Project, err error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectStore.Get",
		trace.WithAttributes(attribute.String("project.id", id)))
	defer span.End()
	defer s.observe("get", time.Now(), &err)

	var doc []byte
	query := `SELECT doc FROM projects WHERE id = $1`
	if err := s.client.db.QueryRowContext(ctx, query, id).Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrProjectNotFound.WithDetail(id)
		}
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to get project")
	}

	var project entity.Project
	if err := json.Unmarshal(doc, &project); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to unmarshal project")
	}
	return &project, nil
}

// Delete 按 ID 删除项目文档
func (s *ProjectStore) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectStore.Delete",
		trace.WithAttributes(attribute.String("project.id", id)))
	defer span.End()
	defer s.observe("delete", time.Now(), &err)

	result, err := s.client.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, errors.CodeStorageError, "failed to delete project")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, errors.CodeStorageError, "failed to check delete result")
	}
	if affected == 0 {
		return errors.ErrProjectNotFound.WithDetail(id)
	}
	return nil
}

// ListSummaries 列出所有项目摘要，按更新时间倒序
func (s *ProjectStore) ListSummaries(ctx context.Context) (_ []entity.ProjectSummary, err error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectStore.ListSummaries")
	defer span.End()
	defer s.observe("list", time.Now(), &err)

	query := `
		SELECT doc->>'id', COALESCE(doc->>'initial_idea', ''), updated_at
		FROM projects
		ORDER BY updated_at DESC
	`
	rows, err := s.client.db.QueryContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to list projects")
	}
	defer rows.Close()

	summaries := make([]entity.ProjectSummary, 0)
	for rows.Next() {
		var summary entity.ProjectSummary
		if err := rows.Scan(&summary.ID, &summary.InitialIdea, &summary.UpdatedAt); err != nil {
			span.RecordError(err)
			return nil, errors.Wrap(err, errors.CodeStorageError, "failed to scan project summary")
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to iterate project summaries")
	}
	return summaries, nil
}

// Ping 存储健康检查
func (s *ProjectStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// observe 记录存储操作指标
func (s *ProjectStore) observe(op string, start time.Time, err *error) {
	metrics.StoreOperationDuration.WithLabelValues(driverName, op).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil && *err != nil {
		status = "error"
	}
	metrics.StoreOperationTotal.WithLabelValues(driverName, op, status).Inc()
}

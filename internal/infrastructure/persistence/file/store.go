// Package file 提供基于本地文件的项目文档存储实现
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"flow-writer-api/internal/config"
	"flow-writer-api/internal/domain/entity"
	"flow-writer-api/pkg/errors"
	"flow-writer-api/pkg/metrics"
)

var tracer = otel.Tracer("filestore")

const driverName = "file"

// Store 文件存储，每个项目一个 <base_dir>/<id>.json 文档
type Store struct {
	baseDir string

	// 文件级别锁 path -> *sync.RWMutex
	fileLocks sync.Map
}

// NewStore 创建文件存储，目录不存在时自动创建
func NewStore(cfg *config.FileConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", cfg.BaseDir, err)
	}
	return &Store{baseDir: cfg.BaseDir}, nil
}

// getFileLock 获取文件锁
func (s *Store) getFileLock(path string) *sync.RWMutex {
	value, _ := s.fileLocks.LoadOrStore(path, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// projectPath 项目 ID 到文件路径。ID 来自 uuid，拒绝路径分隔符以防越界
func (s *Store) projectPath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", errors.ErrInvalidParam.WithDetail("invalid project id")
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}

// Save 序列化并原子写入项目文档
func (s *Store) Save(ctx context.Context, project *entity.Project) (err error) {
	ctx, span := tracer.Start(ctx, "filestore.Save",
		trace.WithAttributes(attribute.String("project.id", project.ID)))
	defer span.End()
	defer s.observe("save", time.Now(), &err)

	path, err := s.projectPath(project.ID)
	if err != nil {
		return err
	}

	content, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to marshal project")
	}

	lock := s.getFileLock(path)
	lock.Lock()
	defer lock.Unlock()

	// 先写临时文件再重命名，避免写一半被读到
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, content, 0o644); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, errors.CodeStorageError, "failed to write temp file")
	}
	if err := os.Rename(tempPath, path); err != nil {
		span.RecordError(err)
		_ = os.Remove(tempPath)
		return errors.Wrap(err, errors.CodeStorageError, "failed to rename temp file")
	}
	return nil
}

// Get 读取项目文档
func (s *Store) Get(ctx context.Context, id string) (_ *entity.Project, err error) {
	ctx, span := tracer.Start(ctx, "filestore.Get",
		trace.WithAttributes(attribute.String("project.id", id)))
	defer span.End()
	defer s.observe("get", time.Now(), &err)

	path, err := s.projectPath(id)
	if err != nil {
		return nil, err
	}

	lock := s.getFileLock(path)
	lock.RLock()
	content, err := os.ReadFile(path)
	lock.RUnlock()

	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrProjectNotFound.WithDetail(id)
		}
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to read project file")
	}

	var project entity.Project
	if err := json.Unmarshal(content, &project); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to unmarshal project")
	}
	return &project, nil
}

// Delete 删除项目文档
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "filestore.Delete",
		trace.WithAttributes(attribute.String("project.id", id)))
	defer span.End()
	defer s.observe("delete", time.Now(), &err)

	path, err := s.projectPath(id)
	if err != nil {
		return err
	}

	lock := s.getFileLock(path)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.ErrProjectNotFound.WithDetail(id)
		}
		span.RecordError(err)
		return errors.Wrap(err, errors.CodeStorageError, "failed to delete project file")
	}
	return nil
}

// ListSummaries 扫描目录生成项目摘要列表，按更新时间倒序
func (s *Store) ListSummaries(ctx context.Context) (_ []entity.ProjectSummary, err error) {
	ctx, span := tracer.Start(ctx, "filestore.ListSummaries")
	defer span.End()
	defer s.observe("list", time.Now(), &err)

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to read storage dir")
	}

	summaries := make([]entity.ProjectSummary, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		project, err := s.Get(ctx, id)
		if err != nil {
			// 单个坏文件不影响列表其余部分
			span.RecordError(err)
			continue
		}
		summaries = append(summaries, project.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// Ping 存储健康检查
func (s *Store) Ping(ctx context.Context) error {
	_, span := tracer.Start(ctx, "filestore.Ping")
	defer span.End()

	info, err := os.Stat(s.baseDir)
	if err != nil {
		return fmt.Errorf("storage dir unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", s.baseDir)
	}
	return nil
}

// observe 记录存储操作指标
func (s *Store) observe(op string, start time.Time, err *error) {
	metrics.StoreOperationDuration.WithLabelValues(driverName, op).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil && *err != nil {
		status = "error"
	}
	metrics.StoreOperationTotal.WithLabelValues(driverName, op, status).Inc()
}

// Package files сохраняет загруженные аватары на диск и привязывает их к пользователю.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
)

// ErrUnsupportedType расширение файла не из списка изображений.
var ErrUnsupportedType = errors.New("unsupported file type")

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Repository хранилище метаданных файлов.
type Repository interface {
	CreateFile(ctx context.Context, f *models.File) error
	SetUserAvatar(ctx context.Context, userID, fileID int) error
	DeleteFile(ctx context.Context, id int) error
}

// ProviderCache сбрасывает кэш списка провайдеров.
type ProviderCache interface {
	Invalidate(ctx context.Context)
}

// Service загрузка аватаров.
type Service struct {
	repo      Repository
	providers ProviderCache
	dir       string
	publicURL string
	log       *slog.Logger
	newName   func() string
}

// New создает Service, файлы пишутся в dir.
func New(repo Repository, providers ProviderCache, dir, publicURL string, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		providers: providers,
		dir:       dir,
		publicURL: publicURL,
		log:       log,
		newName:   func() string { return uuid.NewString() },
	}
}

// UploadAvatar сохраняет содержимое src как аватар пользователя userID.
// name исходное имя файла от клиента, на диске файл получает случайное имя.
func (s *Service) UploadAvatar(ctx context.Context, userID int, name string, src io.Reader) (*models.File, error) {
	const op = "files.UploadAvatar"
	log := s.log.With(slog.String("op", op), slog.Int("user_id", userID))

	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExt[ext] {
		return nil, ErrUnsupportedType
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stored := s.newName() + ext
	dst := filepath.Join(s.dir, stored)
	if err := writeFile(dst, src); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f := &models.File{Name: filepath.Base(name), Path: stored}
	if err := s.repo.CreateFile(ctx, f); err != nil {
		s.removeOrphan(log, dst)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetUserAvatar(ctx, userID, f.ID); err != nil {
		if delErr := s.repo.DeleteFile(ctx, f.ID); delErr != nil {
			log.Warn("failed to delete orphan file row", slog.Int("file_id", f.ID), sl.Err(delErr))
		}
		s.removeOrphan(log, dst)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.providers.Invalidate(ctx)

	log.Info("avatar uploaded", slog.Int("file_id", f.ID), slog.String("path", stored))
	return f.WithURL(s.publicURL), nil
}

func writeFile(path string, src io.Reader) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return err
	}
	return out.Close()
}

func (s *Service) removeOrphan(log *slog.Logger, path string) {
	if err := os.Remove(path); err != nil {
		log.Warn("failed to remove orphan file", slog.String("path", path), sl.Err(err))
	}
}

package attachment

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"taskmanager/internal/logger"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Store пишет байты вложений в каталог загрузок. Ключ формируется
// сервисом, повторная запись под тем же ключом затирает предыдущий
// блоб - версионирования нет.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewDiskStore - продовый вариант поверх локального диска
func NewDiskStore(dir string) (*Store, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("создание каталога загрузок: %w", err)
	}
	return &Store{fs: fs, dir: dir}, nil
}

// NewStore принимает произвольную afero.Fs, в тестах - MemMapFs
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

func (s *Store) Save(ctx context.Context, key string, data []byte) (string, error) {
	start := time.Now()

	storedPath := path.Join(s.dir, key)
	if err := afero.WriteFile(s.fs, storedPath, data, 0o644); err != nil {
		logger.Error("Storage: Не удалось записать вложение", err,
			zap.String("key", key))
		return "", fmt.Errorf("запись вложения: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Storage: Медленная запись вложения", zap.Duration("ms", time.Since(start)))
	}

	return storedPath, nil
}

// SanitizeFilename срезает компоненты пути из имени файла клиента
func SanitizeFilename(filename string) string {
	clean := filepath.Base(filepath.Clean(filename))
	clean = strings.ReplaceAll(clean, "/", "_")
	clean = strings.ReplaceAll(clean, "\\", "_")
	if clean == "." || clean == ".." || clean == "" {
		return "unnamed"
	}
	return clean
}

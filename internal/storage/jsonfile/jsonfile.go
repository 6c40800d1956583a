// Package jsonfile реализует хранилище учётных записей в одном JSON-файле.
//
// Документ всегда читается и записывается целиком. Операции чтения,
// записи и Update сериализуются мьютексом, поэтому цикл
// "прочитать - изменить - записать" внутри Update не теряет параллельных
// изменений в пределах одного процесса. Несколько процессов над одним
// файлом по-прежнему не согласуются.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/magabrotheeeer/subscription-accounts/internal/models"
)

var (
	// ErrStorageUnavailable — файл не удаётся прочитать или записать.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrCorruptStore — содержимое файла не является документом {"users": [...]}.
	ErrCorruptStore = errors.New("corrupt store")
)

const filePerm = 0o600

// Store владеет файлом документа.
type Store struct {
	path   string
	mu     sync.Mutex
	closed bool
}

// New открывает хранилище по пути path. Если файла нет, создаются
// родительские каталоги и пустой документ.
func New(path string) (*Store, error) {
	const op = "storage.jsonfile.New"

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	s := &Store{path: path}

	_, err := os.Stat(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		if err := s.write(&models.Document{}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	// Содержимое проверяется сразу при открытии.
	if _, err := s.read(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Path возвращает путь к файлу документа.
func (s *Store) Path() string {
	return s.path
}

// Load возвращает собственную копию документа.
func (s *Store) Load(ctx context.Context) (*models.Document, error) {
	const op = "storage.jsonfile.Load"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("%s: %w: store closed", op, ErrStorageUnavailable)
	}
	doc, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc, nil
}

// Save полностью заменяет содержимое файла документом doc.
func (s *Store) Save(ctx context.Context, doc *models.Document) error {
	const op = "storage.jsonfile.Save"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%s: %w: store closed", op, ErrStorageUnavailable)
	}
	if err := s.write(doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Update читает документ, передаёт его в fn и записывает результат,
// удерживая блокировку на всё время. Если fn вернула ошибку, файл не
// меняется, а ошибка возвращается как есть.
func (s *Store) Update(ctx context.Context, fn func(doc *models.Document) error) error {
	const op = "storage.jsonfile.Update"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%s: %w: store closed", op, ErrStorageUnavailable)
	}
	doc, err := s.read()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := fn(doc); err != nil {
		return err
	}
	if err := s.write(doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close дожидается текущей операции и закрывает хранилище.
// Повторный вызов безопасен.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) read() (*models.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptStore, err)
	}
	return &doc, nil
}

// write заменяет файл целиком через renameio: временный файл в том же
// каталоге, fsync и rename. Неизвестные ключи документа сохраняются.
func (s *Store) write(doc *models.Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if err := renameio.WriteFile(s.path, buf.Bytes(), filePerm); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

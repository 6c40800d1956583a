// Package account содержит бизнес-логику регистрации, входа и
// администрирования учётных записей поверх хранилища документа.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-accounts/internal/lib/apikey"
	"github.com/magabrotheeeer/subscription-accounts/internal/lib/password"
	"github.com/magabrotheeeer/subscription-accounts/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-accounts/internal/models"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrUserNotFound       = errors.New("user not found")
)

// DocumentStore описывает контракт хранилища документа.
type DocumentStore interface {
	// Load возвращает копию документа.
	Load(ctx context.Context) (*models.Document, error)
	// Update выполняет fn над документом и сохраняет его атомарно
	// относительно других вызовов. Ошибка fn отменяет запись.
	Update(ctx context.Context, fn func(doc *models.Document) error) error
}

// Profile — данные, возвращаемые при успешном входе.
type Profile struct {
	Name  string
	Email string
}

// Service реализует операции над учётными записями.
type Service struct {
	store     DocumentStore
	passwords password.Policy
	log       *slog.Logger
	now       func() time.Time
	newKey    func() (string, error)
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithKeyGenerator подменяет генератор API-ключей.
func WithKeyGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newKey = gen }
}

// NewService создает новый экземпляр Service.
func NewService(store DocumentStore, passwords password.Policy, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		passwords: passwords,
		log:       log,
		now:       time.Now,
		newKey:    apikey.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register добавляет пользователя с пустыми activeUntil и apiKey.
func (s *Service) Register(ctx context.Context, name, email, rawPassword string) error {
	const op = "account.Register"

	if name == "" || email == "" || rawPassword == "" {
		return fmt.Errorf("%s: %w: name, email and password are required", op, ErrValidation)
	}

	stored, err := s.passwords.Prepare(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = s.store.Update(ctx, func(doc *models.Document) error {
		if doc.FindByEmail(email) != nil {
			return ErrDuplicateEmail
		}
		doc.Users = append(doc.Users, models.User{
			Name:     name,
			Email:    email,
			Password: stored,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("op", op), sl.Email(email))
	return nil
}

// Login проверяет учётные данные и срок действия подписки.
// Неизвестный email и неверный пароль дают одну и ту же ошибку.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (Profile, error) {
	const op = "account.Login"

	if email == "" || rawPassword == "" {
		return Profile{}, fmt.Errorf("%s: %w: email and password are required", op, ErrValidation)
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	var user *models.User
	for i := range doc.Users {
		u := &doc.Users[i]
		if u.Email == email && s.passwords.Matches(u.Password, rawPassword) {
			user = u
			break
		}
	}
	if user == nil {
		return Profile{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !user.IsActive(s.now()) {
		return Profile{}, fmt.Errorf("%s: %w", op, ErrAccountInactive)
	}

	return Profile{Name: user.Name, Email: user.Email}, nil
}

// ListUsers возвращает все записи в порядке регистрации без редактирования полей.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "account.ListUsers"

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if doc.Users == nil {
		return []models.User{}, nil
	}
	return doc.Users, nil
}

// SetActivePeriod сохраняет activeUntil пользователя в исходном виде.
// Значение должно разбираться models.ParseActiveUntil.
func (s *Service) SetActivePeriod(ctx context.Context, email, activeUntil string) error {
	const op = "account.SetActivePeriod"

	if activeUntil == "" {
		return fmt.Errorf("%s: %w: activeUntil is required", op, ErrValidation)
	}
	if _, err := models.ParseActiveUntil(activeUntil); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}

	err := s.store.Update(ctx, func(doc *models.Document) error {
		user := doc.FindByEmail(email)
		if user == nil {
			return ErrUserNotFound
		}
		value := activeUntil
		user.ActiveUntil = &value
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("active period updated", slog.String("op", op), sl.Email(email), slog.String("active_until", activeUntil))
	return nil
}

// CreateAPIKey выпускает новый ключ, заменяя предыдущий, и возвращает его.
func (s *Service) CreateAPIKey(ctx context.Context, email string) (string, error) {
	const op = "account.CreateAPIKey"

	key, err := s.newKey()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	err = s.store.Update(ctx, func(doc *models.Document) error {
		user := doc.FindByEmail(email)
		if user == nil {
			return ErrUserNotFound
		}
		user.APIKey = &key
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("api key created", slog.String("op", op), sl.Email(email))
	return key, nil
}

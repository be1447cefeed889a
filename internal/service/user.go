package service

import (
	"context"
	"errors"
	"fmt"

	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"uunn/internal/model"
	"uunn/internal/repo"
)

// UserService регистрация и вход пользователей.
type UserService struct {
	repo       repo.UserRepository
	minEntropy float64
}

// UserOption настройка UserService.
type UserOption func(*UserService)

// WithMinPasswordEntropy включает проверку стойкости пароля при регистрации.
func WithMinPasswordEntropy(bits float64) UserOption {
	return func(s *UserService) { s.minEntropy = bits }
}

func NewUserService(r repo.UserRepository, opts ...UserOption) *UserService {
	s := &UserService{repo: r}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register создаёт пользователя с bcrypt-хешем пароля и публичным identity-ключом (SPKI DER).
func (s *UserService) Register(ctx context.Context, login, password string, publicKey []byte) (*model.User, error) {
	if err := validatePublicKey(publicKey); err != nil {
		return nil, err
	}
	if s.minEntropy > 0 {
		if err := passwordvalidator.Validate(password, s.minEntropy); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
		}
	}

	existing, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLoginTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, &model.User{
		Login:     login,
		Password:  string(hash),
		PublicKey: publicKey,
	})
}

// Login проверяет логин и пароль.
func (s *UserService) Login(ctx context.Context, login, password string) (*model.User, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get пользователь по id.
func (s *UserService) Get(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return u, nil
}

// PublicKey возвращает зарегистрированный публичный ключ пользователя.
func (s *UserService) PublicKey(ctx context.Context, userID int64) ([]byte, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.PublicKey, nil
}

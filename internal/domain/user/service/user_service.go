package service

import (
	"context"
	"time"

	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/user/model"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/user/repository"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/apperr"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, email, password, name string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, *time.Time, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type userService struct {
	repo    repository.UserRepository
	limiter AttemptLimiter
}

func NewUserService(repo repository.UserRepository, limiter AttemptLimiter) UserService {
	return &userService{repo: repo, limiter: limiter}
}

func (s *userService) Register(ctx context.Context, email, password, name string) (*model.User, string, error) {
	if ok, _ := s.limiter.Allow(ctx, "register:"+email); !ok {
		return nil, "", apperr.Validationf("too many registration attempts, try again later")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", apperr.Conflictf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         model.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, _, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*model.User, string, *time.Time, error) {
	if ok, _ := s.limiter.Allow(ctx, "login:"+email); !ok {
		return nil, "", nil, apperr.Unauthorized("too many login attempts, try again later")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", nil, err
	}
	if user == nil {
		// Same message as a wrong password; do not reveal which.
		return nil, "", nil, apperr.Unauthorized("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", nil, apperr.Unauthorized("invalid email or password")
	}

	token, expiresAt, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", nil, err
	}
	return user, token, expiresAt, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFoundf("user not found")
	}
	return user, nil
}

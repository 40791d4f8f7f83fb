package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lamdang/quizforge/config"
	"github.com/lamdang/quizforge/internal/apperr"
	"github.com/lamdang/quizforge/internal/dto"
	"github.com/lamdang/quizforge/internal/model"
	"github.com/lamdang/quizforge/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenLifetime = 24 * time.Hour

// AuthClaims is the JWT payload resolving a request to a stable user id.
type AuthClaims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(req dto.RegisterRequest) (*dto.AuthResponseDTO, error)
	Login(req dto.LoginRequest) (*dto.AuthResponseDTO, error)
}

type authService struct {
	userRepo repository.UserRepository
	secret   []byte
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set, issued tokens will use an empty signing key")
	}
	return &authService{userRepo: userRepo, secret: []byte(cfg.JWTSecret)}
}

func (s *authService) Register(req dto.RegisterRequest) (*dto.AuthResponseDTO, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "could not hash password", err)
	}

	user := model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(&user); err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "failed to create user", err)
	}
	return s.issue(&user)
}

func (s *authService) Login(req dto.LoginRequest) (*dto.AuthResponseDTO, error) {
	user, err := s.userRepo.FindByUsername(req.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.NotFound, "invalid username or password")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "failed to look up user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperr.New(apperr.NotFound, "invalid username or password")
	}
	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*dto.AuthResponseDTO, error) {
	claims := AuthClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "failed to sign token", err)
	}
	return &dto.AuthResponseDTO{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
	}, nil
}

package service

import (
	"HalalCalendar/internal/api/dto"
	"HalalCalendar/internal/model"
	"HalalCalendar/internal/pkg/security"
	"HalalCalendar/internal/pkg/util"
	"HalalCalendar/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/jinzhu/copier"
)

// TokenRevoker 已注销 Token 的存储
type TokenRevoker interface {
	Revoke(ctx context.Context, signature string, ttl time.Duration) error
	IsRevoked(ctx context.Context, signature string) (bool, error)
}

type UserService interface {
	Register(ctx context.Context, regDTO *dto.RegisterDTO) (*dto.UserDTO, error)
	Login(ctx context.Context, credential *dto.CredentialDTO) (*dto.TokenDTO, error)
	Logout(ctx context.Context, token string) error
	GetUserInfo(ctx context.Context, caller *Caller) (*dto.UserDTO, error)
	EnsureAdmin(ctx context.Context, email, password string, name *string) (*dto.UserDTO, error)
}

type UserServiceImpl struct {
	userRepo repository.UserRepo
	tokens   *security.TokenManager
	revoker  TokenRevoker
}

func NewUserService(userRepo repository.UserRepo, tokens *security.TokenManager, revoker TokenRevoker) UserService {
	return &UserServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		revoker:  revoker,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register 新用户默认为普通角色
func (s *UserServiceImpl) Register(ctx context.Context, regDTO *dto.RegisterDTO) (*dto.UserDTO, error) {
	regDTO.Email = normalizeEmail(regDTO.Email)
	if err := util.ValidateDTO(regDTO); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	findUser, err := s.userRepo.GetUserByEmail(ctx, regDTO.Email)
	if err != nil {
		return nil, storeError(ctx, "Register", err)
	}
	if findUser != nil {
		return nil, ErrUserExist
	}

	passwordHash, err := security.HashPassword(regDTO.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:    regDTO.Email,
		Name:     regDTO.Name,
		Password: &passwordHash,
		Role:     model.RoleUser,
	}
	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		if isDuplicateError(err) {
			return nil, ErrUserExist
		}
		return nil, storeError(ctx, "Register", err)
	}
	return toUserDTO(user), nil
}

func (s *UserServiceImpl) Login(ctx context.Context, credential *dto.CredentialDTO) (*dto.TokenDTO, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(credential.Email))
	if err != nil {
		return nil, storeError(ctx, "Login", err)
	}
	if user == nil || user.Password == nil {
		return nil, ErrPasswordIncorrect
	}
	if err = security.CheckPasswordHash(credential.Password, *user.Password); err != nil {
		return nil, ErrPasswordIncorrect
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &dto.TokenDTO{Token: token}, nil
}

// Logout 吊销 Token 直至其自然过期
func (s *UserServiceImpl) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return ErrUnauthenticated
	}
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrUnauthenticated
	}

	ttl := s.tokens.TTL()
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err = s.revoker.Revoke(ctx, signature, ttl); err != nil {
		log.ErrorContext(ctx, "revoke token failed", "user_id", claims.UserID, "err", err)
		return UnExpectedError
	}
	return nil
}

func (s *UserServiceImpl) GetUserInfo(ctx context.Context, caller *Caller) (*dto.UserDTO, error) {
	if !IsAuthenticated(caller) {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.GetUserById(ctx, caller.UserID)
	if err != nil {
		return nil, storeError(ctx, "GetUserInfo", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserDTO(user), nil
}

// EnsureAdmin 创建管理员账号，已存在则提升为管理员
func (s *UserServiceImpl) EnsureAdmin(ctx context.Context, email, password string, name *string) (*dto.UserDTO, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, storeError(ctx, "EnsureAdmin", err)
	}
	if user != nil {
		if err = s.userRepo.UpdateUserRole(ctx, user.ID, model.RoleAdmin); err != nil {
			return nil, storeError(ctx, "EnsureAdmin", err)
		}
		user.Role = model.RoleAdmin
		return toUserDTO(user), nil
	}

	reg := &dto.RegisterDTO{Email: email, Password: password, Name: name}
	if err = util.ValidateDTO(reg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user = &model.User{Email: email, Name: name, Password: &passwordHash, Role: model.RoleAdmin}
	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, storeError(ctx, "EnsureAdmin", err)
	}
	return toUserDTO(user), nil
}

func toUserDTO(user *model.User) *dto.UserDTO {
	userDTO := &dto.UserDTO{}
	_ = copier.Copy(userDTO, user)
	return userDTO
}

// IsRevokedToken 供中间件判断 Token 是否已注销；存储不可用时视为未吊销
func IsRevokedToken(ctx context.Context, revoker TokenRevoker, signature string) bool {
	if revoker == nil {
		return false
	}
	revoked, err := revoker.IsRevoked(ctx, signature)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.WarnContext(ctx, "token revocation check failed", "err", err)
		}
		return false
	}
	return revoked
}

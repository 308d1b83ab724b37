package user

import (
	"context"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（如密码加密、验证）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
// 3. Service不处理HTTP请求，只处理业务逻辑
type Service interface {
	// Register 注册普通用户
	Register(ctx context.Context, username, password string) (*User, error)

	// CreateAdmin 创建管理员账号（调用方需保证已做权限校验）
	CreateAdmin(ctx context.Context, username, password string) (*User, error)

	// Login 用户名密码登录
	// 用户不存在、密码错误、账号已删除统一返回ErrInvalidCredentials,
	// 避免泄露哪些用户名已被注册
	Login(ctx context.Context, username, password string) (*User, error)

	// ChangePassword 修改密码（重新加密后持久化，明文不落库不打日志）
	ChangePassword(ctx context.Context, userID uint, newPassword string) (*User, error)

	// SetRole 变更用户角色（调用方需保证已做权限校验）
	SetRole(ctx context.Context, userID uint, role Role) (*User, error)

	// Deactivate 软删除用户，已删除的用户无法登录
	Deactivate(ctx context.Context, userID uint) (*User, error)

	// Restore 恢复已删除的用户
	Restore(ctx context.Context, userID uint) (*User, error)

	// EnsureDefaultAdmin 保证库中存在管理员账号
	// 已存在则什么都不做（跨重启幂等），不存在则用给定凭证创建一个
	EnsureDefaultAdmin(ctx context.Context, username, password string) error
}

type service struct {
	repo Repository
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Register 注册普通用户
// 业务规则：
// 1. 用户名长度校验（3-50个字符）
// 2. 密码强度校验（8-20位，包含字母和数字）
// 3. 密码bcrypt加密（cost=12）
// 4. 用户名唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, username, password string) (*User, error) {
	return s.create(ctx, username, password, RoleRegular)
}

// CreateAdmin 创建管理员账号
// 业务规则与Register一致，只是角色不同
func (s *service) CreateAdmin(ctx context.Context, username, password string) (*User, error) {
	return s.create(ctx, username, password, RoleAdmin)
}

func (s *service) create(ctx context.Context, username, password string, role Role) (*User, error) {
	// 1. 用户名校验
	if len(username) < 3 || len(username) > 50 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "用户名长度应为3-50个字符")
	}

	// 2. 密码强度校验
	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}

	// 3. 密码加密
	// bcrypt自动加盐，每次加密结果都不同（即使密码相同）
	// cost=12平衡安全性与性能
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	// 4. 创建用户实体并持久化
	user := NewUser(username, string(hashedPassword), role)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err // Repository已转换为业务错误
	}

	return user, nil
}

// Login 用户登录
// 业务规则：
// 1. 用户名必须存在且未被删除
// 2. 密码必须正确
// 3. 三种失败原因对外不可区分（统一ErrInvalidCredentials）
func (s *service) Login(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Deleted {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword 修改密码
func (s *service) ChangePassword(ctx context.Context, userID uint, newPassword string) (*User, error) {
	if err := validatePasswordStrength(newPassword); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Deleted {
		return nil, apperrors.New(apperrors.ErrCodeAlreadyDeleted, "用户已被删除")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), 12)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	user.SetPassword(string(hashedPassword))
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetRole 变更用户角色
// 业务规则：
// 1. 角色只能是已定义的两级之一
// 2. 已删除的用户不可变更角色（先恢复再操作）
// 3. 同角色重复设置视为幂等成功，不产生更新
func (s *service) SetRole(ctx context.Context, userID uint, role Role) (*User, error) {
	if role != RoleRegular && role != RoleAdmin {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "非法的角色值")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Deleted {
		return nil, apperrors.New(apperrors.ErrCodeAlreadyDeleted, "用户已被删除")
	}
	if user.Role == role {
		return user, nil
	}

	user.ChangeRole(role)
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Deactivate 软删除用户
func (s *service) Deactivate(ctx context.Context, userID uint) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Deleted {
		return nil, apperrors.New(apperrors.ErrCodeAlreadyDeleted, "用户已被删除")
	}

	user.MarkDeleted()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Restore 恢复已删除的用户
func (s *service) Restore(ctx context.Context, userID uint) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Deleted {
		return nil, apperrors.New(apperrors.ErrCodeNotDeleted, "用户未被删除")
	}

	user.Restore()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// EnsureDefaultAdmin 默认管理员幂等创建
// 说明：
// 1. 只要库中存在未删除的管理员就跳过，重启不会重复创建
// 2. 凭证来自配置，不做密码强度校验（由运维负责）
func (s *service) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	exists, err := s.repo.HasAdmin(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return apperrors.Wrap(err, "密码加密失败")
	}

	admin := NewUser(username, string(hashedPassword), RoleAdmin)
	if err := s.repo.Create(ctx, admin); err != nil {
		// 并发启动时可能撞上唯一索引，视为已创建
		if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Code == apperrors.ErrCodeUsernameDuplicate {
			return nil
		}
		return err
	}

	return nil
}

// =========================================
// 辅助函数：业务规则校验
// =========================================

// validatePasswordStrength 密码强度校验
// 规则：8-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasDigit := regexp.MustCompile(`[0-9]`).MatchString(password)

	if !hasLetter || !hasDigit {
		return apperrors.ErrWeakPassword
	}

	return nil
}

package user

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Actor 当前操作人(从JWT Claims提取)
type Actor struct {
	UserID uint
	Role   int
}

// CreateAdminUseCase 创建管理员用例(仅管理员可调用,权限由中间件保证)
type CreateAdminUseCase struct {
	userService user.Service
}

// NewCreateAdminUseCase 创建管理员用例
func NewCreateAdminUseCase(userService user.Service) *CreateAdminUseCase {
	return &CreateAdminUseCase{userService: userService}
}

// Execute 执行创建管理员
func (uc *CreateAdminUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.CreateAdmin(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// DeactivateUserUseCase 停用(软删除)用户用例
// 业务规则:
// 1. 管理员可以停用任意用户
// 2. 普通用户只能停用自己的账号
// 3. 停用后删除会话,令已签发的Token尽快失效
type DeactivateUserUseCase struct {
	userService  user.Service
	sessionStore *redis.SessionStore
}

// NewDeactivateUserUseCase 创建停用用户用例
func NewDeactivateUserUseCase(userService user.Service, sessionStore *redis.SessionStore) *DeactivateUserUseCase {
	return &DeactivateUserUseCase{userService: userService, sessionStore: sessionStore}
}

// Execute 执行停用
func (uc *DeactivateUserUseCase) Execute(ctx context.Context, actor Actor, targetID uint) (*UserInfo, error) {
	// 权限校验:非管理员只能停用自己
	if actor.Role != int(user.RoleAdmin) && actor.UserID != targetID {
		return nil, apperrors.ErrForbidden
	}

	u, err := uc.userService.Deactivate(ctx, targetID)
	if err != nil {
		return nil, err
	}

	// 删除会话,强制下线(失败不影响停用结果)
	if err := uc.sessionStore.DeleteSession(ctx, targetID); err != nil {
		log.Printf("删除会话失败: user_id=%d err=%v", targetID, err)
	}

	return toUserInfo(u), nil
}

// RestoreUserUseCase 恢复已停用用户用例(仅管理员)
type RestoreUserUseCase struct {
	userService user.Service
}

// NewRestoreUserUseCase 创建恢复用户用例
func NewRestoreUserUseCase(userService user.Service) *RestoreUserUseCase {
	return &RestoreUserUseCase{userService: userService}
}

// Execute 执行恢复
func (uc *RestoreUserUseCase) Execute(ctx context.Context, targetID uint) (*UserInfo, error) {
	u, err := uc.userService.Restore(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// SetRoleUseCase 变更用户角色用例(仅管理员,权限由中间件保证)
// 业务规则:
// 1. 角色写在JWT里,已签发的Token仍携带旧角色,
//    变更后删除会话,令目标用户尽快重新登录换取新角色
// 2. 管理员不能降级自己,避免把系统降到无管理员
type SetRoleUseCase struct {
	userService  user.Service
	sessionStore *redis.SessionStore
}

// NewSetRoleUseCase 创建变更角色用例
func NewSetRoleUseCase(userService user.Service, sessionStore *redis.SessionStore) *SetRoleUseCase {
	return &SetRoleUseCase{userService: userService, sessionStore: sessionStore}
}

// SetRoleRequest 变更角色请求
type SetRoleRequest struct {
	TargetID uint
	Role     int
}

// Execute 执行变更角色
func (uc *SetRoleUseCase) Execute(ctx context.Context, actor Actor, req SetRoleRequest) (*UserInfo, error) {
	if actor.UserID == req.TargetID && req.Role != int(user.RoleAdmin) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "不能降级自己的角色")
	}

	u, err := uc.userService.SetRole(ctx, req.TargetID, user.Role(req.Role))
	if err != nil {
		return nil, err
	}

	// 强制重新登录以刷新Token内的角色(失败不影响变更结果)
	if err := uc.sessionStore.DeleteSession(ctx, req.TargetID); err != nil {
		log.Printf("删除会话失败: user_id=%d err=%v", req.TargetID, err)
	}

	return toUserInfo(u), nil
}

// ChangePasswordUseCase 修改密码用例
// 业务规则:
// 1. 管理员可以重置任意用户的密码
// 2. 普通用户只能修改自己的密码
// 3. 修改成功后删除会话并拉黑当前Token,所有设备需重新登录
type ChangePasswordUseCase struct {
	userService  user.Service
	sessionStore *redis.SessionStore
	blacklistTTL time.Duration
}

// NewChangePasswordUseCase 创建修改密码用例
func NewChangePasswordUseCase(
	userService user.Service,
	sessionStore *redis.SessionStore,
	blacklistTTL time.Duration,
) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{
		userService:  userService,
		sessionStore: sessionStore,
		blacklistTTL: blacklistTTL,
	}
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	TargetID    uint   // 目标用户ID
	NewPassword string // 新密码
	AccessToken string // 当前请求携带的Token(修改自己密码时拉黑)
}

// Execute 执行修改密码
func (uc *ChangePasswordUseCase) Execute(ctx context.Context, actor Actor, req ChangePasswordRequest) error {
	// 权限校验:非管理员只能修改自己的密码
	if actor.Role != int(user.RoleAdmin) && actor.UserID != req.TargetID {
		return apperrors.ErrForbidden
	}

	if _, err := uc.userService.ChangePassword(ctx, req.TargetID, req.NewPassword); err != nil {
		return err
	}

	// 改密后强制重新登录
	if err := uc.sessionStore.DeleteSession(ctx, req.TargetID); err != nil {
		log.Printf("删除会话失败: user_id=%d err=%v", req.TargetID, err)
	}
	if actor.UserID == req.TargetID && req.AccessToken != "" {
		if err := uc.sessionStore.AddToBlacklist(ctx, req.AccessToken, uc.blacklistTTL); err != nil {
			log.Printf("拉黑Token失败: user_id=%d err=%v", req.TargetID, err)
		}
	}

	return nil
}

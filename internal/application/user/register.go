package user

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 设计说明:
// 1. 协调领域服务完成注册流程
// 2. 负责DTO转换(应用层不暴露领域实体)
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string
	Password string
}

// Execute 执行注册(公开接口,注册的都是普通用户)
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// UserInfo 用户信息DTO
type UserInfo struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Role      int    `json:"role"`
	RoleName  string `json:"role_name"`
	Deleted   bool   `json:"deleted"`
	CreatedAt string `json:"created_at"`
}

// toUserInfo 领域实体 → DTO
func toUserInfo(u *user.User) *UserInfo {
	return &UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Role:      int(u.Role),
		RoleName:  u.Role.String(),
		Deleted:   u.Deleted,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

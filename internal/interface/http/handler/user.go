package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/response"
)

// UserHandler 用户HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 不包含业务逻辑（业务逻辑在domain和application层）
// 3. 使用依赖注入，便于测试
type UserHandler struct {
	registerUseCase       *appuser.RegisterUseCase
	loginUseCase          *appuser.LoginUseCase
	logoutUseCase         *appuser.LogoutUseCase
	refreshUseCase        *appuser.RefreshTokenUseCase
	createAdminUseCase    *appuser.CreateAdminUseCase
	deactivateUseCase     *appuser.DeactivateUserUseCase
	restoreUseCase        *appuser.RestoreUserUseCase
	setRoleUseCase        *appuser.SetRoleUseCase
	changePasswordUseCase *appuser.ChangePasswordUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	refreshUseCase *appuser.RefreshTokenUseCase,
	createAdminUseCase *appuser.CreateAdminUseCase,
	deactivateUseCase *appuser.DeactivateUserUseCase,
	restoreUseCase *appuser.RestoreUserUseCase,
	setRoleUseCase *appuser.SetRoleUseCase,
	changePasswordUseCase *appuser.ChangePasswordUseCase,
) *UserHandler {
	return &UserHandler{
		registerUseCase:       registerUseCase,
		loginUseCase:          loginUseCase,
		logoutUseCase:         logoutUseCase,
		refreshUseCase:        refreshUseCase,
		createAdminUseCase:    createAdminUseCase,
		deactivateUseCase:     deactivateUseCase,
		restoreUseCase:        restoreUseCase,
		setRoleUseCase:        setRoleUseCase,
		changePasswordUseCase: changePasswordUseCase,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Description  创建普通用户账号(公开接口)
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      200 {object} response.Response{data=dto.UserResponse} "注册成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "用户名已存在"
// @Router       /api/v1/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toUserResponse(result))
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证用户名密码，返回JWT Token对
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=dto.LoginResponse} "登录成功"
// @Failure      401 {object} response.Response "用户名或密码错误"
// @Router       /api/v1/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Username: req.Username,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.LoginResponse{
		User:         *toUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

// Refresh 刷新Access Token
// @Summary      刷新Token
// @Description  使用Refresh Token换取新的Access Token
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=dto.RefreshResponse} "刷新成功"
// @Failure      401 {object} response.Response "Token无效或已过期"
// @Router       /api/v1/auth/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.refreshUseCase.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.RefreshResponse{AccessToken: result.AccessToken})
}

// Logout 用户登出
// @Summary      用户登出
// @Description  删除会话并将当前Token加入黑名单
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "登出成功"
// @Router       /api/v1/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	token := middleware.GetAccessToken(c)

	if err := h.logoutUseCase.Execute(c.Request.Context(), userID, token); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// CreateAdmin 创建管理员账号
// @Summary      创建管理员
// @Description  创建管理员账号(仅管理员可调用)
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RegisterRequest true "账号信息"
// @Success      200 {object} response.Response{data=dto.UserResponse} "创建成功"
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/users/admin [post]
func (h *UserHandler) CreateAdmin(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.createAdminUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toUserResponse(result))
}

// DeactivateUser 停用用户
// @Summary      停用用户
// @Description  软删除用户账号。管理员可停用任意用户,普通用户只能停用自己
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=dto.UserResponse} "停用成功"
// @Failure      403 {object} response.Response "无权限"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/users/{id} [delete]
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	targetID, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.deactivateUseCase.Execute(c.Request.Context(), currentActor(c), targetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toUserResponse(result))
}

// DeactivateMe 停用自己的账号
// @Summary      注销账号
// @Description  停用(软删除)当前登录用户自己的账号
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.UserResponse} "停用成功"
// @Router       /api/v1/users/me [delete]
func (h *UserHandler) DeactivateMe(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.deactivateUseCase.Execute(c.Request.Context(), currentActor(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toUserResponse(result))
}

// RestoreUser 恢复已停用用户
// @Summary      恢复用户
// @Description  恢复已停用的用户账号(仅管理员)
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=dto.UserResponse} "恢复成功"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/users/{id}/restore [post]
func (h *UserHandler) RestoreUser(c *gin.Context) {
	targetID, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.restoreUseCase.Execute(c.Request.Context(), targetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toUserResponse(result))
}

// SetRole 变更用户角色
// @Summary      变更角色
// @Description  提升或降级用户角色(仅管理员)。变更后目标用户需重新登录
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Param        request body dto.SetRoleRequest true "目标角色"
// @Success      200 {object} response.Response{data=dto.UserResponse} "变更成功"
// @Failure      403 {object} response.Response "无权限"
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/users/{id}/role [put]
func (h *UserHandler) SetRole(c *gin.Context) {
	targetID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.setRoleUseCase.Execute(c.Request.Context(), currentActor(c), appuser.SetRoleRequest{
		TargetID: targetID,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toUserResponse(result))
}

// ChangePassword 修改密码
// @Summary      修改密码
// @Description  修改指定用户的密码。管理员可重置任意用户,普通用户只能改自己的
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Param        request body dto.ChangePasswordRequest true "新密码"
// @Success      200 {object} response.Response "修改成功"
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/users/{id}/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	targetID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	err := h.changePasswordUseCase.Execute(c.Request.Context(), currentActor(c), appuser.ChangePasswordRequest{
		TargetID:    targetID,
		NewPassword: req.NewPassword,
		AccessToken: middleware.GetAccessToken(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// toUserResponse 应用层DTO → HTTP层DTO
func toUserResponse(u *appuser.UserInfo) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		RoleName:  u.RoleName,
		Deleted:   u.Deleted,
		CreatedAt: u.CreatedAt,
	}
}

// currentActor 从Context构建当前操作人
func currentActor(c *gin.Context) appuser.Actor {
	return appuser.Actor{
		UserID: middleware.GetUserID(c),
		Role:   middleware.GetRole(c),
	}
}

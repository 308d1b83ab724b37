package user

import (
	"time"
)

// Role 用户角色
// 设计说明:
// 1. 使用int类型而非string(节省存储空间,便于索引)
// 2. 只有两级:普通用户和管理员,不做更细的权限图
type Role int

const (
	RoleRegular Role = 1 // 普通用户
	RoleAdmin   Role = 2 // 管理员
)

// String 实现Stringer接口(方便日志输出)
func (r Role) String() string {
	switch r {
	case RoleRegular:
		return "普通用户"
	case RoleAdmin:
		return "管理员"
	default:
		return "未知角色"
	}
}

// User 用户实体（聚合根）
// DDD设计说明：
// 1. User是用户聚合的根实体，包含用户的核心属性
// 2. 密码已加密存储（bcrypt），不应该有方法暴露明文
// 3. Deleted是软删除标记:删除的用户保留在库中(销售记录引用它),
//    但无法登录,可由管理员恢复
// 4. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
type User struct {
	ID        uint
	Username  string
	Password  string // bcrypt哈希值
	Role      Role
	Deleted   bool // 软删除标记
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(username, hashedPassword string, role Role) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Password:  hashedPassword,
		Role:      role,
		Deleted:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// MarkDeleted 标记删除（领域行为）
func (u *User) MarkDeleted() {
	u.Deleted = true
	u.UpdatedAt = time.Now()
}

// Restore 恢复已删除的用户（领域行为）
func (u *User) Restore() {
	u.Deleted = false
	u.UpdatedAt = time.Now()
}

// ChangeRole 变更角色（领域行为）
func (u *User) ChangeRole(role Role) {
	u.Role = role
	u.UpdatedAt = time.Now()
}

// SetPassword 更新密码哈希
// hashedPassword必须已经过bcrypt加密,明文永远不落库
func (u *User) SetPassword(hashedPassword string) {
	u.Password = hashedPassword
	u.UpdatedAt = time.Now()
}

package user

import (
	"context"
)

// Repository 用户仓储接口
// DDD设计说明：
// 1. 接口定义在domain层（依赖倒置原则）
// 2. 具体实现在infrastructure/persistence/mysql层
// 3. 查询不过滤软删除标记:已删除的用户仍可被查到(恢复、审计需要),
//    是否可用由领域层根据Deleted字段判断
type Repository interface {
	// Create 创建用户
	// 注意：如果用户名已存在，应返回errors.ErrUsernameDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户（包含已删除的）
	// 如果不存在，返回errors.ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByUsername 根据用户名查找用户（包含已删除的）
	// 如果不存在，返回errors.ErrUserNotFound
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Update 更新用户信息（包括软删除标记、密码哈希）
	Update(ctx context.Context, user *User) error

	// HasAdmin 判断库中是否存在未删除的管理员账号
	// 用于启动时的默认管理员幂等创建
	HasAdmin(ctx context.Context) (bool, error)
}

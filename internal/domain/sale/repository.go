package sale

import (
	"context"
	"time"
)

// ListParams 销售记录列表查询参数
type ListParams struct {
	UserID         uint       // 按操作人过滤(0表示不过滤)
	BookID         uint       // 按图书过滤(0表示不过滤)
	From           *time.Time // 销售时间起始(含)
	To             *time.Time // 销售时间截止(含)
	IncludeDeleted bool       // 是否包含已删除记录(仅管理员)
	Page           int        // 页码(从1开始)
	PageSize       int        // 每页数量
}

// Repository 销售记录仓储接口
type Repository interface {
	// Create 创建销售记录
	Create(ctx context.Context, s *Sale) error

	// FindByID 根据ID查询销售记录(包含已删除的)
	// 不存在时返回ErrSaleNotFound
	FindByID(ctx context.Context, id uint) (*Sale, error)

	// LockByID 查询销售记录并加悲观锁(SELECT ... FOR UPDATE)
	// 必须在事务内调用,用于数量修改时的并发控制
	LockByID(ctx context.Context, id uint) (*Sale, error)

	// Update 更新销售记录(全量字段)
	Update(ctx context.Context, s *Sale) error

	// List 分页查询销售记录,返回(列表, 总数, 错误)
	List(ctx context.Context, params ListParams) ([]*Sale, int64, error)
}

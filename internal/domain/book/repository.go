package book

import (
	"context"
)

// 列表排序方式
const (
	SortCreatedDesc = "created_desc" // 默认:最新上架优先
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortTitleAsc    = "title_asc"
)

// ListParams 图书列表查询参数
type ListParams struct {
	Category       string // 分类过滤(空表示不过滤)
	Author         string // 作者过滤(空表示不过滤)
	Keyword        string // 书名模糊搜索(空表示不过滤)
	IncludeDeleted bool   // 是否包含已删除图书(仅管理员)
	Sort           string // 排序方式(见Sort*常量,非法值回退默认)
	Page           int    // 页码(从1开始)
	PageSize       int    // 每页数量
}

// Repository 图书仓储接口(依赖倒置:领域层定义接口,基础设施层实现)
type Repository interface {
	// Create 创建图书
	// 书名重复时返回ErrTitleDuplicate
	Create(ctx context.Context, b *Book) error

	// FindByID 根据ID查询图书(包含已删除的)
	// 不存在时返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByTitle 根据书名查询图书(包含已删除的)
	// 不存在时返回ErrBookNotFound
	FindByTitle(ctx context.Context, title string) (*Book, error)

	// Update 更新图书(全量字段)
	Update(ctx context.Context, b *Book) error

	// List 分页查询图书列表,返回(列表, 总数, 错误)
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByID 查询图书并加悲观锁(SELECT ... FOR UPDATE)
	// 必须在事务内调用,用于库存扣减的并发控制
	LockByID(ctx context.Context, id uint) (*Book, error)

	// UpdateStock 原子更新库存(delta可为负数)
	// 使用条件更新保证库存不为负:影响行数为0时区分图书不存在与库存不足
	UpdateStock(ctx context.Context, id uint, delta int) error
}

package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/sale"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// saleRepository 销售记录仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/sale/repository.go定义的接口
// 2. 所有写操作都支持事务传递(getDB从context提取事务DB)
type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository 创建销售记录仓储
func NewSaleRepository(db *gorm.DB) sale.Repository {
	return &saleRepository{db: db}
}

// Create 创建销售记录
func (r *saleRepository) Create(ctx context.Context, s *sale.Sale) error {
	model := &SaleModel{
		BookID:    s.BookID,
		UserID:    s.UserID,
		Quantity:  s.Quantity,
		UnitPrice: s.UnitPrice,
		Total:     s.Total,
		SoldAt:    s.SoldAt,
		Deleted:   s.Deleted,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建销售记录失败")
	}

	// 回填自增ID
	s.ID = model.ID
	s.CreatedAt = model.CreatedAt
	s.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找销售记录(包含已删除的)
func (r *saleRepository) FindByID(ctx context.Context, id uint) (*sale.Sale, error) {
	var model SaleModel
	err := r.getDB(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sale.ErrSaleNotFound
		}
		return nil, apperrors.Wrap(err, "查询销售记录失败")
	}

	return toSaleEntity(&model), nil
}

// LockByID 悲观锁查询销售记录(用于数量修改、删除、恢复)
// 必须在事务内调用
func (r *saleRepository) LockByID(ctx context.Context, id uint) (*sale.Sale, error) {
	var model SaleModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sale.ErrSaleNotFound
		}
		return nil, apperrors.Wrap(err, "锁定销售记录失败")
	}

	return toSaleEntity(&model), nil
}

// Update 更新销售记录
func (r *saleRepository) Update(ctx context.Context, s *sale.Sale) error {
	model := &SaleModel{
		ID:        s.ID,
		BookID:    s.BookID,
		UserID:    s.UserID,
		Quantity:  s.Quantity,
		UnitPrice: s.UnitPrice,
		Total:     s.Total,
		SoldAt:    s.SoldAt,
		Deleted:   s.Deleted,
		CreatedAt: s.CreatedAt,
	}

	if err := r.getDB(ctx).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新销售记录失败")
	}

	s.UpdatedAt = model.UpdatedAt
	return nil
}

// List 分页查询销售记录
func (r *saleRepository) List(ctx context.Context, params sale.ListParams) ([]*sale.Sale, int64, error) {
	var models []SaleModel
	var total int64

	query := r.getDB(ctx).Model(&SaleModel{})

	// 默认只查询未删除的记录
	if !params.IncludeDeleted {
		query = query.Where("deleted = ?", false)
	}

	if params.UserID != 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.BookID != 0 {
		query = query.Where("book_id = ?", params.BookID)
	}

	// 销售时间范围过滤
	if params.From != nil {
		query = query.Where("sold_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("sold_at <= ?", *params.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询销售记录总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	query = query.Order("sold_at DESC").Limit(params.PageSize).Offset(offset)

	if err := query.Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询销售记录列表失败")
	}

	sales := make([]*sale.Sale, len(models))
	for i := range models {
		sales[i] = toSaleEntity(&models[i])
	}

	return sales, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toSaleEntity GORM模型 → 领域实体
func toSaleEntity(model *SaleModel) *sale.Sale {
	return &sale.Sale{
		ID:        model.ID,
		BookID:    model.BookID,
		UserID:    model.UserID,
		Quantity:  model.Quantity,
		UnitPrice: model.UnitPrice,
		Total:     model.Total,
		SoldAt:    model.SoldAt,
		Deleted:   model.Deleted,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *saleRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

package sale

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/sale"
	"github.com/xiebiao/bookshop/internal/domain/user"
)

// Actor 当前操作人(从JWT Claims提取)
type Actor struct {
	UserID uint
	Role   int
}

// canMutate 归属校验:本人或管理员可以操作
func (a Actor) canMutate(s *sale.Sale) bool {
	return a.Role == int(user.RoleAdmin) || a.UserID == s.UserID
}

// UpdateSaleUseCase 修改销售数量用例
// 业务规则:
// 1. 本人可修改自己的记录,管理员可修改任意记录;他人记录按不存在处理
// 2. 已删除的销售记录不可修改,图书已删除时不可调整数量
// 3. 数量变化需要同步调整库存:增加数量扣库存(可能库存不足),减少数量回补库存
// 4. 总价基于成交时的单价快照重算,不取图书当前价格
type UpdateSaleUseCase struct {
	saleRepo  sale.Repository
	bookRepo  book.Repository
	txManager TxManager
	publisher EventPublisher
}

// NewUpdateSaleUseCase 创建修改销售用例
func NewUpdateSaleUseCase(
	saleRepo sale.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	publisher EventPublisher,
) *UpdateSaleUseCase {
	return &UpdateSaleUseCase{
		saleRepo:  saleRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		publisher: publisher,
	}
}

// UpdateSaleRequest 修改销售请求DTO
type UpdateSaleRequest struct {
	SaleID   uint
	Quantity int // 新的销售数量
}

// Execute 执行修改销售数量
func (uc *UpdateSaleUseCase) Execute(ctx context.Context, actor Actor, req UpdateSaleRequest) (*SaleInfo, error) {
	if req.Quantity <= 0 {
		return nil, sale.ErrInvalidQuantity
	}

	var result *sale.Sale
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定销售记录(防止并发修改同一条记录)
		s, err := uc.saleRepo.LockByID(txCtx, req.SaleID)
		if err != nil {
			return err
		}
		// 归属校验:不暴露他人记录的存在性
		if !actor.canMutate(s) {
			return sale.ErrSaleNotFound
		}
		if s.Deleted {
			return sale.ErrSaleAlreadyDeleted
		}

		// 2. 计算库存调整量
		// 数量从3改为5:delta=2,需要额外扣2本库存
		// 数量从5改为3:delta=-2,回补2本库存
		delta := req.Quantity - s.Quantity
		if delta != 0 {
			// 图书已删除的不允许调整数量(与恢复的规则一致)
			b, err := uc.bookRepo.LockByID(txCtx, s.BookID)
			if err != nil {
				return err
			}
			if b.Deleted {
				return book.ErrBookNotFound
			}

			// UpdateStock(-delta):扣减或回补,条件更新保证库存不为负
			if err := uc.bookRepo.UpdateStock(txCtx, s.BookID, -delta); err != nil {
				return err
			}
		}

		// 3. 修改数量(总价基于单价快照重算)
		if err := s.ChangeQuantity(req.Quantity); err != nil {
			return err
		}
		if err := uc.saleRepo.Update(txCtx, s); err != nil {
			return err
		}

		result = s
		return nil
	})

	if err != nil {
		return nil, err
	}

	publishSaleEvent(ctx, uc.publisher, "sale.updated", result)
	return toSaleInfo(result), nil
}

// DeleteSaleUseCase 删除销售记录用例(软删除)
// 删除表示该笔销售作废,对应数量回补到图书库存
// 本人可删除自己的记录,管理员可删除任意记录
type DeleteSaleUseCase struct {
	saleRepo  sale.Repository
	bookRepo  book.Repository
	txManager TxManager
	publisher EventPublisher
}

// NewDeleteSaleUseCase 创建删除销售用例
func NewDeleteSaleUseCase(
	saleRepo sale.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	publisher EventPublisher,
) *DeleteSaleUseCase {
	return &DeleteSaleUseCase{
		saleRepo:  saleRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		publisher: publisher,
	}
}

// Execute 执行删除销售记录
func (uc *DeleteSaleUseCase) Execute(ctx context.Context, actor Actor, saleID uint) error {
	var result *sale.Sale
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		s, err := uc.saleRepo.LockByID(txCtx, saleID)
		if err != nil {
			return err
		}
		if !actor.canMutate(s) {
			return sale.ErrSaleNotFound
		}
		if s.Deleted {
			return sale.ErrSaleAlreadyDeleted
		}

		s.MarkDeleted()
		if err := uc.saleRepo.Update(txCtx, s); err != nil {
			return err
		}

		// 回补库存
		if err := uc.bookRepo.UpdateStock(txCtx, s.BookID, s.Quantity); err != nil {
			return err
		}

		result = s
		return nil
	})

	if err != nil {
		return err
	}

	publishSaleEvent(ctx, uc.publisher, "sale.deleted", result)
	return nil
}

// RestoreSaleUseCase 恢复销售记录用例
// 业务规则:
// 1. 本人可恢复自己的记录,管理员可恢复任意记录
// 2. 只有已删除的记录可以恢复
// 3. 恢复需要重新扣减库存,库存不足时恢复失败
// 4. 图书已被删除时不允许恢复
type RestoreSaleUseCase struct {
	saleRepo  sale.Repository
	bookRepo  book.Repository
	txManager TxManager
	publisher EventPublisher
}

// NewRestoreSaleUseCase 创建恢复销售用例
func NewRestoreSaleUseCase(
	saleRepo sale.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	publisher EventPublisher,
) *RestoreSaleUseCase {
	return &RestoreSaleUseCase{
		saleRepo:  saleRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		publisher: publisher,
	}
}

// Execute 执行恢复销售记录
func (uc *RestoreSaleUseCase) Execute(ctx context.Context, actor Actor, saleID uint) (*SaleInfo, error) {
	var result *sale.Sale
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		s, err := uc.saleRepo.LockByID(txCtx, saleID)
		if err != nil {
			return err
		}
		if !actor.canMutate(s) {
			return sale.ErrSaleNotFound
		}
		if !s.Deleted {
			return sale.ErrSaleNotDeleted
		}

		// 图书已删除的不允许恢复销售记录
		b, err := uc.bookRepo.LockByID(txCtx, s.BookID)
		if err != nil {
			return err
		}
		if b.Deleted {
			return book.ErrBookNotFound
		}

		// 重新扣减库存,库存不足时返回ErrInsufficientStock并回滚
		if err := uc.bookRepo.UpdateStock(txCtx, s.BookID, -s.Quantity); err != nil {
			return err
		}

		s.Restore()
		if err := uc.saleRepo.Update(txCtx, s); err != nil {
			return err
		}

		result = s
		return nil
	})

	if err != nil {
		return nil, err
	}

	publishSaleEvent(ctx, uc.publisher, "sale.restored", result)
	return toSaleInfo(result), nil
}

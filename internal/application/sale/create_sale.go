package sale

import (
	"context"
	"fmt"
	"log"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/sale"
)

// TxManager 事务管理器接口
// 设计说明:应用层只依赖接口,由mysql.TxManager实现
// 测试时可注入直通实现,无需真实数据库
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 领域事件发布接口(由pkg/mq的Publisher实现)
// 发布失败不影响业务结果,事件用于下游统计、通知等场景
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// CreateSaleUseCase 创建销售记录用例
// 这是整个系统最核心的用例:涉及事务处理、并发控制、库存扣减
//
// 核心问题:库存超卖
// 场景:图书库存10本,100个并发售出请求
// 错误实现:先SELECT库存→判断→UPDATE扣减,并发下全部通过判断,超卖90本
// 正确实现:悲观锁
//  1. SELECT FOR UPDATE 锁定图书行
//  2. 校验图书未删除、库存充足
//  3. 创建销售记录(单价取锁定时的图书价格快照)
//  4. 条件UPDATE扣减库存(stock + delta >= 0兜底)
//  5. COMMIT释放锁
type CreateSaleUseCase struct {
	saleRepo  sale.Repository
	bookRepo  book.Repository
	txManager TxManager
	publisher EventPublisher // 可选,nil表示不发布事件
}

// NewCreateSaleUseCase 创建销售用例
func NewCreateSaleUseCase(
	saleRepo sale.Repository,
	bookRepo book.Repository,
	txManager TxManager,
	publisher EventPublisher,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		saleRepo:  saleRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		publisher: publisher,
	}
}

// CreateSaleRequest 创建销售请求DTO
type CreateSaleRequest struct {
	BookID   uint // 图书ID
	UserID   uint // 操作人(从JWT中提取)
	Quantity int  // 销售数量
}

// SaleInfo 销售记录DTO
type SaleInfo struct {
	ID        uint   `json:"id"`
	BookID    uint   `json:"book_id"`
	UserID    uint   `json:"user_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"` // 成交单价快照(分)
	Total     int64  `json:"total"`      // 总价(分)
	TotalYuan string `json:"total_yuan"` // 总价(元,展示用)
	SoldAt    string `json:"sold_at"`
	Deleted   bool   `json:"deleted"`
}

// Execute 执行创建销售记录
func (uc *CreateSaleUseCase) Execute(ctx context.Context, req CreateSaleRequest) (*SaleInfo, error) {
	if req.Quantity <= 0 {
		return nil, sale.ErrInvalidQuantity
	}

	var result *sale.Sale
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 锁定图书行(悲观锁,防止并发超卖)
		b, err := uc.bookRepo.LockByID(txCtx, req.BookID)
		if err != nil {
			return err
		}

		// 已删除的图书不能再售出
		if b.Deleted {
			return book.ErrBookNotFound
		}

		// 2. 库存预检(必须在锁定后检查)
		// UpdateStock的条件更新是最终兜底,这里提前返回友好错误
		if b.Stock < req.Quantity {
			return book.ErrInsufficientStock
		}

		// 3. 创建销售记录
		// 单价取锁定时的图书价格,而非前端传递的价格(防止改价攻击)
		s, err := sale.NewSale(req.BookID, req.UserID, req.Quantity, b.Price)
		if err != nil {
			return err
		}
		if err := uc.saleRepo.Create(txCtx, s); err != nil {
			return err
		}

		// 4. 扣减库存(条件UPDATE,失败则整个事务回滚)
		if err := uc.bookRepo.UpdateStock(txCtx, req.BookID, -req.Quantity); err != nil {
			return err
		}

		result = s
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 5. 事务提交后发布领域事件(尽力而为,失败只记录日志)
	uc.publishEvent(ctx, "sale.created", result)

	return toSaleInfo(result), nil
}

// publishEvent 发布销售事件
func (uc *CreateSaleUseCase) publishEvent(ctx context.Context, routingKey string, s *sale.Sale) {
	publishSaleEvent(ctx, uc.publisher, routingKey, s)
}

// publishSaleEvent 发布销售事件的共享实现
func publishSaleEvent(ctx context.Context, publisher EventPublisher, routingKey string, s *sale.Sale) {
	if publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"sale_id":    s.ID,
		"book_id":    s.BookID,
		"user_id":    s.UserID,
		"quantity":   s.Quantity,
		"unit_price": s.UnitPrice,
		"total":      s.Total,
		"sold_at":    s.SoldAt.Unix(),
	}
	if err := publisher.Publish(ctx, routingKey, payload); err != nil {
		log.Printf("发布销售事件失败: key=%s sale_id=%d err=%v", routingKey, s.ID, err)
	}
}

// toSaleInfo 领域实体 → DTO
func toSaleInfo(s *sale.Sale) *SaleInfo {
	return &SaleInfo{
		ID:        s.ID,
		BookID:    s.BookID,
		UserID:    s.UserID,
		Quantity:  s.Quantity,
		UnitPrice: s.UnitPrice,
		Total:     s.Total,
		TotalYuan: formatPrice(s.Total),
		SoldAt:    s.SoldAt.Format("2006-01-02 15:04:05"),
		Deleted:   s.Deleted,
	}
}

// formatPrice 格式化价格(分→元)
func formatPrice(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}

package sale

import (
	"time"
)

// Sale 销售记录实体(聚合根)
// 设计说明:
// 1. UnitPrice是成交时的图书单价快照,图书后续改价不影响历史记录
// 2. Total = UnitPrice * Quantity,修改数量时基于快照单价重算
// 3. Deleted是软删除标记,删除的记录可恢复(恢复时重新扣库存)
type Sale struct {
	ID        uint
	BookID    uint      // 图书ID
	UserID    uint      // 售出操作人(记录创建者)
	Quantity  int       // 销售数量
	UnitPrice int64     // 成交单价快照(单位:分)
	Total     int64     // 总价(单位:分)
	SoldAt    time.Time // 销售时间
	Deleted   bool      // 软删除标记
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSale 创建销售记录(工厂方法)
// unitPrice取创建时刻的图书价格,总价自动计算
func NewSale(bookID, userID uint, quantity int, unitPrice int64) (*Sale, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now()
	return &Sale{
		BookID:    bookID,
		UserID:    userID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     unitPrice * int64(quantity),
		SoldAt:    now,
		Deleted:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ChangeQuantity 修改销售数量(领域行为)
// 业务规则:总价基于成交时的单价快照重算,不取图书当前价格
func (s *Sale) ChangeQuantity(newQuantity int) error {
	if newQuantity <= 0 {
		return ErrInvalidQuantity
	}
	s.Quantity = newQuantity
	s.Total = s.UnitPrice * int64(newQuantity)
	s.UpdatedAt = time.Now()
	return nil
}

// MarkDeleted 标记删除
func (s *Sale) MarkDeleted() {
	s.Deleted = true
	s.UpdatedAt = time.Now()
}

// Restore 恢复已删除的销售记录
func (s *Sale) Restore() {
	s.Deleted = false
	s.UpdatedAt = time.Now()
}

package book

import (
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,包含图书的核心属性
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. 书名作为业务唯一标识(数据库层保证唯一性)
// 4. Deleted是软删除标记:已有销售记录引用图书,不做物理删除
type Book struct {
	ID        uint
	Title     string // 书名(唯一)
	Author    string // 作者
	Category  string // 分类
	Price     int64  // 价格(单位:分,1元=100分)
	Stock     int    // 库存数量
	Deleted   bool   // 软删除标记
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBook 创建新图书(工厂方法)
// price单位为分,必须>0;stock为初始库存,必须>=0
func NewBook(title, author, category string, price int64, stock int) *Book {
	now := time.Now()
	return &Book{
		Title:     title,
		Author:    author,
		Category:  category,
		Price:     price,
		Stock:     stock,
		Deleted:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdatePrice 更新价格(领域行为)
// 业务规则:价格必须>0
func (b *Book) UpdatePrice(newPrice int64) error {
	if newPrice <= 0 {
		return ErrInvalidPrice
	}
	b.Price = newPrice
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateStock 更新库存(领域行为)
// 业务规则:库存不能为负数
func (b *Book) UpdateStock(newStock int) error {
	if newStock < 0 {
		return ErrInvalidStock
	}
	b.Stock = newStock
	b.UpdatedAt = time.Now()
	return nil
}

// DecrStock 扣减库存(用于销售记录创建)
// 业务规则:扣减后库存不能为负数
func (b *Book) DecrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.Stock < quantity {
		return ErrInsufficientStock
	}
	b.Stock -= quantity
	b.UpdatedAt = time.Now()
	return nil
}

// IncrStock 增加库存(用于销售记录删除、补货)
func (b *Book) IncrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	b.Stock += quantity
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新图书基本信息(传空字符串表示不修改)
func (b *Book) UpdateInfo(title, author, category string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if category != "" {
		b.Category = category
	}
	b.UpdatedAt = time.Now()
}

// MarkDeleted 标记删除（领域行为）
func (b *Book) MarkDeleted() {
	b.Deleted = true
	b.UpdatedAt = time.Now()
}

// Restore 恢复已删除的图书（领域行为）
func (b *Book) Restore() {
	b.Deleted = false
	b.UpdatedAt = time.Now()
}

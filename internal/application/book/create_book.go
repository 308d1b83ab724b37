package book

import (
	"context"
	"fmt"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// CreateBookUseCase 创建图书用例(仅管理员,权限由中间件保证)
type CreateBookUseCase struct {
	bookService book.Service
}

// NewCreateBookUseCase 创建图书用例
func NewCreateBookUseCase(bookService book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService}
}

// CreateBookRequest 创建图书请求DTO
type CreateBookRequest struct {
	Title    string
	Author   string
	Category string
	Price    int64 // 价格(分)
	Stock    int
}

// BookInfo 图书信息DTO
type BookInfo struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	Price     int64  `json:"price"`      // 价格(分)
	PriceYuan string `json:"price_yuan"` // 价格(元,展示用)
	Stock     int    `json:"stock"`
	Deleted   bool   `json:"deleted"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Execute 执行创建图书
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookInfo, error) {
	b, err := uc.bookService.CreateBook(ctx, req.Title, req.Author, req.Category, req.Price, req.Stock)
	if err != nil {
		return nil, err
	}
	return toBookInfo(b), nil
}

// toBookInfo 领域实体 → DTO
func toBookInfo(b *book.Book) *BookInfo {
	return &BookInfo{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Category:  b.Category,
		Price:     b.Price,
		PriceYuan: formatPrice(b.Price),
		Stock:     b.Stock,
		Deleted:   b.Deleted,
		CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: b.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// formatPrice 格式化价格(分→元)
func formatPrice(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}

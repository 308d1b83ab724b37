package book

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// GetBookUseCase 图书详情查询用例
type GetBookUseCase struct {
	bookService book.Service
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(bookService book.Service) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService}
}

// Execute 查询图书详情
// includeDeleted为true时可以查到已删除的图书(仅管理员,handler负责校验)
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint, includeDeleted bool) (*BookInfo, error) {
	b, err := uc.bookService.GetBook(ctx, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	return toBookInfo(b), nil
}

// UpdateBookUseCase 更新图书用例(仅管理员)
type UpdateBookUseCase struct {
	bookService book.Service
}

// NewUpdateBookUseCase 创建更新图书用例
func NewUpdateBookUseCase(bookService book.Service) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService}
}

// UpdateBookRequest 更新图书请求DTO
// 指针字段为nil表示不修改该字段(部分更新)
type UpdateBookRequest struct {
	ID       uint
	Title    *string
	Author   *string
	Category *string
	Price    *int64
	Stock    *int
}

// Execute 执行更新图书
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookInfo, error) {
	b, err := uc.bookService.UpdateBook(ctx, req.ID, req.Title, req.Author, req.Category, req.Price, req.Stock)
	if err != nil {
		return nil, err
	}
	return toBookInfo(b), nil
}

// DeleteBookUseCase 删除图书用例(软删除,仅管理员)
type DeleteBookUseCase struct {
	bookService book.Service
}

// NewDeleteBookUseCase 创建删除图书用例
func NewDeleteBookUseCase(bookService book.Service) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookService: bookService}
}

// Execute 执行删除图书
// 已有销售记录的图书也允许删除:记录保留快照,删除后不能再创建新销售
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	return uc.bookService.DeleteBook(ctx, id)
}

// RestoreBookUseCase 恢复图书用例(仅管理员)
type RestoreBookUseCase struct {
	bookService book.Service
}

// NewRestoreBookUseCase 创建恢复图书用例
func NewRestoreBookUseCase(bookService book.Service) *RestoreBookUseCase {
	return &RestoreBookUseCase{bookService: bookService}
}

// Execute 执行恢复图书
func (uc *RestoreBookUseCase) Execute(ctx context.Context, id uint) (*BookInfo, error) {
	b, err := uc.bookService.RestoreBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookInfo(b), nil
}

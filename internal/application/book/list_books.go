package book

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// ListBooksUseCase 图书列表查询用例
// 设计说明:
// 1. 支持分页、分类/作者过滤、书名模糊搜索
// 2. 普通用户只能看到未删除的图书,管理员可选择包含已删除的
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
	}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page           int    // 页码(从1开始)
	PageSize       int    // 每页数量
	Category       string // 分类过滤
	Author         string // 作者过滤
	Keyword        string // 书名模糊搜索
	Sort           string // 排序方式(见domain/book的Sort*常量)
	IncludeDeleted bool   // 包含已删除图书(仅管理员生效,handler负责校验)
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	List       []BookInfo `json:"list"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// Execute 执行列表查询用例
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	// 1. 参数默认值与范围限制
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20 // 默认每页20条
	}
	if req.PageSize > 100 {
		req.PageSize = 100 // 最大每页100条
	}

	// 2. 构建查询参数
	params := book.ListParams{
		Page:           req.Page,
		PageSize:       req.PageSize,
		Category:       req.Category,
		Author:         req.Author,
		Keyword:        req.Keyword,
		Sort:           req.Sort,
		IncludeDeleted: req.IncludeDeleted,
	}

	// 3. 查询
	books, total, err := uc.bookService.ListBooks(ctx, params)
	if err != nil {
		return nil, err
	}

	// 4. 转换为DTO
	list := make([]BookInfo, len(books))
	for i, b := range books {
		list[i] = *toBookInfo(b)
	}

	// 5. 计算总页数
	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &ListBooksResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}

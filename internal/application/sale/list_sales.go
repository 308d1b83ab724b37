package sale

import (
	"context"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/sale"
)

// GetSaleUseCase 销售记录详情查询用例
type GetSaleUseCase struct {
	saleRepo sale.Repository
}

// NewGetSaleUseCase 创建详情查询用例
func NewGetSaleUseCase(saleRepo sale.Repository) *GetSaleUseCase {
	return &GetSaleUseCase{saleRepo: saleRepo}
}

// Execute 查询销售记录详情
// includeDeleted为false时,已删除记录按不存在处理
func (uc *GetSaleUseCase) Execute(ctx context.Context, id uint, includeDeleted bool) (*SaleInfo, error) {
	s, err := uc.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Deleted && !includeDeleted {
		return nil, sale.ErrSaleNotFound
	}
	return toSaleInfo(s), nil
}

// ListSalesUseCase 销售记录列表查询用例
// 设计说明:
// 1. 普通用户只能查询自己创建的销售记录(handler强制设置UserID)
// 2. 管理员可以按操作人、图书、时间范围过滤,并可包含已删除记录
type ListSalesUseCase struct {
	saleRepo sale.Repository
}

// NewListSalesUseCase 创建列表查询用例
func NewListSalesUseCase(saleRepo sale.Repository) *ListSalesUseCase {
	return &ListSalesUseCase{saleRepo: saleRepo}
}

// ListSalesRequest 列表查询请求DTO
type ListSalesRequest struct {
	UserID         uint       // 按操作人过滤(0表示不过滤)
	BookID         uint       // 按图书过滤(0表示不过滤)
	From           *time.Time // 销售时间起始
	To             *time.Time // 销售时间截止
	IncludeDeleted bool       // 包含已删除记录(仅管理员生效)
	Page           int
	PageSize       int
}

// ListSalesResponse 列表查询响应DTO
type ListSalesResponse struct {
	List       []SaleInfo `json:"list"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// Execute 执行列表查询
func (uc *ListSalesUseCase) Execute(ctx context.Context, req ListSalesRequest) (*ListSalesResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	params := sale.ListParams{
		UserID:         req.UserID,
		BookID:         req.BookID,
		From:           req.From,
		To:             req.To,
		IncludeDeleted: req.IncludeDeleted,
		Page:           req.Page,
		PageSize:       req.PageSize,
	}

	sales, total, err := uc.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	list := make([]SaleInfo, len(sales))
	for i, s := range sales {
		list[i] = *toSaleInfo(s)
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &ListSalesResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}

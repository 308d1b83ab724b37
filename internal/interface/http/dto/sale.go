package dto

// CreateSaleRequest 创建销售记录请求
type CreateSaleRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,gt=0"`
}

// UpdateSaleRequest 修改销售数量请求
type UpdateSaleRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// ListSalesQuery 销售记录列表查询参数(query string)
// 时间格式:RFC3339(如2026-01-02T15:04:05Z)
type ListSalesQuery struct {
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
	UserID         uint   `form:"user_id"` // 仅管理员生效
	BookID         uint   `form:"book_id"`
	From           string `form:"from"`
	To             string `form:"to"`
	IncludeDeleted bool   `form:"include_deleted"` // 仅管理员生效
}

// SaleResponse 销售记录响应
type SaleResponse struct {
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

package dto

// CreateBookRequest 创建图书请求
// 说明：价格单位为"分"(整数),避免浮点数精度问题
type CreateBookRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	Author   string `json:"author" binding:"required,min=1,max=100"`
	Category string `json:"category" binding:"max=50"`
	Price    int64  `json:"price" binding:"required,gt=0"`
	Stock    int    `json:"stock" binding:"gte=0"`
}

// UpdateBookRequest 更新图书请求
// 指针字段为nil表示不修改该字段(部分更新)
type UpdateBookRequest struct {
	Title    *string `json:"title" binding:"omitempty,min=1,max=200"`
	Author   *string `json:"author" binding:"omitempty,min=1,max=100"`
	Category *string `json:"category" binding:"omitempty,max=50"`
	Price    *int64  `json:"price" binding:"omitempty,gt=0"`
	Stock    *int    `json:"stock" binding:"omitempty,gte=0"`
}

// ListBooksQuery 图书列表查询参数(query string)
type ListBooksQuery struct {
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
	Category       string `form:"category"`
	Author         string `form:"author"`
	Keyword        string `form:"keyword"`
	Sort           string `form:"sort" binding:"omitempty,oneof=created_desc price_asc price_desc title_asc"`
	IncludeDeleted bool   `form:"include_deleted"` // 仅管理员生效
}

// BookResponse 图书响应
type BookResponse struct {
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

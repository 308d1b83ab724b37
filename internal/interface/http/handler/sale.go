package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appsale "github.com/xiebiao/bookshop/internal/application/sale"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/response"
)

// SaleHandler 销售记录HTTP处理器
type SaleHandler struct {
	createSaleUseCase  *appsale.CreateSaleUseCase
	getSaleUseCase     *appsale.GetSaleUseCase
	updateSaleUseCase  *appsale.UpdateSaleUseCase
	deleteSaleUseCase  *appsale.DeleteSaleUseCase
	restoreSaleUseCase *appsale.RestoreSaleUseCase
	listSalesUseCase   *appsale.ListSalesUseCase
}

// NewSaleHandler 创建销售记录处理器
func NewSaleHandler(
	createSaleUseCase *appsale.CreateSaleUseCase,
	getSaleUseCase *appsale.GetSaleUseCase,
	updateSaleUseCase *appsale.UpdateSaleUseCase,
	deleteSaleUseCase *appsale.DeleteSaleUseCase,
	restoreSaleUseCase *appsale.RestoreSaleUseCase,
	listSalesUseCase *appsale.ListSalesUseCase,
) *SaleHandler {
	return &SaleHandler{
		createSaleUseCase:  createSaleUseCase,
		getSaleUseCase:     getSaleUseCase,
		updateSaleUseCase:  updateSaleUseCase,
		deleteSaleUseCase:  deleteSaleUseCase,
		restoreSaleUseCase: restoreSaleUseCase,
		listSalesUseCase:   listSalesUseCase,
	}
}

// CreateSale 创建销售记录
// @Summary      售出图书
// @Description  创建销售记录并原子扣减库存。单价取当前图书价格快照
// @Tags         销售
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateSaleRequest true "销售信息"
// @Success      200 {object} response.Response{data=dto.SaleResponse} "创建成功"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "库存不足"
// @Router       /api/v1/sales [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.createSaleUseCase.Execute(c.Request.Context(), appsale.CreateSaleRequest{
		BookID:   req.BookID,
		UserID:   middleware.MustGetUserID(c),
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toSaleResponse(result))
}

// GetSale 查询销售记录详情
// @Summary      销售记录详情
// @Description  查询销售记录详情。普通用户只能查看自己创建的记录
// @Tags         销售
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "销售记录ID"
// @Success      200 {object} response.Response{data=dto.SaleResponse} "查询成功"
// @Failure      404 {object} response.Response "记录不存在"
// @Router       /api/v1/sales/{id} [get]
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	isAdmin := middleware.IsAdmin(c)
	result, err := h.getSaleUseCase.Execute(c.Request.Context(), id, isAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 普通用户只能查看自己创建的记录
	if !isAdmin && result.UserID != middleware.GetUserID(c) {
		response.Error(c, apperrors.ErrSaleNotFound)
		return
	}

	response.Success(c, toSaleResponse(result))
}

// ListSales 销售记录列表
// @Summary      销售记录列表
// @Description  分页查询销售记录。普通用户只能看到自己创建的记录;管理员可按操作人/图书/时间过滤
// @Tags         销售
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码(默认1)"
// @Param        page_size query int false "每页数量(默认20,最大100)"
// @Param        user_id query int false "操作人过滤(仅管理员)"
// @Param        book_id query int false "图书过滤"
// @Param        from query string false "销售时间起始(RFC3339)"
// @Param        to query string false "销售时间截止(RFC3339)"
// @Param        include_deleted query bool false "包含已删除(仅管理员)"
// @Success      200 {object} response.Response{data=appsale.ListSalesResponse} "查询成功"
// @Router       /api/v1/sales [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	var query dto.ListSalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	req := appsale.ListSalesRequest{
		UserID:         query.UserID,
		BookID:         query.BookID,
		IncludeDeleted: query.IncludeDeleted,
		Page:           query.Page,
		PageSize:       query.PageSize,
	}

	// 普通用户强制只查询自己的记录,且不包含已删除的
	if !middleware.IsAdmin(c) {
		req.UserID = middleware.MustGetUserID(c)
		req.IncludeDeleted = false
	}

	// 解析时间范围
	if query.From != "" {
		t, err := time.Parse(time.RFC3339, query.From)
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "时间格式错误(需RFC3339): "+query.From)
			return
		}
		req.From = &t
	}
	if query.To != "" {
		t, err := time.Parse(time.RFC3339, query.To)
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "时间格式错误(需RFC3339): "+query.To)
			return
		}
		req.To = &t
	}

	result, err := h.listSalesUseCase.Execute(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateSale 修改销售数量
// @Summary      修改销售数量
// @Description  修改销售记录数量并同步调整库存。本人可改自己的记录,管理员可改任意记录。总价基于成交单价快照重算
// @Tags         销售
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "销售记录ID"
// @Param        request body dto.UpdateSaleRequest true "新数量"
// @Success      200 {object} response.Response{data=dto.SaleResponse} "修改成功"
// @Failure      404 {object} response.Response "记录不存在"
// @Failure      409 {object} response.Response "库存不足"
// @Router       /api/v1/sales/{id} [put]
func (h *SaleHandler) UpdateSale(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateSaleUseCase.Execute(c.Request.Context(), saleActor(c), appsale.UpdateSaleRequest{
		SaleID:   id,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toSaleResponse(result))
}

// DeleteSale 删除销售记录
// @Summary      删除销售记录
// @Description  软删除销售记录并回补库存。本人可删自己的记录,管理员可删任意记录
// @Tags         销售
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "销售记录ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      404 {object} response.Response "记录不存在"
// @Router       /api/v1/sales/{id} [delete]
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.deleteSaleUseCase.Execute(c.Request.Context(), saleActor(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// RestoreSale 恢复销售记录
// @Summary      恢复销售记录
// @Description  恢复已删除的销售记录并重新扣减库存。本人可恢复自己的记录,管理员可恢复任意记录。库存不足时恢复失败
// @Tags         销售
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "销售记录ID"
// @Success      200 {object} response.Response{data=dto.SaleResponse} "恢复成功"
// @Failure      404 {object} response.Response "记录不存在"
// @Failure      409 {object} response.Response "库存不足"
// @Router       /api/v1/sales/{id}/restore [post]
func (h *SaleHandler) RestoreSale(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.restoreSaleUseCase.Execute(c.Request.Context(), saleActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toSaleResponse(result))
}

// saleActor 从Context构建当前操作人
func saleActor(c *gin.Context) appsale.Actor {
	return appsale.Actor{
		UserID: middleware.MustGetUserID(c),
		Role:   middleware.GetRole(c),
	}
}

// toSaleResponse 应用层DTO → HTTP层DTO
func toSaleResponse(s *appsale.SaleInfo) *dto.SaleResponse {
	return &dto.SaleResponse{
		ID:        s.ID,
		BookID:    s.BookID,
		UserID:    s.UserID,
		Quantity:  s.Quantity,
		UnitPrice: s.UnitPrice,
		Total:     s.Total,
		TotalYuan: s.TotalYuan,
		SoldAt:    s.SoldAt,
		Deleted:   s.Deleted,
	}
}

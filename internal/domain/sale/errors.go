package sale

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 销售领域错误定义
var (
	// ErrSaleNotFound 销售记录不存在
	ErrSaleNotFound = apperrors.ErrSaleNotFound

	// ErrInvalidQuantity 销售数量非法(必须>0)
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "销售数量必须大于0")

	// ErrSaleAlreadyDeleted 销售记录已删除
	ErrSaleAlreadyDeleted = apperrors.New(apperrors.ErrCodeAlreadyDeleted, "销售记录已删除")

	// ErrSaleNotDeleted 销售记录未删除(恢复操作前置条件)
	ErrSaleNotDeleted = apperrors.New(apperrors.ErrCodeNotDeleted, "销售记录未被删除")
)

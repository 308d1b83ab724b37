package book

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 图书领域错误定义
// 设计说明:统一使用pkg/errors的业务错误码体系,便于接口层映射HTTP状态
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrTitleDuplicate 书名已存在
	ErrTitleDuplicate = apperrors.ErrTitleDuplicate

	// ErrInvalidPrice 价格非法(必须>0)
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")

	// ErrInvalidStock 库存非法(不能为负数)
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")

	// ErrInvalidQuantity 数量非法(必须>0)
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.ErrInsufficientStock // 别名,方便领域层引用

	// ErrBookAlreadyDeleted 图书已删除
	ErrBookAlreadyDeleted = apperrors.New(apperrors.ErrCodeAlreadyDeleted, "图书已删除")

	// ErrBookNotDeleted 图书未删除(恢复操作前置条件)
	ErrBookNotDeleted = apperrors.New(apperrors.ErrCodeNotDeleted, "图书未被删除")
)

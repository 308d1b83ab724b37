package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 识别唯一索引冲突
// 用户名与书名的唯一性都交给数据库UNIQUE索引保证,仓储层把冲突(MySQL 1062)
// 翻译成对应的业务错误
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 部分驱动版本不做错误转换,退回文本匹配
	return strings.Contains(err.Error(), "Duplicate entry")
}

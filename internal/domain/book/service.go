package book

import (
	"context"
	"strings"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Service 图书领域服务接口
// 设计说明:封装跨实体的业务规则(如书名唯一性校验),实体自身的行为放在entity上
type Service interface {
	// CreateBook 创建图书(校验书名唯一)
	CreateBook(ctx context.Context, title, author, category string, price int64, stock int) (*Book, error)

	// GetBook 查询图书详情
	// includeDeleted为false时,已删除图书按不存在处理
	GetBook(ctx context.Context, id uint, includeDeleted bool) (*Book, error)

	// UpdateBook 更新图书信息(部分更新:nil表示不修改)
	UpdateBook(ctx context.Context, id uint, title, author, category *string, price *int64, stock *int) (*Book, error)

	// DeleteBook 软删除图书
	DeleteBook(ctx context.Context, id uint) error

	// RestoreBook 恢复已删除图书
	RestoreBook(ctx context.Context, id uint) (*Book, error)

	// ListBooks 分页查询图书列表
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateBook 创建图书
// 业务规则:
// 1. 书名非空且不超过200字符
// 2. 书名全局唯一(含已删除图书,软删除不释放书名)
// 3. 价格>0,库存>=0
func (s *service) CreateBook(ctx context.Context, title, author, category string, price int64, stock int) (*Book, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 200 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "书名长度必须在1-200个字符之间")
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	// 预检书名唯一性(数据库唯一索引兜底)
	if _, err := s.repo.FindByTitle(ctx, title); err == nil {
		return nil, ErrTitleDuplicate
	} else if appErr := apperrors.GetAppError(err); appErr == nil || appErr.Code != apperrors.ErrCodeBookNotFound {
		return nil, err
	}

	b := NewBook(title, author, category, price, stock)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetBook(ctx context.Context, id uint, includeDeleted bool) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Deleted && !includeDeleted {
		return nil, ErrBookNotFound
	}
	return b, nil
}

// UpdateBook 更新图书
// 业务规则:
// 1. 已删除图书不可更新
// 2. 修改书名时需校验新书名唯一性
func (s *service) UpdateBook(ctx context.Context, id uint, title, author, category *string, price *int64, stock *int) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Deleted {
		return nil, ErrBookNotFound
	}

	if title != nil {
		newTitle := strings.TrimSpace(*title)
		if newTitle == "" || len(newTitle) > 200 {
			return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "书名长度必须在1-200个字符之间")
		}
		if newTitle != b.Title {
			if _, err := s.repo.FindByTitle(ctx, newTitle); err == nil {
				return nil, ErrTitleDuplicate
			} else if appErr := apperrors.GetAppError(err); appErr == nil || appErr.Code != apperrors.ErrCodeBookNotFound {
				return nil, err
			}
			b.Title = newTitle
		}
	}
	if author != nil {
		b.Author = *author
	}
	if category != nil {
		b.Category = *category
	}
	if price != nil {
		if err := b.UpdatePrice(*price); err != nil {
			return nil, err
		}
	}
	if stock != nil {
		if err := b.UpdateStock(*stock); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBook 软删除图书
// 注意:已有销售记录的图书也允许删除,销售记录保留历史快照不受影响
func (s *service) DeleteBook(ctx context.Context, id uint) error {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if b.Deleted {
		return ErrBookAlreadyDeleted
	}
	b.MarkDeleted()
	return s.repo.Update(ctx, b)
}

func (s *service) RestoreBook(ctx context.Context, id uint) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Deleted {
		return nil, ErrBookNotDeleted
	}
	b.Restore()
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 10
	}
	return s.repo.List(ctx, params)
}

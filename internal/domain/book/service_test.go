package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// fakeBookRepo 内存图书仓储(单元测试用)
type fakeBookRepo struct {
	books  map[uint]*Book
	nextID uint
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[uint]*Book), nextID: 1}
}

func (r *fakeBookRepo) Create(ctx context.Context, b *Book) error {
	for _, existing := range r.books {
		if existing.Title == b.Title {
			return ErrTitleDuplicate
		}
	}
	b.ID = r.nextID
	r.nextID++
	clone := *b
	r.books[b.ID] = &clone
	return nil
}

func (r *fakeBookRepo) FindByID(ctx context.Context, id uint) (*Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *fakeBookRepo) FindByTitle(ctx context.Context, title string) (*Book, error) {
	for _, b := range r.books {
		if b.Title == title {
			clone := *b
			return &clone, nil
		}
	}
	return nil, ErrBookNotFound
}

func (r *fakeBookRepo) Update(ctx context.Context, b *Book) error {
	if _, ok := r.books[b.ID]; !ok {
		return ErrBookNotFound
	}
	clone := *b
	r.books[b.ID] = &clone
	return nil
}

func (r *fakeBookRepo) List(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	var result []*Book
	for _, b := range r.books {
		if b.Deleted && !params.IncludeDeleted {
			continue
		}
		if params.Category != "" && b.Category != params.Category {
			continue
		}
		clone := *b
		result = append(result, &clone)
	}
	return result, int64(len(result)), nil
}

func (r *fakeBookRepo) LockByID(ctx context.Context, id uint) (*Book, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBookRepo) UpdateStock(ctx context.Context, id uint, delta int) error {
	b, ok := r.books[id]
	if !ok {
		return ErrBookNotFound
	}
	if b.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	b.Stock += delta
	return nil
}

func TestCreateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("正常创建", func(t *testing.T) {
		svc := NewService(newFakeBookRepo())

		b, err := svc.CreateBook(ctx, "Go程序设计语言", "Alan Donovan", "编程", 7900, 10)
		require.NoError(t, err)
		assert.NotZero(t, b.ID)
		assert.Equal(t, 10, b.Stock)
	})

	t.Run("书名重复", func(t *testing.T) {
		svc := NewService(newFakeBookRepo())

		_, err := svc.CreateBook(ctx, "同名书", "作者A", "编程", 1000, 5)
		require.NoError(t, err)

		_, err = svc.CreateBook(ctx, "同名书", "作者B", "编程", 2000, 3)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeTitleDuplicate, apperrors.GetAppError(err).Code)
	})

	t.Run("软删除不释放书名", func(t *testing.T) {
		repo := newFakeBookRepo()
		svc := NewService(repo)

		b, err := svc.CreateBook(ctx, "同名书", "作者A", "编程", 1000, 5)
		require.NoError(t, err)
		require.NoError(t, svc.DeleteBook(ctx, b.ID))

		_, err = svc.CreateBook(ctx, "同名书", "作者B", "编程", 2000, 3)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeTitleDuplicate, apperrors.GetAppError(err).Code)
	})

	t.Run("非法参数", func(t *testing.T) {
		svc := NewService(newFakeBookRepo())

		_, err := svc.CreateBook(ctx, "", "作者", "编程", 1000, 5)
		assert.Error(t, err, "空书名应被拒绝")

		_, err = svc.CreateBook(ctx, "书", "作者", "编程", 0, 5)
		assert.Error(t, err, "价格为0应被拒绝")

		_, err = svc.CreateBook(ctx, "书", "作者", "编程", 1000, -1)
		assert.Error(t, err, "负库存应被拒绝")
	})
}

func TestGetBook(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBookRepo()
	svc := NewService(repo)

	b, err := svc.CreateBook(ctx, "测试图书", "作者", "编程", 1000, 5)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBook(ctx, b.ID))

	// 普通视角:已删除图书按不存在处理
	_, err = svc.GetBook(ctx, b.ID, false)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeBookNotFound, apperrors.GetAppError(err).Code)

	// 管理员视角:可以查到
	got, err := svc.GetBook(ctx, b.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
}

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()

	strPtr := func(s string) *string { return &s }
	int64Ptr := func(v int64) *int64 { return &v }
	intPtr := func(v int) *int { return &v }

	t.Run("部分更新", func(t *testing.T) {
		svc := NewService(newFakeBookRepo())
		b, err := svc.CreateBook(ctx, "旧书名", "旧作者", "编程", 1000, 5)
		require.NoError(t, err)

		updated, err := svc.UpdateBook(ctx, b.ID, strPtr("新书名"), nil, nil, int64Ptr(2000), nil)
		require.NoError(t, err)
		assert.Equal(t, "新书名", updated.Title)
		assert.Equal(t, "旧作者", updated.Author, "未传字段不应修改")
		assert.Equal(t, int64(2000), updated.Price)
		assert.Equal(t, 5, updated.Stock)
	})

	t.Run("改书名撞重", func(t *testing.T) {
		svc := NewService(newFakeBookRepo())
		_, err := svc.CreateBook(ctx, "书A", "作者", "编程", 1000, 5)
		require.NoError(t, err)
		b2, err := svc.CreateBook(ctx, "书B", "作者", "编程", 1000, 5)
		require.NoError(t, err)

		_, err = svc.UpdateBook(ctx, b2.ID, strPtr("书A"), nil, nil, nil, nil)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeTitleDuplicate, apperrors.GetAppError(err).Code)
	})

	t.Run("已删除图书不可更新", func(t *testing.T) {
		svc := NewService(newFakeBookRepo())
		b, err := svc.CreateBook(ctx, "书A", "作者", "编程", 1000, 5)
		require.NoError(t, err)
		require.NoError(t, svc.DeleteBook(ctx, b.ID))

		_, err = svc.UpdateBook(ctx, b.ID, nil, nil, nil, nil, intPtr(10))
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeBookNotFound, apperrors.GetAppError(err).Code)
	})
}

func TestDeleteAndRestoreBook(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeBookRepo())

	b, err := svc.CreateBook(ctx, "测试图书", "作者", "编程", 1000, 5)
	require.NoError(t, err)

	// 未删除不能恢复
	_, err = svc.RestoreBook(ctx, b.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotDeleted, apperrors.GetAppError(err).Code)

	require.NoError(t, svc.DeleteBook(ctx, b.ID))

	// 重复删除报错
	err = svc.DeleteBook(ctx, b.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAlreadyDeleted, apperrors.GetAppError(err).Code)

	restored, err := svc.RestoreBook(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, restored.Deleted)
	assert.Equal(t, 5, restored.Stock, "恢复后库存保持删除前的值")
}

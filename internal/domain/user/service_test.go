package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// fakeUserRepo 内存用户仓储(单元测试用,不依赖数据库)
type fakeUserRepo struct {
	users  map[uint]*User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*User), nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *User) error {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return apperrors.ErrUsernameDuplicate
		}
	}
	u.ID = r.nextID
	r.nextID++
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, u *User) error {
	if _, ok := r.users[u.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) HasAdmin(ctx context.Context) (bool, error) {
	for _, u := range r.users {
		if u.Role == RoleAdmin && !u.Deleted {
			return true, nil
		}
	}
	return false, nil
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("正常注册", func(t *testing.T) {
		svc := NewService(newFakeUserRepo())

		u, err := svc.Register(ctx, "alice", "Passw0rd123")
		require.NoError(t, err)
		assert.NotZero(t, u.ID)
		assert.Equal(t, "alice", u.Username)
		assert.Equal(t, RoleRegular, u.Role)
		assert.False(t, u.Deleted)

		// 密码必须是bcrypt密文,不能是明文
		assert.NotEqual(t, "Passw0rd123", u.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("Passw0rd123")))
	})

	t.Run("用户名重复", func(t *testing.T) {
		svc := NewService(newFakeUserRepo())

		_, err := svc.Register(ctx, "alice", "Passw0rd123")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "alice", "Passw0rd456")
		require.Error(t, err)
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrCodeUsernameDuplicate, appErr.Code)
	})

	t.Run("用户名过短", func(t *testing.T) {
		svc := NewService(newFakeUserRepo())

		_, err := svc.Register(ctx, "ab", "Passw0rd123")
		require.Error(t, err)
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, appErr.Code)
	})

	t.Run("密码强度不足", func(t *testing.T) {
		svc := NewService(newFakeUserRepo())

		// 纯数字、纯字母、过短都应拒绝
		for _, weak := range []string{"12345678", "abcdefgh", "a1"} {
			_, err := svc.Register(ctx, "bob", weak)
			require.Error(t, err, "弱密码应被拒绝: %s", weak)
			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperrors.ErrCodeWeakPassword, appErr.Code)
		}
	})
}

func TestCreateAdmin(t *testing.T) {
	svc := NewService(newFakeUserRepo())

	u, err := svc.CreateAdmin(context.Background(), "root2", "Admin12345")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)
	assert.True(t, u.IsAdmin())
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (Service, *fakeUserRepo) {
		repo := newFakeUserRepo()
		svc := NewService(repo)
		_, err := svc.Register(ctx, "alice", "Passw0rd123")
		require.NoError(t, err)
		return svc, repo
	}

	t.Run("正常登录", func(t *testing.T) {
		svc, _ := setup(t)

		u, err := svc.Login(ctx, "alice", "Passw0rd123")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
	})

	t.Run("密码错误", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.Login(ctx, "alice", "WrongPass1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("用户不存在", func(t *testing.T) {
		svc, _ := setup(t)

		// 与密码错误返回相同的错误,不泄露用户名是否存在
		_, err := svc.Login(ctx, "nobody", "Passw0rd123")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("已删除用户不能登录", func(t *testing.T) {
		svc, repo := setup(t)

		u, err := repo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		_, err = svc.Deactivate(ctx, u.ID)
		require.NoError(t, err)

		_, err = svc.Login(ctx, "alice", "Passw0rd123")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestDeactivateAndRestore(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewService(repo)

	u, err := svc.Register(ctx, "alice", "Passw0rd123")
	require.NoError(t, err)

	// 重复恢复未删除的用户应报错
	_, err = svc.Restore(ctx, u.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotDeleted, apperrors.GetAppError(err).Code)

	// 停用
	deactivated, err := svc.Deactivate(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, deactivated.Deleted)

	// 重复停用应报错
	_, err = svc.Deactivate(ctx, u.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAlreadyDeleted, apperrors.GetAppError(err).Code)

	// 恢复
	restored, err := svc.Restore(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, restored.Deleted)

	// 恢复后可以登录
	_, err = svc.Login(ctx, "alice", "Passw0rd123")
	assert.NoError(t, err)
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewService(repo)

	u, err := svc.Register(ctx, "alice", "Passw0rd123")
	require.NoError(t, err)
	require.Equal(t, RoleRegular, u.Role)

	// 提升为管理员
	promoted, err := svc.SetRole(ctx, u.ID, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, promoted.Role)
	assert.True(t, promoted.IsAdmin())

	// 同角色重复设置幂等
	again, err := svc.SetRole(ctx, u.ID, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, again.Role)

	// 降级回普通用户
	demoted, err := svc.SetRole(ctx, u.ID, RoleRegular)
	require.NoError(t, err)
	assert.Equal(t, RoleRegular, demoted.Role)

	// 非法角色值
	_, err = svc.SetRole(ctx, u.ID, Role(9))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidParams, apperrors.GetAppError(err).Code)

	// 用户不存在
	_, err = svc.SetRole(ctx, 999, RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.GetAppError(err).Code)

	// 已删除用户不可变更角色
	_, err = svc.Deactivate(ctx, u.ID)
	require.NoError(t, err)
	_, err = svc.SetRole(ctx, u.ID, RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAlreadyDeleted, apperrors.GetAppError(err).Code)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeUserRepo())

	u, err := svc.Register(ctx, "alice", "Passw0rd123")
	require.NoError(t, err)

	// 新密码也要过强度校验
	_, err = svc.ChangePassword(ctx, u.ID, "short")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeWeakPassword, apperrors.GetAppError(err).Code)

	_, err = svc.ChangePassword(ctx, u.ID, "NewPass456")
	require.NoError(t, err)

	// 旧密码失效,新密码生效
	_, err = svc.Login(ctx, "alice", "Passw0rd123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice", "NewPass456")
	assert.NoError(t, err)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("首次启动创建管理员", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewService(repo)

		require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin", "changeme"))

		exists, err := repo.HasAdmin(ctx)
		require.NoError(t, err)
		assert.True(t, exists)

		// 默认管理员可以正常登录
		u, err := svc.Login(ctx, "admin", "changeme")
		require.NoError(t, err)
		assert.True(t, u.IsAdmin())
	})

	t.Run("重启幂等", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewService(repo)

		require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin", "changeme"))
		// 第二次不会重复创建也不会报错
		require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin", "changeme"))
		assert.Len(t, repo.users, 1)
	})

	t.Run("已有其他管理员时跳过", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewService(repo)

		_, err := svc.CreateAdmin(ctx, "superuser", "Admin12345")
		require.NoError(t, err)

		require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin", "changeme"))

		// 不应创建名为admin的账号
		_, err = repo.FindByUsername(ctx, "admin")
		assert.Error(t, err)
	})
}

package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 6. 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&SaleModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. 软删除使用显式的deleted标记而非gorm.DeletedAt:
//    已删除用户需要支持按用户名查询和恢复,GORM的DeletedAt会在
//    所有查询中自动过滤,反而增加Unscoped的使用负担
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"uniqueIndex;size:50;not null;comment:用户名"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Role      int       `gorm:"type:tinyint;default:1;not null;comment:角色(1普通2管理员)"`
	Deleted   bool      `gorm:"index;default:false;not null;comment:软删除标记"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. 书名有唯一索引,防止重复
// 3. 添加复合索引优化列表查询性能
type BookModel struct {
	ID        uint      `gorm:"primaryKey"`
	Title     string    `gorm:"uniqueIndex;size:200;not null;comment:书名"`
	Author    string    `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Category  string    `gorm:"index:idx_search;size:50;comment:分类"`
	Price     int64     `gorm:"not null;comment:价格(分)"`
	Stock     int       `gorm:"default:0;not null;comment:库存数量"`
	Deleted   bool      `gorm:"index;default:false;not null;comment:软删除标记"`
	CreatedAt time.Time `gorm:"index:idx_list;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// SaleModel GORM销售记录模型
// 设计说明:
// 1. 记录成交时的单价快照(UnitPrice字段),图书改价不影响历史记录
// 2. BookID/UserID有索引,支持按图书、按操作人查询
// 3. SoldAt有索引,支持按时间范围查询
type SaleModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"index;not null;comment:图书ID"`
	UserID    uint      `gorm:"index;not null;comment:操作人用户ID"`
	Quantity  int       `gorm:"not null;comment:销售数量"`
	UnitPrice int64     `gorm:"not null;comment:成交单价快照(分)"`
	Total     int64     `gorm:"not null;comment:总价(分)"`
	SoldAt    time.Time `gorm:"index;not null;comment:销售时间"`
	Deleted   bool      `gorm:"index;default:false;not null;comment:软删除标记"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (SaleModel) TableName() string {
	return "sales"
}

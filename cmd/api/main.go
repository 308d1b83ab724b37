package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	appsale "github.com/xiebiao/bookshop/internal/application/sale"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
	"github.com/xiebiao/bookshop/pkg/response"
)

// main 主程序入口
// 说明：手动依赖注入（wire.go提供Wire版本,运行wire gen可生成自动注入代码）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 3. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 初始化消息队列(可选)
	// MQ不可用不阻止服务启动,事件发布是尽力而为的
	var publisher appsale.EventPublisher
	if cfg.MQ.Enabled {
		mqPublisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			log.Printf("初始化消息队列失败(事件发布已禁用): %v", err)
		} else {
			defer mqPublisher.Close()
			publisher = mqPublisher
			fmt.Println("✓ 消息队列连接成功")
		}
	}

	// 5. 依赖注入（手动组装）
	// 依赖链: Repository ← Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	saleRepo := mysql.NewSaleRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	// 默认管理员初始化(幂等,跨重启安全)
	if err := userService.EnsureDefaultAdmin(context.Background(), cfg.Admin.Username, cfg.Admin.Password); err != nil {
		log.Fatalf("初始化默认管理员失败: %v", err)
	}

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore, cfg.JWT.RefreshTokenExpire)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore, cfg.JWT.AccessTokenExpire)
	refreshUseCase := appuser.NewRefreshTokenUseCase(jwtManager)
	createAdminUseCase := appuser.NewCreateAdminUseCase(userService)
	deactivateUseCase := appuser.NewDeactivateUserUseCase(userService, sessionStore)
	restoreUserUseCase := appuser.NewRestoreUserUseCase(userService)
	setRoleUseCase := appuser.NewSetRoleUseCase(userService, sessionStore)
	changePasswordUseCase := appuser.NewChangePasswordUseCase(userService, sessionStore, cfg.JWT.AccessTokenExpire)

	createBookUseCase := appbook.NewCreateBookUseCase(bookService)
	getBookUseCase := appbook.NewGetBookUseCase(bookService)
	updateBookUseCase := appbook.NewUpdateBookUseCase(bookService)
	deleteBookUseCase := appbook.NewDeleteBookUseCase(bookService)
	restoreBookUseCase := appbook.NewRestoreBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)

	createSaleUseCase := appsale.NewCreateSaleUseCase(saleRepo, bookRepo, txManager, publisher)
	getSaleUseCase := appsale.NewGetSaleUseCase(saleRepo)
	updateSaleUseCase := appsale.NewUpdateSaleUseCase(saleRepo, bookRepo, txManager, publisher)
	deleteSaleUseCase := appsale.NewDeleteSaleUseCase(saleRepo, bookRepo, txManager, publisher)
	restoreSaleUseCase := appsale.NewRestoreSaleUseCase(saleRepo, bookRepo, txManager, publisher)
	listSalesUseCase := appsale.NewListSalesUseCase(saleRepo)

	// 接口层
	userHandler := handler.NewUserHandler(
		registerUseCase, loginUseCase, logoutUseCase, refreshUseCase,
		createAdminUseCase, deactivateUseCase, restoreUserUseCase, setRoleUseCase, changePasswordUseCase,
	)
	bookHandler := handler.NewBookHandler(
		createBookUseCase, getBookUseCase, updateBookUseCase,
		deleteBookUseCase, restoreBookUseCase, listBooksUseCase,
	)
	saleHandler := handler.NewSaleHandler(
		createSaleUseCase, getSaleUseCase, updateSaleUseCase,
		deleteSaleUseCase, restoreSaleUseCase, listSalesUseCase,
	)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 6. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// Prometheus指标采集
	metricsRegistry := metrics.NewRegistry()
	r.Use(metricsRegistry.GinMiddleware())
	r.GET("/metrics", gin.WrapH(metricsRegistry.Handler()))

	// 7. 注册路由
	registerRoutes(r, userHandler, bookHandler, saleHandler, authMiddleware)

	// 8. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   指标采集: http://localhost%s/metrics\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	saleHandler *handler.SaleHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Swagger文档(生产环境建议禁用或加访问控制)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 认证模块(公开接口)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
			auth.POST("/refresh", userHandler.Refresh)
			auth.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 用户模块(需要登录)
		users := v1.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.DELETE("/me", userHandler.DeactivateMe)
			users.PUT("/:id/password", userHandler.ChangePassword) // 管理员可改任意用户,普通用户只能改自己

			// 管理员接口
			admin := users.Group("")
			admin.Use(authMiddleware.RequireAdmin())
			{
				admin.POST("/admin", userHandler.CreateAdmin)
				admin.POST("/:id/restore", userHandler.RestoreUser)
				admin.PUT("/:id/role", userHandler.SetRole)
			}

			// 停用用户:管理员可停用任意用户,普通用户停用自己(用例内部校验)
			users.DELETE("/:id", userHandler.DeactivateUser)
		}

		// 图书模块(需要登录)
		books := v1.Group("/books")
		books.Use(authMiddleware.RequireAuth())
		{
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)

			// 写操作仅管理员
			adminBooks := books.Group("")
			adminBooks.Use(authMiddleware.RequireAdmin())
			{
				adminBooks.POST("", bookHandler.CreateBook)
				adminBooks.PUT("/:id", bookHandler.UpdateBook)
				adminBooks.DELETE("/:id", bookHandler.DeleteBook)
				adminBooks.POST("/:id/restore", bookHandler.RestoreBook)
			}
		}

		// 销售模块(需要登录)
		sales := v1.Group("/sales")
		sales.Use(authMiddleware.RequireAuth())
		{
			sales.POST("", saleHandler.CreateSale) // 所有登录用户都可以售出
			sales.GET("", saleHandler.ListSales)
			sales.GET("/:id", saleHandler.GetSale)

			// 修改/删除/恢复:本人或管理员(归属校验在用例内)
			sales.PUT("/:id", saleHandler.UpdateSale)
			sales.DELETE("/:id", saleHandler.DeleteSale)
			sales.POST("/:id/restore", saleHandler.RestoreSale)
		}
	}
}

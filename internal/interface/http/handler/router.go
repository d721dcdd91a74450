package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/library/docs"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/response"
)

// Handlers 路由依赖
type Handlers struct {
	Book   *BookHandler
	Cart   *CartHandler
	Borrow *BorrowHandler
	Auth   *AuthHandler
}

// RouterOptions 路由选项
type RouterOptions struct {
	ServiceName string
	EnableDocs  bool
}

// NewRouter 注册全部路由
func NewRouter(h Handlers, auth *middleware.AuthMiddleware, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Tracing(opts.ServiceName))
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.EnableDocs {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	{
		books := v1.Group("/books")
		books.GET("", h.Book.ListBooks)
		books.GET("/:id/availability", h.Book.GetAvailability)

		authorized := v1.Group("")
		authorized.Use(auth.RequireAuth())

		authorized.POST("/auth/logout", h.Auth.Logout)

		cart := authorized.Group("/cart")
		{
			cart.GET("", h.Cart.GetCart)
			cart.DELETE("", h.Cart.ClearCart)
			cart.POST("/items", h.Cart.AddItem)
			cart.PUT("/items/:book_id", h.Cart.UpdateItem)
			cart.DELETE("/items/:book_id", h.Cart.RemoveItem)
		}

		borrows := authorized.Group("/borrows")
		{
			borrows.POST("", h.Borrow.Checkout)
			borrows.GET("", h.Borrow.ListTickets)
			borrows.GET("/:id", h.Borrow.GetTicket)
			borrows.POST("/:id/cancel", h.Borrow.CancelTicket)
		}

		desk := authorized.Group("/desk/borrows")
		desk.Use(middleware.RequireRole(jwt.RoleLibrarian))
		{
			desk.GET("/lookup", h.Borrow.LookupTicket)
			desk.POST("/:id/confirm", h.Borrow.ConfirmPickup)
			desk.POST("/:id/return", h.Borrow.ReturnBooks)
		}
	}

	return r
}

package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/library/internal/application/cart"
	"github.com/xiebiao/library/internal/domain/cart"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// CartService 借书车用例(appcart.CartUseCase实现)
type CartService interface {
	AddItem(ctx context.Context, userID, bookID uint, quantity int) (*appcart.AddItemResponse, error)
	UpdateQuantity(ctx context.Context, userID, bookID uint, quantity int) (*cart.Snapshot, error)
	RemoveItem(ctx context.Context, userID, bookID uint) (*cart.Snapshot, error)
	Clear(ctx context.Context, userID uint) error
	Get(ctx context.Context, userID uint) (*cart.Snapshot, error)
}

// CartHandler 借书车HTTP处理器
type CartHandler struct {
	cart CartService
}

// NewCartHandler 创建借书车处理器
func NewCartHandler(cart CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// GetCart 查看借书车
// @Summary      查看借书车
// @Tags         借书车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=cart.Snapshot}
// @Router       /api/v1/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	snap, err := h.cart.Get(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snap)
}

// AddItem 加入借书车
// @Summary      加入借书车
// @Description  同一书目重复加入时累加数量;不检查可借数量,只返回提示
// @Tags         借书车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "书目和数量"
// @Success      201 {object} response.Response{data=appcart.AddItemResponse}
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.cart.AddItem(c.Request.Context(), middleware.MustGetUserID(c), req.BookID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateItem 修改数量
// @Summary      修改借书车数量
// @Tags         借书车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path int                       true "书目ID"
// @Param        request body dto.UpdateCartItemRequest true "数量,0表示删除"
// @Success      200 {object} response.Response{data=cart.Snapshot}
// @Failure      200 {object} response.Response "40405 借书车条目不存在"
// @Router       /api/v1/cart/items/{book_id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	bookID, err := uintParam(c, "book_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	snap, err := h.cart.UpdateQuantity(c.Request.Context(), middleware.MustGetUserID(c), bookID, *req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snap)
}

// RemoveItem 删除条目
// @Summary      删除借书车条目
// @Tags         借书车
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path int true "书目ID"
// @Success      200 {object} response.Response{data=cart.Snapshot}
// @Router       /api/v1/cart/items/{book_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	bookID, err := uintParam(c, "book_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	snap, err := h.cart.RemoveItem(c.Request.Context(), middleware.MustGetUserID(c), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snap)
}

// ClearCart 清空借书车
// @Summary      清空借书车
// @Tags         借书车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context(), middleware.MustGetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	appborrow "github.com/xiebiao/library/internal/application/borrow"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// CheckoutService 结算用例
type CheckoutService interface {
	Execute(ctx context.Context, req appborrow.CheckoutRequest) (*appborrow.CheckoutResponse, error)
}

// TicketService 借阅单状态流转用例
type TicketService interface {
	Confirm(ctx context.Context, ticketID uint) (*appborrow.TicketDTO, error)
	Return(ctx context.Context, ticketID uint) (*appborrow.TicketDTO, error)
	Cancel(ctx context.Context, userID, ticketID uint) (*appborrow.TicketDTO, error)
}

// TicketQuery 借阅单查询用例
type TicketQuery interface {
	Get(ctx context.Context, userID, ticketID uint) (*appborrow.TicketDTO, error)
	GetByNumber(ctx context.Context, ticketNo string) (*appborrow.TicketDTO, error)
	List(ctx context.Context, userID uint, page, pageSize int) ([]*appborrow.TicketDTO, int64, error)
}

// BorrowHandler 借阅HTTP处理器(读者端和服务台)
type BorrowHandler struct {
	checkout CheckoutService
	tickets  TicketService
	query    TicketQuery
	cart     CartService
}

// NewBorrowHandler 创建借阅处理器
func NewBorrowHandler(checkout CheckoutService, tickets TicketService, query TicketQuery, cart CartService) *BorrowHandler {
	return &BorrowHandler{
		checkout: checkout,
		tickets:  tickets,
		query:    query,
		cart:     cart,
	}
}

// Checkout 结算借书车
// @Summary      结算
// @Description  一次性为每本书预约副本并生成借阅单;任何一本不足则整体失败,data为缺口列表
// @Description  items为空时结算整个借书车
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CheckoutRequest true "结算明细"
// @Success      201 {object} response.Response{data=appborrow.CheckoutResponse}
// @Failure      200 {object} response.Response "40001 可借副本不足,data为缺口列表"
// @Failure      200 {object} response.Response "40010 并发冲突,可重试"
// @Router       /api/v1/borrows [post]
func (h *BorrowHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	ctx := c.Request.Context()
	userID := middleware.MustGetUserID(c)

	items := make([]appborrow.CheckoutItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, appborrow.CheckoutItem{BookID: it.BookID, Quantity: it.Quantity})
	}
	if len(items) == 0 {
		snap, err := h.cart.Get(ctx, userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		for _, it := range snap.Items {
			items = append(items, appborrow.CheckoutItem{BookID: it.BookID, Quantity: it.Quantity})
		}
	}

	result, err := h.checkout.Execute(ctx, appborrow.CheckoutRequest{UserID: userID, Items: items})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListTickets 我的借阅单
// @Summary      我的借阅单
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/borrows [get]
func (h *BorrowHandler) ListTickets(c *gin.Context) {
	var req dto.ListTicketsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	page, pageSize := pageOrDefault(req.Page, req.PageSize)

	list, total, err := h.query.List(c.Request.Context(), middleware.MustGetUserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, list, total, page, pageSize)
}

// GetTicket 借阅单详情
// @Summary      借阅单详情
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅单ID"
// @Success      200 {object} response.Response{data=appborrow.TicketDTO}
// @Failure      200 {object} response.Response "40403 借阅单不存在"
// @Router       /api/v1/borrows/{id} [get]
func (h *BorrowHandler) GetTicket(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	t, err := h.query.Get(c.Request.Context(), middleware.MustGetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, t)
}

// CancelTicket 取消待取书的借阅单
// @Summary      取消借阅
// @Description  仅PENDING可取消,副本回到可借
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅单ID"
// @Success      200 {object} response.Response{data=appborrow.TicketDTO}
// @Failure      200 {object} response.Response "40002 借阅单状态非法"
// @Router       /api/v1/borrows/{id}/cancel [post]
func (h *BorrowHandler) CancelTicket(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	t, err := h.tickets.Cancel(c.Request.Context(), middleware.MustGetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, t)
}

// =========================================
// 服务台(馆员)
// =========================================

// LookupTicket 按单号查询
// @Summary      服务台按单号查询
// @Tags         服务台
// @Produce      json
// @Security     BearerAuth
// @Param        ticket_no query string true "借阅单号(BRW-000123)或纯数字ID"
// @Success      200 {object} response.Response{data=appborrow.TicketDTO}
// @Router       /api/v1/desk/borrows/lookup [get]
func (h *BorrowHandler) LookupTicket(c *gin.Context) {
	var req dto.LookupTicketRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	t, err := h.query.GetByNumber(c.Request.Context(), req.TicketNo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, t)
}

// ConfirmPickup 读者到馆取书
// @Summary      确认取书
// @Description  PENDING→ACTIVE,副本RESERVED→BORROWED,应还日期从取书日起算
// @Tags         服务台
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅单ID"
// @Success      200 {object} response.Response{data=appborrow.TicketDTO}
// @Router       /api/v1/desk/borrows/{id}/confirm [post]
func (h *BorrowHandler) ConfirmPickup(c *gin.Context) {
	h.deskTransition(c, h.tickets.Confirm)
}

// ReturnBooks 归还
// @Summary      归还
// @Description  ACTIVE→RETURNED,副本BORROWED→AVAILABLE
// @Tags         服务台
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅单ID"
// @Success      200 {object} response.Response{data=appborrow.TicketDTO}
// @Router       /api/v1/desk/borrows/{id}/return [post]
func (h *BorrowHandler) ReturnBooks(c *gin.Context) {
	h.deskTransition(c, h.tickets.Return)
}

func (h *BorrowHandler) deskTransition(c *gin.Context, fn func(context.Context, uint) (*appborrow.TicketDTO, error)) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	t, err := fn(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, t)
}

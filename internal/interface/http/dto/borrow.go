package dto

// CheckoutRequest 结算请求
// Items为空时结算整个借书车
type CheckoutRequest struct {
	Items []CheckoutItemRequest `json:"items" binding:"omitempty,dive"`
}

// CheckoutItemRequest 结算明细
type CheckoutItemRequest struct {
	BookID   uint `json:"book_id" binding:"required" example:"1"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=99" example:"1"`
}

// ListTicketsRequest 借阅单列表查询参数
type ListTicketsRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// LookupTicketRequest 服务台按单号查询
type LookupTicketRequest struct {
	TicketNo string `form:"ticket_no" binding:"required,max=32" example:"BRW-000123"`
}

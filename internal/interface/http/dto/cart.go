package dto

// AddCartItemRequest 加入借书车
// 数量可以超过当前可借数,结算时才校验
type AddCartItemRequest struct {
	BookID   uint `json:"book_id" binding:"required" example:"1"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=99" example:"1"`
}

// UpdateCartItemRequest 修改数量,0表示删除该条目
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=99" example:"2"`
}

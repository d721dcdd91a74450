package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书HTTP处理器(公开接口)
type BookHandler struct {
	list         *appbook.ListBooksUseCase
	availability *appbook.GetAvailabilityUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(list *appbook.ListBooksUseCase, availability *appbook.GetAvailabilityUseCase) *BookHandler {
	return &BookHandler{list: list, availability: availability}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询书目,附带当前可借副本数
// @Tags         图书
// @Produce      json
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页数量"
// @Param        keyword   query string false "标题/作者/出版社"
// @Param        sort_by   query string false "title_asc | created_at_desc"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	page, err := h.list.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// GetAvailability 单个书目的馆藏状态
// @Summary      馆藏状态
// @Tags         图书
// @Produce      json
// @Param        id path int true "书目ID"
// @Success      200 {object} response.Response{data=appbook.AvailabilityResponse}
// @Failure      200 {object} response.Response "40402 图书不存在"
// @Router       /api/v1/books/{id}/availability [get]
func (h *BookHandler) GetAvailability(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.availability.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bindError 参数绑定失败
func bindError(err error) error {
	return apperrors.New(apperrors.ErrCodeBindError, "参数错误: "+err.Error())
}

// uintParam 解析路径中的正整数ID
func uintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, apperrors.New(apperrors.ErrCodeInvalidParams, "非法的"+name)
	}
	return uint(v), nil
}

func pageOrDefault(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}

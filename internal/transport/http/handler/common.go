package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"rewear-api/internal/swap"
	resp "rewear-api/internal/transport/http/response"
)

// bindJSON 绑定并做字段校验，失败直接写 400（带字段错误列表）
func bindJSON(c *gin.Context, in any) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Invalid("Validation error", fieldErrors(err)))
		return false
	}
	return true
}

func fieldErrors(err error) []resp.FieldError {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []resp.FieldError{{"body": err.Error()}}
	}
	out := make([]resp.FieldError, 0, len(ves))
	for _, fe := range ves {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		msg := "failed on '" + fe.Tag() + "'"
		if fe.Param() != "" {
			msg += " (" + fe.Param() + ")"
		}
		out = append(out, resp.FieldError{field: msg})
	}
	return out
}

func pageParams(c *gin.Context, defLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.Query("limit"))
	if limit < 1 || limit > 100 {
		limit = defLimit
	}
	return page, limit, (page - 1) * limit
}

// writeWorkflowErr 把工作流错误按自带状态码落到响应壳
func writeWorkflowErr(c *gin.Context, err error) {
	var we *swap.Error
	if errors.As(err, &we) {
		c.JSON(we.Status, resp.Fail(we.Msg))
		return
	}
	c.JSON(http.StatusInternalServerError, resp.Fail("Server error"))
}

func userID(c *gin.Context) string { return c.GetString("userId") }

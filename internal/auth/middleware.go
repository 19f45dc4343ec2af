package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextUserID    = "user_id"
	ContextCompanyID = "company_id"
	ContextUserName  = "user_name"
)

// CompanyLookup 根据用户 ID 查找所属公司
type CompanyLookup interface {
	LookupByUserID(ctx context.Context, userID string) (string, error)
}

// BearerToken 从 Authorization 头中提取 Token
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Middleware JWT 认证中间件
// Token 中没有公司时通过 lookup 查找,结果按 cache 缓存(cache 可为 nil)
func Middleware(validator *TokenValidator, lookup CompanyLookup, cache *MembershipCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, "missing authorization header", "")
			return
		}

		token, ok := BearerToken(header)
		if !ok {
			abort(c, http.StatusUnauthorized, "invalid authorization format", "")
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token", err.Error())
			return
		}

		companyID, err := ResolveCompany(c.Request.Context(), claims, lookup, cache)
		if err != nil {
			abort(c, http.StatusForbidden, "user is not a member of any company", err.Error())
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextCompanyID, companyID)
		c.Set(ContextUserName, claims.Name)

		c.Next()
	}
}

// ResolveCompany 确定请求所属公司
func ResolveCompany(ctx context.Context, claims *Claims, lookup CompanyLookup, cache *MembershipCache) (string, error) {
	if claims.CompanyID != "" {
		return claims.CompanyID, nil
	}
	if cache != nil {
		if companyID, ok := cache.Get(claims.Subject); ok {
			return companyID, nil
		}
	}
	if lookup == nil {
		return "", ErrInvalidToken
	}

	companyID, err := lookup.LookupByUserID(ctx, claims.Subject)
	if err != nil {
		return "", err
	}
	if cache != nil {
		cache.Set(claims.Subject, companyID)
	}
	return companyID, nil
}

func abort(c *gin.Context, status int, message, detail string) {
	body := gin.H{
		"code":    status,
		"message": message,
	}
	if detail != "" {
		body["detail"] = detail
	}
	c.AbortWithStatusJSON(status, body)
}

package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/rahulmoradiya/haccp-both-sub000/internal/auth"
)

var upgrader = gorillaWS.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler 任务完成事件订阅
// 浏览器无法设置 Authorization 头,token 通过 query 参数传递
func Handler(hub *Hub, validator *auth.TokenValidator, lookup auth.CompanyLookup, cache *auth.MembershipCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "missing token"})
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "invalid token"})
			return
		}

		companyID, err := auth.ResolveCompany(c.Request.Context(), claims, lookup, cache)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": "user is not a member of any company"})
			return
		}

		taskID := c.Param("id")
		if taskID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "task id is required"})
			return
		}

		// Upgrade 失败时已写入响应
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := NewClient(uuid.New().String(), claims.Subject, Topic(companyID, taskID), hub, conn)

		select {
		case hub.Register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.ReadPump()
		go client.WritePump()
	}
}

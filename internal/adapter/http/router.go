package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the gin engine with every API route.
// /health is public; everything under /api/v1 needs the bearer token and X-User-ID.
func NewRouter(h *Handler, apiToken string, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))

	r.GET("/health", h.Health)

	api := r.Group("/api/v1", AuthMiddleware(apiToken), IdentityMiddleware())
	api.POST("/workspaces", h.CreateWorkspace)

	ws := api.Group("/workspaces/:workspaceID")
	{
		ws.POST("/checkpoints", h.CreateCheckpoint)
		ws.GET("/checkpoints", h.ListCheckpoints)
		ws.GET("/checkpoints/export.xlsx", h.ExportCheckpoints)
		ws.POST("/checkpoints/recalculate", h.RecalculateCheckpoints)
		ws.PATCH("/checkpoints/:id/status", h.UpdateCheckpointStatus)

		ws.POST("/transactions", h.CreateTransaction)
		ws.GET("/transactions", h.ListTransactions)
		ws.PUT("/transactions/:id", h.UpdateTransaction)
		ws.DELETE("/transactions/:id", h.DeleteTransaction)
		ws.POST("/transactions/:id/restore", h.RestoreTransaction)

		ws.POST("/accounts", h.CreateAccount)
		ws.GET("/accounts", h.ListAccounts)

		ws.GET("/summary", h.GetSummary)

		ws.GET("/members", h.ListMembers)
		ws.POST("/members", h.AddMember)
		ws.PATCH("/members/:userID", h.ChangeRole)
		ws.DELETE("/members/:userID", h.RemoveMember)
		ws.POST("/ownership", h.TransferOwnership)
	}

	return r
}

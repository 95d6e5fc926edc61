package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/hearthledger-backend/internal/domain"
	"github.com/simaogato/hearthledger-backend/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps usecase errors to a status code and a short message.
// Causes of internal failures are logged and never returned.
func writeError(c *gin.Context, log logrus.FieldLogger, funcName string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		logger.LogError(log, "http", funcName, c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

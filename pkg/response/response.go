package response

import (
	"net/http"

	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/apperr"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the unified JSON envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// HandleError maps a service error onto HTTP status + business code.
// Unexpected errors are logged server-side and reduced to a generic 500.
func HandleError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		Error(c, http.StatusBadRequest, ErrInvalidParam, err.Error())
	case apperr.KindUnauthorized:
		Error(c, http.StatusUnauthorized, ErrAuthFailed, err.Error())
	case apperr.KindForbidden:
		Error(c, http.StatusForbidden, ErrNoPermission, err.Error())
	case apperr.KindNotFound:
		Error(c, http.StatusNotFound, ErrNotFound, err.Error())
	case apperr.KindConflict:
		Error(c, http.StatusConflict, ErrConflict, err.Error())
	case apperr.KindGateway:
		Error(c, http.StatusBadGateway, ErrGatewayUpstream, err.Error())
	case apperr.KindExpiredLink:
		Error(c, http.StatusGone, ErrLinkExpired, err.Error())
	case apperr.KindBadSignature:
		Error(c, http.StatusForbidden, ErrLinkInvalid, err.Error())
	default:
		if logger.Log != nil {
			logger.Log.Error("unhandled error",
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
		}
		Error(c, http.StatusInternalServerError, ErrServerInternal, "internal server error")
	}
}

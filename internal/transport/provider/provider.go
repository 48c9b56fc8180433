package provider

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omarsel/bidworks/internal/domain/identity"
	biddingsvc "github.com/omarsel/bidworks/internal/service/bidding"
	"github.com/omarsel/bidworks/internal/transport"
)

func Register(rg *gin.RouterGroup, bidding *biddingsvc.Service, authn gin.HandlerFunc) {
	rg.GET("/me/balance", authn, transport.RequireRole(identity.RoleProvider), getBalance(bidding))
}

func getBalance(svc *biddingsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := transport.IdentityFrom(c)

		balance, err := svc.Balance(c.Request.Context(), caller.UserID)
		if err != nil {
			transport.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"balance": balance})
	}
}

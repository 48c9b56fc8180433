package task

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainbid "github.com/omarsel/bidworks/internal/domain/bid"
	"github.com/omarsel/bidworks/internal/domain/identity"
	domaintask "github.com/omarsel/bidworks/internal/domain/task"
	assignsvc "github.com/omarsel/bidworks/internal/service/assignment"
	biddingsvc "github.com/omarsel/bidworks/internal/service/bidding"
	taskssvc "github.com/omarsel/bidworks/internal/service/tasks"
	"github.com/omarsel/bidworks/internal/transport"
)

// Register wires the task routes. Reads of a single task and its bids are
// public; everything else requires an authenticated caller.
func Register(rg *gin.RouterGroup, tasks *taskssvc.Service, bidding *biddingsvc.Service, assigner *assignsvc.Service, authn gin.HandlerFunc) {
	rg.POST("", authn, transport.RequireRole(identity.RoleCustomer), createTask(tasks))
	rg.GET("", authn, listTasks(tasks))
	rg.GET("/:id", getTask(tasks))
	rg.PUT("/:id", authn, transport.RequireRole(identity.RoleCustomer), updateTask(tasks))
	rg.POST("/:id/bids", authn, transport.RequireRole(identity.RoleProvider), postBid(bidding))
	rg.GET("/:id/bids", listBids(bidding))
	rg.POST("/:id/assign", authn, transport.RequireRole(identity.RoleCustomer, identity.RoleProvider), assignTask(assigner))
}

type createTaskReq struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Address     string    `json:"address" binding:"required"`
	Category    string    `json:"category" binding:"required"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

func createTask(svc *taskssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTaskReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		id, _ := transport.IdentityFrom(c)

		t, err := svc.Create(c.Request.Context(), id.UserID, req.Title, req.Description, req.Address, req.Category, req.Deadline)
		if err != nil {
			transport.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

func listTasks(svc *taskssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters domaintask.ListFilters
		id, _ := transport.IdentityFrom(c)

		if v := c.Query("category"); v != "" {
			filters.Category = &v
		}
		if v := c.Query("address"); v != "" {
			filters.Address = &v
		}

		switch {
		case c.Query("assignedProvider") == "me":
			filters.AssignedProviderID = &id.UserID
		case c.Query("status") != "":
			s := domaintask.Status(c.Query("status"))
			filters.Status = &s
		case c.Query("userId") != "me":
			// Default view is the open marketplace.
			s := domaintask.StatusOpen
			filters.Status = &s
		}
		if c.Query("userId") == "me" {
			filters.OwnerID = &id.UserID
		}

		tasks, err := svc.List(c.Request.Context(), filters)
		if err != nil {
			transport.RespondError(c, err)
			return
		}
		if tasks == nil {
			tasks = []domaintask.WithWinningBid{}
		}
		c.JSON(http.StatusOK, tasks)
	}
}

func getTask(svc *taskssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		t, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			transport.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

type updateTaskReq struct {
	Description *string            `json:"description"`
	Status      *domaintask.Status `json:"status"`
}

func updateTask(svc *taskssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req updateTaskReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		caller, _ := transport.IdentityFrom(c)

		t, err := svc.UpdateByOwner(c.Request.Context(), id, caller.UserID, req.Description, req.Status)
		if err != nil {
			transport.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

type postBidReq struct {
	Amount int64 `json:"amount" binding:"required"`
}

func postBid(svc *biddingsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req postBidReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		caller, _ := transport.IdentityFrom(c)

		b, err := svc.Submit(c.Request.Context(), taskID, caller.UserID, req.Amount)
		if err != nil {
			transport.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, b)
	}
}

func listBids(svc *biddingsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		bids, err := svc.ListForTask(c.Request.Context(), taskID)
		if err != nil {
			transport.RespondError(c, err)
			return
		}
		if bids == nil {
			bids = []domainbid.Bid{}
		}
		c.JSON(http.StatusOK, bids)
	}
}

func assignTask(svc *assignsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		t, out, err := svc.AttemptAssign(c.Request.Context(), taskID)
		if err != nil {
			transport.RespondError(c, err)
			return
		}
		// An already-decided or not-yet-due task is not assignable; only the
		// no-bids round answers with the unchanged task.
		if out == assignsvc.OutcomeNotEligible {
			transport.RespondError(c, domaintask.ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

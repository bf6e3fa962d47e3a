package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nishantd01/sheetdesk/middleware"
	"github.com/nishantd01/sheetdesk/models"
	"github.com/nishantd01/sheetdesk/service"
)

type GroupController struct {
	groups *service.GroupService
}

func NewGroupController(groups *service.GroupService) *GroupController {
	return &GroupController{groups: groups}
}

// POST /api/create-group
func (ctl *GroupController) Create(ctx *gin.Context) {
	var req models.CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	group, err := ctl.groups.Create(ctx.Request.Context(), middleware.CallerEmail(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Group created successfully", "group": group})
}

// POST /api/combine-groups
func (ctl *GroupController) Combine(ctx *gin.Context) {
	var req models.CombineGroupsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	group, err := ctl.groups.Combine(ctx.Request.Context(), middleware.CallerEmail(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Groups combined successfully", "group": group})
}

// GET /api/fetch-groups
func (ctl *GroupController) Fetch(ctx *gin.Context) {
	groups, err := ctl.groups.Fetch(ctx.Request.Context(), middleware.CallerEmail(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "groups": groups})
}

// DELETE /api/delete-groups
func (ctl *GroupController) Delete(ctx *gin.Context) {
	var req models.DeleteGroupsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	if err := ctl.groups.Delete(ctx.Request.Context(), middleware.CallerEmail(ctx), req.GroupIDs); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Groups deleted successfully"})
}

// POST /api/add-users-to-groups
func (ctl *GroupController) AddUsers(ctx *gin.Context) {
	var req models.MembershipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	if err := ctl.groups.AddUsersToGroups(ctx.Request.Context(), middleware.CallerEmail(ctx), req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Users added to groups successfully"})
}

// POST /api/remove-users-from-groups
func (ctl *GroupController) RemoveUsers(ctx *gin.Context) {
	var req models.MembershipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err.Error())
		return
	}

	if err := ctl.groups.RemoveUsersFromGroups(ctx.Request.Context(), middleware.CallerEmail(ctx), req); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Users removed from groups successfully"})
}

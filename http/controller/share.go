package controller

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-drive-service/http/controller/dto"
	"github.com/tnqbao/gau-drive-service/provider"
	"github.com/tnqbao/gau-drive-service/utils"
)

// UpdateAccess replaces the object's shared set with the submitted one.
// Owner-only; users newly granted access get a share notification, removed
// grants are silent.
func (ctrl *Controller) UpdateAccess(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Share] user_id not found in context")
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	objectKey, ok := ctrl.requireObjectKey(c)
	if !ok {
		return
	}

	var req dto.UpdateAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "user_ids is required")
		return
	}

	sharedWith, added, err := ctrl.Objects.UpdateSharing(ctx, userID, objectKey, req.UserIDs)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrNotFound):
			utils.JSON404(c, "Object not found")
		case errors.Is(err, provider.ErrForbidden):
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Share] User %s denied access update on %s", userID, objectKey)
			utils.JSON403(c, "Forbidden: only the owner can update sharing")
		case errors.Is(err, provider.ErrInvalidShareSet):
			utils.JSON400(c, "user_ids contains unknown users")
		default:
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Share] Access update failed for %s", objectKey)
			utils.JSON500(c, "Failed to update sharing")
		}
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Share] Object %s now shared with %d users (%d newly added)", objectKey, len(sharedWith), len(added))
	utils.JSON200(c, dto.UpdateAccessResponse{
		ObjectKey:  objectKey,
		SharedWith: dto.NewUserSummaries(sharedWith),
		Notified:   len(added),
	})
}

// GetAccessRoster returns the whole user directory annotated with access
// flags for the object.
func (ctrl *Controller) GetAccessRoster(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Share] user_id not found in context")
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	objectKey, ok := ctrl.requireObjectKey(c)
	if !ok {
		return
	}

	object, users, err := ctrl.Objects.Roster(ctx, userID, objectKey)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrNotFound):
			utils.JSON404(c, "Object not found")
		case errors.Is(err, provider.ErrForbidden):
			utils.JSON403(c, "Forbidden: you don't have access to this object")
		default:
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Share] Roster lookup failed for %s", objectKey)
			utils.JSON500(c, "Failed to load access roster")
		}
		return
	}

	roster := make([]dto.RosterEntry, 0, len(users))
	for _, u := range users {
		roster = append(roster, dto.RosterEntry{
			User:      dto.NewUserSummary(u),
			IsOwner:   object.IsOwner(u.ID),
			HasAccess: object.IsSharedWith(u.ID),
		})
	}

	utils.JSON200(c, dto.RosterResponse{
		ObjectKey: objectKey,
		Roster:    roster,
	})
}

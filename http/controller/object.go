package controller

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/http/controller/dto"
	"github.com/tnqbao/gau-drive-service/provider"
	"github.com/tnqbao/gau-drive-service/utils"
	"gorm.io/datatypes"
)

func (ctrl *Controller) UploadObject(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] user_id not found in context")
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	// A request without a file payload is a caller error, checked before
	// anything else.
	fileHeader, err := c.FormFile("file")
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] Upload without file payload")
		utils.JSON400(c, "file payload is required")
		return
	}

	var metadata datatypes.JSON
	if raw := c.PostForm("metadata"); raw != "" {
		if !json.Valid([]byte(raw)) {
			utils.JSON400(c, "metadata must be valid JSON")
			return
		}
		metadata = datatypes.JSON(raw)
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to open uploaded file")
		utils.JSON500(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Object] Uploading '%s' (%d bytes) for user %s", fileHeader.Filename, fileHeader.Size, userID)

	object, err := ctrl.Objects.Upload(ctx, userID, fileHeader.Filename, fileHeader.Size, contentType, metadata, file)
	if err != nil {
		if errors.Is(err, provider.ErrStorageUnavailable) {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Blob store rejected upload of '%s'", fileHeader.Filename)
			utils.JSON500(c, "Object storage is unavailable, please retry the upload")
			return
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Upload failed for '%s'", fileHeader.Filename)
		utils.JSON500(c, "Failed to upload object")
		return
	}

	if ctrl.Infra.Telemetry.ObjectUploads != nil {
		ctrl.Infra.Telemetry.ObjectUploads.Add(ctx, 1)
	}

	utils.JSON201(c, dto.NewObjectResponse(object, userID))
}

func (ctrl *Controller) DownloadObject(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] user_id not found in context")
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	objectKey, ok := ctrl.requireObjectKey(c)
	if !ok {
		return
	}

	// The staging file bridges the blob fetch; it must be removed on every
	// exit path.
	staging, err := os.CreateTemp("", "drive-download-*")
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to create staging file")
		utils.JSON500(c, "Failed to prepare download")
		return
	}
	stagingPath := staging.Name()
	staging.Close()
	defer os.Remove(stagingPath)

	object, err := ctrl.Objects.Download(ctx, userID, objectKey, stagingPath)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrNotFound):
			utils.JSON404(c, "Object not found")
		case errors.Is(err, provider.ErrForbidden):
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] User %s denied download of %s", userID, objectKey)
			utils.JSON403(c, "Forbidden: you don't have access to this object")
		case errors.Is(err, provider.ErrStorageUnavailable):
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Blob fetch failed for %s", objectKey)
			utils.JSON500(c, "Object storage is unavailable")
		default:
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Download failed for %s", objectKey)
			utils.JSON500(c, "Failed to download object")
		}
		return
	}

	if ctrl.Infra.Telemetry.ObjectDownloads != nil {
		ctrl.Infra.Telemetry.ObjectDownloads.Add(ctx, 1)
	}

	c.FileAttachment(stagingPath, object.Name)
}

func (ctrl *Controller) ListObjects(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] user_id not found in context")
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	page := 1
	if val := c.Query("page"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			page = parsed
		}
	}

	pageSize := ctrl.Config.EnvConfig.Pagination.DefaultPageSize
	if val := c.Query("page_size"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}
	if pageSize > ctrl.Config.EnvConfig.Pagination.MaxPageSize {
		pageSize = ctrl.Config.EnvConfig.Pagination.MaxPageSize
	}

	objects, total, err := ctrl.Objects.List(ctx, userID, page, pageSize)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to list objects for user %s", userID)
		utils.JSON500(c, "Failed to list objects")
		return
	}

	response := dto.ListObjectsResponse{
		Objects:  make([]dto.ObjectResponse, 0, len(objects)),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
	for i := range objects {
		response.Objects = append(response.Objects, dto.NewObjectResponse(&objects[i], userID))
	}

	utils.JSON200(c, response)
}

func (ctrl *Controller) DeleteObject(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] user_id not found in context")
		utils.JSON401(c, "Unauthorized: user_id not found")
		return
	}

	objectKey, ok := ctrl.requireObjectKey(c)
	if !ok {
		return
	}

	if err := ctrl.Objects.Delete(ctx, userID, objectKey); err != nil {
		switch {
		case errors.Is(err, provider.ErrNotFound):
			utils.JSON404(c, "Object not found")
		case errors.Is(err, provider.ErrForbidden):
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] User %s denied delete of %s", userID, objectKey)
			utils.JSON403(c, "Forbidden: only the owner can delete an object")
		case errors.Is(err, provider.ErrStorageUnavailable):
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Blob delete failed for %s, catalog entry kept", objectKey)
			utils.JSON500(c, "Object storage is unavailable, object was not deleted")
		default:
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Delete failed for %s", objectKey)
			utils.JSON500(c, "Failed to delete object")
		}
		return
	}

	if ctrl.Infra.Telemetry.ObjectDeletes != nil {
		ctrl.Infra.Telemetry.ObjectDeletes.Add(ctx, 1)
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Object] Deleted object %s", objectKey)
	utils.JSON200(c, gin.H{
		"message":    "Object deleted successfully",
		"object_key": objectKey,
	})
}

// requireObjectKey validates the object_key path parameter before any catalog
// access. A missing or malformed key is a caller error, never a lookup.
func (ctrl *Controller) requireObjectKey(c *gin.Context) (uuid.UUID, bool) {
	keyStr := c.Param("object_key")
	if keyStr == "" {
		utils.JSON400(c, "object_key is required")
		return uuid.Nil, false
	}

	key, err := uuid.Parse(keyStr)
	if err != nil {
		utils.JSON400(c, "Invalid object_key format")
		return uuid.Nil, false
	}

	return key, true
}

package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tipl.com/officepanel/core"
	"tipl.com/officepanel/web/common"
	"tipl.com/officepanel/web/middlewares"
)

var allowedUploadTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

// UploadHandler stores a file under the employee's quota. The sequence is
// reserve, put to the object store, commit, record. Any failure after the
// put deletes the object again so the counter and the store stay in step.
func UploadHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middlewares.CurrentIdentity(c)
		ctx := c.Request.Context()

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("no file uploaded"))
			return
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		contentType, ok := allowedUploadTypes[ext]
		if !ok {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid file type: only JPG, JPEG, PNG, and PDF are allowed"))
			return
		}

		size := fileHeader.Size

		if err := env.Quota.Reserve(ctx, identity.EmployeeID, size); err != nil {
			respondQuotaError(c, err)
			return
		}

		src, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error uploading file"))
			return
		}
		defer src.Close()

		key := uuid.NewString() + ext
		if err := env.Blobs.Put(ctx, key, contentType, src); err != nil {
			env.Notifier.Error("upload to object store failed: %v", err)
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error uploading file"))
			return
		}

		if err := env.Quota.Commit(ctx, identity.EmployeeID, size); err != nil {
			// The content is already durable, so take it back out.
			if delErr := env.Blobs.Delete(ctx, key); delErr != nil {
				env.Notifier.Error("failed to remove orphaned object %s: %v", key, delErr)
			}
			respondQuotaError(c, err)
			return
		}

		file := core.UploadedFile{
			EmployeeID: identity.EmployeeID,
			FileName:   fileHeader.Filename,
			FileSize:   size,
			FileType:   contentType,
			StorageKey: key,
			FileURL:    env.Blobs.URL(key),
			UploadDate: env.Now(),
		}
		if err := env.DB.WithContext(ctx).Create(&file).Error; err != nil {
			if relErr := env.Quota.Release(ctx, identity.EmployeeID, size); relErr != nil {
				env.Notifier.Error("failed to release storage after record failure: %v", relErr)
			}
			if delErr := env.Blobs.Delete(ctx, key); delErr != nil {
				env.Notifier.Error("failed to remove orphaned object %s: %v", key, delErr)
			}
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error uploading file"))
			return
		}

		used, _ := env.Quota.Used(ctx, identity.EmployeeID)

		env.Hub.Publish("file-uploaded", gin.H{
			"employeeId": identity.EmployeeID,
			"file":       file,
		})

		c.JSON(http.StatusCreated, common.NewSuccessResponse(gin.H{
			"file":         file,
			"storageUsed":  used,
			"storageLimit": env.Quota.Limit(),
		}))
	}
}

func ListFilesHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middlewares.CurrentIdentity(c)
		ctx := c.Request.Context()

		var files []core.UploadedFile
		if err := env.DB.WithContext(ctx).
			Where("employee_id = ?", identity.EmployeeID).
			Order("upload_date DESC").
			Find(&files).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching files"))
			return
		}

		used, err := env.Quota.Used(ctx, identity.EmployeeID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching files"))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
			"files":        files,
			"storageUsed":  used,
			"storageLimit": env.Quota.Limit(),
		}))
	}
}

// DeleteFileHandler removes a file and gives its exact recorded size back
// to the quota. A failed object-store delete is logged but does not keep
// the record alive.
func DeleteFileHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middlewares.CurrentIdentity(c)
		ctx := c.Request.Context()

		var file core.UploadedFile
		err := env.DB.WithContext(ctx).
			Where("id = ? AND employee_id = ?", c.Param("id"), identity.EmployeeID).
			First(&file).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("file not found"))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error deleting file"))
			return
		}

		if err := env.Blobs.Delete(ctx, file.StorageKey); err != nil {
			env.Notifier.Error("failed to delete object %s: %v", file.StorageKey, err)
		}

		if err := env.DB.WithContext(ctx).Delete(&file).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error deleting file"))
			return
		}

		if err := env.Quota.Release(ctx, identity.EmployeeID, file.FileSize); err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error deleting file"))
			return
		}

		used, _ := env.Quota.Used(ctx, identity.EmployeeID)

		env.Hub.Publish("file-deleted", gin.H{
			"employeeId": identity.EmployeeID,
			"fileId":     file.ID,
		})

		c.JSON(http.StatusOK, common.NewMessageResponse("file deleted", gin.H{
			"storageUsed": used,
		}))
	}
}

func respondQuotaError(c *gin.Context, err error) {
	var quotaErr *core.QuotaExceededError
	if errors.As(err, &quotaErr) {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(quotaErr.Error()))
		return
	}
	if errors.Is(err, core.ErrEmployeeNotFound) {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("employee not found"))
		return
	}
	c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error uploading file"))
}

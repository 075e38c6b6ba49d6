package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhub-vn/studyhub-backend/models"
	"github.com/studyhub-vn/studyhub-backend/utils"
	"github.com/studyhub-vn/studyhub-backend/ws"
)

const maxUploadSize = 20 * 1024 * 1024 // 20MB

// POST /api/admin/files
// (multipart: name, subcategory_id, file_type?, file_language?, uploaded_file)
func UploadFile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	operator, ok := operatorUUID(c)
	if !ok {
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên tài liệu bắt buộc"})
		return
	}

	subcategoryID, err := uuid.Parse(c.PostForm("subcategory_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subcategory_id không hợp lệ"})
		return
	}
	var subcategory models.Subcategory
	if err := db.Preload("Category").First(&subcategory, "id = ?", subcategoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Môn học không tồn tại"})
		return
	}

	fileType := models.FileTypeLesson // mặc định
	if v := c.PostForm("file_type"); v != "" {
		fileType = models.FileType(v)
		if !fileType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Loại tài liệu không hợp lệ"})
			return
		}
	}
	fileLanguage := models.FileLanguageEnglish // mặc định
	if v := c.PostForm("file_language"); v != "" {
		fileLanguage = models.FileLanguage(v)
		if !fileLanguage.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ngôn ngữ tài liệu không hợp lệ"})
			return
		}
	}

	upload, err := c.FormFile("uploaded_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không có file đính kèm"})
		return
	}
	if upload.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File vượt quá 20MB"})
		return
	}

	var count int64
	db.Model(&models.File{}).Where("LOWER(name) = LOWER(?)", name).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên tài liệu đã tồn tại"})
		return
	}

	file := models.File{
		Name:          name,
		SubcategoryID: subcategory.ID,
		FileType:      fileType,
		FileLanguage:  fileLanguage,
		CreatedByID:   operator,
	}

	ext := utils.NormalizeExt(upload.Filename)
	// Đường dẫn object phụ thuộc slug, nên upload nằm trong vòng retry:
	// nếu dính race slug thì file được đẩy lại tại đường dẫn mới.
	err = utils.SaveWithUniqueSlug(db, "files", name, nil, func(slugValue string) error {
		objectPath := utils.FileObjectPath(subcategory.Category.Slug, subcategory.Slug, string(fileType), slugValue, ext)
		publicURL, uploadErr := utils.UploadToStorage(upload, objectPath)
		if uploadErr != nil {
			return uploadErr
		}
		file.Slug = slugValue
		file.UploadedFile = publicURL
		return db.Create(&file).Error
	})
	if err != nil {
		if errors.Is(err, utils.ErrSlugExhausted) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tên tài liệu đã tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo tài liệu", "details": err.Error()})
		return
	}

	ws.BroadcastCatalogChanged()
	c.JSON(http.StatusCreated, gin.H{
		"message": "Tải lên thành công",
		"file":    file,
	})
}

// GET /api/admin/files
func GetFiles(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var files []models.File
	query := db.Model(&models.File{}).Preload("Subcategory.Category")

	if subcategoryID := c.Query("subcategory_id"); subcategoryID != "" {
		query = query.Where("subcategory_id = ?", subcategoryID)
	}
	if fileType := c.Query("file_type"); fileType != "" {
		query = query.Where("file_type = ?", fileType)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	if err := query.Order("last_modified DESC, created_at DESC").Find(&files).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách tài liệu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": files})
}

// GET /api/admin/files/:id
func GetFileDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var file models.File
	if err := db.Preload("Subcategory.Category").First(&file, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}
	c.JSON(http.StatusOK, file)
}

// PUT /api/admin/files/:id
// Đổi metadata không di chuyển object đã lưu; gửi kèm file mới thì object
// được đẩy lên tại đường dẫn suy ra từ vị trí taxonomy hiện tại.
func UpdateFile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	operator, ok := operatorUUID(c)
	if !ok {
		return
	}

	var file models.File
	if err := db.First(&file, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên tài liệu không được trống"})
		return
	}

	var count int64
	db.Model(&models.File{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, file.ID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên tài liệu đã tồn tại"})
		return
	}

	if subcategoryIDStr, hasSubcategory := c.GetPostForm("subcategory_id"); hasSubcategory {
		subcategoryID, err := uuid.Parse(subcategoryIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subcategory_id không hợp lệ"})
			return
		}
		var subcategory models.Subcategory
		if err := db.First(&subcategory, "id = ?", subcategoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Môn học không tồn tại"})
			return
		}
		file.SubcategoryID = subcategory.ID
	}
	if v := c.PostForm("file_type"); v != "" {
		fileType := models.FileType(v)
		if !fileType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Loại tài liệu không hợp lệ"})
			return
		}
		file.FileType = fileType
	}
	if v := c.PostForm("file_language"); v != "" {
		fileLanguage := models.FileLanguage(v)
		if !fileLanguage.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ngôn ngữ tài liệu không hợp lệ"})
			return
		}
		file.FileLanguage = fileLanguage
	}

	file.Name = name
	now := time.Now()
	file.ModifiedByID = &operator
	file.LastModified = &now

	upload, uploadErr := c.FormFile("uploaded_file")
	if uploadErr == nil && upload.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File vượt quá 20MB"})
		return
	}

	oldURL := file.UploadedFile
	err := utils.SaveWithUniqueSlug(db, "files", name, file.ID, func(slugValue string) error {
		file.Slug = slugValue
		if uploadErr == nil {
			var subcategory models.Subcategory
			if err := db.Preload("Category").First(&subcategory, "id = ?", file.SubcategoryID).Error; err != nil {
				return err
			}
			objectPath := utils.FileObjectPath(
				subcategory.Category.Slug,
				subcategory.Slug,
				string(file.FileType),
				slugValue,
				utils.NormalizeExt(upload.Filename),
			)
			publicURL, err := utils.UploadToStorage(upload, objectPath)
			if err != nil {
				return err
			}
			file.UploadedFile = publicURL
		}
		return db.Save(&file).Error
	})
	if err != nil {
		if errors.Is(err, utils.ErrSlugExhausted) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tên tài liệu đã tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật tài liệu", "details": err.Error()})
		return
	}

	// File mới nằm ở đường dẫn khác thì dọn object cũ.
	if uploadErr == nil && oldURL != "" && oldURL != file.UploadedFile {
		if err := utils.DeleteFromStorage(oldURL); err != nil {
			log.Println("Không xóa được file cũ trên storage:", err)
		}
	}

	ws.BroadcastCatalogChanged()
	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật tài liệu thành công",
		"file":    file,
	})
}

// DELETE /api/admin/files/:id
func DeleteFile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var file models.File
	if err := db.First(&file, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}

	if err := db.Delete(&file).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa tài liệu"})
		return
	}

	if err := utils.DeleteFromStorage(file.UploadedFile); err != nil {
		log.Println("Không xóa được file trên storage:", err)
	}

	ws.BroadcastCatalogChanged()
	c.JSON(http.StatusOK, gin.H{"message": "Xóa tài liệu thành công"})
}

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

// POST /api/admin/subcategories (multipart: name, category_id, description?, cover_image?)
func CreateSubcategory(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	operator, ok := operatorUUID(c)
	if !ok {
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên môn học bắt buộc"})
		return
	}

	categoryID, err := uuid.Parse(c.PostForm("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_id không hợp lệ"})
		return
	}
	var category models.Category
	if err := db.First(&category, "id = ?", categoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phân loại không tồn tại"})
		return
	}

	var count int64
	db.Model(&models.Subcategory{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên môn học đã tồn tại"})
		return
	}

	subcategory := models.Subcategory{
		CatalogBase: models.CatalogBase{
			Name:        name,
			IsActive:    true,
			CreatedByID: operator,
		},
		CategoryID: category.ID,
	}
	if description, hasDesc := c.GetPostForm("description"); hasDesc && description != "" {
		subcategory.Description = &description
	}

	if cover, err := c.FormFile("cover_image"); err == nil {
		subcategory.ID = uuid.New()
		objectPath := utils.CoverObjectPath("subcategory", subcategory.ID.String(), utils.NormalizeExt(cover.Filename))
		publicURL, err := utils.UploadToStorage(cover, objectPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi upload ảnh bìa", "details": err.Error()})
			return
		}
		subcategory.CoverImage = &publicURL
	}

	err = utils.SaveWithUniqueSlug(db, "subcategories", name, nil, func(slugValue string) error {
		subcategory.Slug = slugValue
		return db.Create(&subcategory).Error
	})
	if err != nil {
		if errors.Is(err, utils.ErrSlugExhausted) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tên môn học đã tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo môn học"})
		return
	}

	ws.BroadcastCatalogChanged()
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Tạo môn học thành công",
		"subcategory": subcategory,
	})
}

// GET /api/admin/subcategories
func GetSubcategories(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var subcategories []models.Subcategory
	query := db.Model(&models.Subcategory{}).Preload("Category")

	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	if err := query.Order("is_active DESC, name ASC").Find(&subcategories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách môn học"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": subcategories})
}

// GET /api/admin/subcategories/:id
func GetSubcategoryDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var subcategory models.Subcategory
	if err := db.Preload("Category").Preload("Files").First(&subcategory, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy môn học"})
		return
	}
	c.JSON(http.StatusOK, subcategory)
}

// PUT /api/admin/subcategories/:id
func UpdateSubcategory(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	operator, ok := operatorUUID(c)
	if !ok {
		return
	}

	var subcategory models.Subcategory
	if err := db.First(&subcategory, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy môn học"})
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên môn học không được trống"})
		return
	}

	var count int64
	db.Model(&models.Subcategory{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, subcategory.ID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên môn học đã tồn tại"})
		return
	}

	// Cho phép chuyển môn học sang phân loại khác
	if categoryIDStr, hasCategory := c.GetPostForm("category_id"); hasCategory {
		categoryID, err := uuid.Parse(categoryIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category_id không hợp lệ"})
			return
		}
		var category models.Category
		if err := db.First(&category, "id = ?", categoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Phân loại không tồn tại"})
			return
		}
		subcategory.CategoryID = category.ID
	}

	subcategory.Name = name
	if description, hasDesc := c.GetPostForm("description"); hasDesc {
		if description == "" {
			subcategory.Description = nil
		} else {
			subcategory.Description = &description
		}
	}
	if cover, err := c.FormFile("cover_image"); err == nil {
		objectPath := utils.CoverObjectPath("subcategory", subcategory.ID.String(), utils.NormalizeExt(cover.Filename))
		publicURL, err := utils.UploadToStorage(cover, objectPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi upload ảnh bìa", "details": err.Error()})
			return
		}
		subcategory.CoverImage = &publicURL
	}

	now := time.Now()
	subcategory.ModifiedByID = &operator
	subcategory.LastModified = &now

	err := utils.SaveWithUniqueSlug(db, "subcategories", name, subcategory.ID, func(slugValue string) error {
		subcategory.Slug = slugValue
		return db.Save(&subcategory).Error
	})
	if err != nil {
		if errors.Is(err, utils.ErrSlugExhausted) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tên môn học đã tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật môn học"})
		return
	}

	ws.BroadcastCatalogChanged()
	c.JSON(http.StatusOK, gin.H{
		"message":     "Cập nhật môn học thành công",
		"subcategory": subcategory,
	})
}

// PATCH /api/admin/subcategories/:id/toggle-status
func ToggleSubcategoryStatus(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	operator, ok := operatorUUID(c)
	if !ok {
		return
	}

	var subcategory models.Subcategory
	if err := db.First(&subcategory, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy môn học"})
		return
	}

	now := time.Now()
	subcategory.IsActive = !subcategory.IsActive
	subcategory.ModifiedByID = &operator
	subcategory.LastModified = &now

	if err := db.Save(&subcategory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái môn học"})
		return
	}

	ws.BroadcastCatalogChanged()
	c.JSON(http.StatusOK, gin.H{
		"message":   "Đã đổi trạng thái thành công",
		"is_active": subcategory.IsActive,
	})
}

// DELETE /api/admin/subcategories/:id — chặn khi vẫn còn File tham chiếu.
func DeleteSubcategory(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var subcategory models.Subcategory
	if err := db.First(&subcategory, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy môn học"})
		return
	}

	var children int64
	db.Model(&models.File{}).Where("subcategory_id = ?", subcategory.ID).Count(&children)
	if children > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Không thể xóa môn học vì vẫn còn tài liệu thuộc về nó"})
		return
	}

	if err := db.Delete(&subcategory).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			c.JSON(http.StatusConflict, gin.H{"error": "Không thể xóa môn học vì vẫn còn tài liệu thuộc về nó"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa môn học"})
		return
	}

	if subcategory.CoverImage != nil {
		if err := utils.DeleteFromStorage(*subcategory.CoverImage); err != nil {
			log.Println("Không xóa được ảnh bìa trên storage:", err)
		}
	}

	ws.BroadcastCatalogChanged()
	c.JSON(http.StatusOK, gin.H{"message": "Xóa môn học thành công"})
}

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

// POST /api/admin/categories (multipart: name, description?, cover_image?)
func CreateCategory(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	operator, ok := operatorUUID(c)
	if !ok {
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên phân loại bắt buộc"})
		return
	}

	// Kiểm tra trùng tên
	var count int64
	db.Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên phân loại đã tồn tại"})
		return
	}

	category := models.Category{
		CatalogBase: models.CatalogBase{
			Name:        name,
			IsActive:    true, // mặc định
			CreatedByID: operator,
		},
	}
	if description, hasDesc := c.GetPostForm("description"); hasDesc && description != "" {
		category.Description = &description
	}

	// Cover lưu tại đường dẫn cố định theo id, nên cần id trước khi upload.
	if cover, err := c.FormFile("cover_image"); err == nil {
		category.ID = uuid.New()
		objectPath := utils.CoverObjectPath("category", category.ID.String(), utils.NormalizeExt(cover.Filename))
		publicURL, err := utils.UploadToStorage(cover, objectPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi upload ảnh bìa", "details": err.Error()})
			return
		}
		category.CoverImage = &publicURL
	}

	err := utils.SaveWithUniqueSlug(db, "categories", name, nil, func(slugValue string) error {
		category.Slug = slugValue
		return db.Create(&category).Error
	})
	if err != nil {
		if errors.Is(err, utils.ErrSlugExhausted) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tên phân loại đã tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo phân loại"})
		return
	}

	ws.BroadcastCatalogChanged()
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Tạo phân loại thành công",
		"category": category,
	})
}

// GET /api/admin/categories
func GetCategories(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var categories []models.Category
	query := db.Model(&models.Category{})

	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	if status := c.Query("status"); status != "" {
		switch status {
		case "true":
			query = query.Where("is_active = ?", true)
		case "false":
			query = query.Where("is_active = ?", false)
		}
	}

	if err := query.Order("is_active DESC, name ASC").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách phân loại"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// GET /api/admin/categories/:id
func GetCategoryDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var category models.Category
	if err := db.Preload("Subcategories").First(&category, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy phân loại"})
		return
	}
	c.JSON(http.StatusOK, category)
}

// PUT /api/admin/categories/:id
// Đổi tên thì slug được sinh lại; slug cũ không còn resolve nữa.
func UpdateCategory(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	operator, ok := operatorUUID(c)
	if !ok {
		return
	}

	var category models.Category
	if err := db.First(&category, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy phân loại"})
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên phân loại không được trống"})
		return
	}

	var count int64
	db.Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, category.ID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên phân loại đã tồn tại"})
		return
	}

	category.Name = name
	if description, hasDesc := c.GetPostForm("description"); hasDesc {
		if description == "" {
			category.Description = nil
		} else {
			category.Description = &description
		}
	}
	if cover, err := c.FormFile("cover_image"); err == nil {
		objectPath := utils.CoverObjectPath("category", category.ID.String(), utils.NormalizeExt(cover.Filename))
		publicURL, err := utils.UploadToStorage(cover, objectPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi upload ảnh bìa", "details": err.Error()})
			return
		}
		category.CoverImage = &publicURL
	}

	// Luôn đóng dấu người sửa + thời điểm sửa, không đụng vào created_by/created_at.
	now := time.Now()
	category.ModifiedByID = &operator
	category.LastModified = &now

	err := utils.SaveWithUniqueSlug(db, "categories", name, category.ID, func(slugValue string) error {
		category.Slug = slugValue
		return db.Save(&category).Error
	})
	if err != nil {
		if errors.Is(err, utils.ErrSlugExhausted) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tên phân loại đã tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật phân loại"})
		return
	}

	ws.BroadcastCatalogChanged()
	c.JSON(http.StatusOK, gin.H{
		"message":  "Cập nhật phân loại thành công",
		"category": category,
	})
}

// PATCH /api/admin/categories/:id/toggle-status
// Ẩn mềm: node biến mất khỏi trang duyệt nhưng dữ liệu và lịch sử giữ nguyên.
func ToggleCategoryStatus(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	operator, ok := operatorUUID(c)
	if !ok {
		return
	}

	var category models.Category
	if err := db.First(&category, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy phân loại"})
		return
	}

	now := time.Now()
	category.IsActive = !category.IsActive
	category.ModifiedByID = &operator
	category.LastModified = &now

	if err := db.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật trạng thái phân loại"})
		return
	}

	ws.BroadcastCatalogChanged()
	c.JSON(http.StatusOK, gin.H{
		"message":   "Đã đổi trạng thái thành công",
		"is_active": category.IsActive,
	})
}

// DELETE /api/admin/categories/:id
// Xóa thật, bị chặn khi vẫn còn Subcategory tham chiếu (protect-on-delete).
func DeleteCategory(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var category models.Category
	if err := db.First(&category, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy phân loại"})
		return
	}

	var children int64
	db.Model(&models.Subcategory{}).Where("category_id = ?", category.ID).Count(&children)
	if children > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Không thể xóa phân loại vì vẫn còn môn học thuộc về nó"})
		return
	}

	if err := db.Delete(&category).Error; err != nil {
		// Race: subcategory được tạo giữa lúc đếm và lúc xóa.
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			c.JSON(http.StatusConflict, gin.H{"error": "Không thể xóa phân loại vì vẫn còn môn học thuộc về nó"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa phân loại"})
		return
	}

	if category.CoverImage != nil {
		if err := utils.DeleteFromStorage(*category.CoverImage); err != nil {
			log.Println("Không xóa được ảnh bìa trên storage:", err)
		}
	}

	ws.BroadcastCatalogChanged()
	c.JSON(http.StatusOK, gin.H{"message": "Xóa phân loại thành công"})
}

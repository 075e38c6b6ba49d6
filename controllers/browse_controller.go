package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhub-vn/studyhub-backend/config"
	"github.com/studyhub-vn/studyhub-backend/models"
)

// fileRow dựng một dòng dữ liệu cho bảng client-side (DataTables).
// Yêu cầu file đã preload Subcategory.Category.
func fileRow(f models.File) gin.H {
	lastModified := f.CreatedAt
	if f.LastModified != nil {
		lastModified = *f.LastModified
	}
	categoryName := ""
	subcategoryName := ""
	if f.Subcategory != nil {
		subcategoryName = f.Subcategory.Name
		if f.Subcategory.Category != nil {
			categoryName = f.Subcategory.Category.Name
		}
	}
	return gin.H{
		"id":            f.ID.String(),
		"name":          f.Name,
		"category":      categoryName,
		"subcategory":   subcategoryName,
		"file_type":     f.FileType.Label(),
		"file_language": f.FileLanguage.Label(),
		"uploaded_file": f.UploadedFile,
		"last_modified": lastModified.Format("02/01/2006"),
	}
}

func notFoundPage(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", gin.H{"site": config.Site})
}

// GET /
func HomePage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"site":  config.Site,
		"title": config.Site.Name,
	})
}

// POST / — form tìm kiếm ở trang chủ chỉ redirect sang trang tìm kiếm.
func HomeSearch(c *gin.Context) {
	if strings.TrimSpace(c.PostForm("search")) != "" {
		c.Redirect(http.StatusFound, "/search/")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// GET /about/
func AboutPage(c *gin.Context) {
	c.HTML(http.StatusOK, "about.html", gin.H{
		"site":  config.Site,
		"title": "Về chúng tôi | " + config.Site.Name,
	})
}

// GET /contact/
func ContactPage(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", gin.H{
		"site":   config.Site,
		"title":  "Liên hệ | " + config.Site.Name,
		"errors": map[string][]string{},
		"values": FeedbackInput{},
	})
}

// GET /category/ — mọi Category, node đang hiện lên trước, rồi theo tên.
func CategoryListPage(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var categories []models.Category
	if err := db.Order("is_active DESC, name ASC").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách phân loại"})
		return
	}

	c.HTML(http.StatusOK, "category-list.html", gin.H{
		"site":       config.Site,
		"title":      "Phân loại | " + config.Site.Name,
		"categories": categories,
	})
}

// GET /category/:category_slug/
// Lookup theo slug không lọc is_active: node ẩn vẫn resolve khi gõ thẳng URL.
func CategoryDetailPage(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var category models.Category
	if err := db.First(&category, "slug = ?", c.Param("category_slug")).Error; err != nil {
		notFoundPage(c)
		return
	}

	var subcategories []models.Subcategory
	if err := db.Where("category_id = ?", category.ID).
		Order("is_active DESC, name ASC").
		Find(&subcategories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách môn học"})
		return
	}

	c.HTML(http.StatusOK, "category-detail.html", gin.H{
		"site":          config.Site,
		"title":         category.Name + " | " + config.Site.Name,
		"category":      category,
		"subcategories": subcategories,
	})
}

// GET /category/:category_slug/:subcategory_slug/
// Trang chi tiết môn học; Ajax trả row-data JSON cho bảng tài liệu.
func SubcategoryDetailPage(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var category models.Category
	if err := db.First(&category, "slug = ?", c.Param("category_slug")).Error; err != nil {
		if isAjaxRequest(c) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy phân loại"})
			return
		}
		notFoundPage(c)
		return
	}

	var subcategory models.Subcategory
	if err := db.Preload("Category").
		First(&subcategory, "slug = ? AND category_id = ?", c.Param("subcategory_slug"), category.ID).
		Error; err != nil {
		if isAjaxRequest(c) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy môn học"})
			return
		}
		notFoundPage(c)
		return
	}

	if isAjaxRequest(c) {
		var files []models.File
		if err := db.Preload("Subcategory.Category").
			Where("subcategory_id = ?", subcategory.ID).
			Order("last_modified DESC, created_at DESC").
			Find(&files).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách tài liệu"})
			return
		}
		rows := make([]gin.H, 0, len(files))
		for _, f := range files {
			rows = append(rows, fileRow(f))
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
		return
	}

	c.HTML(http.StatusOK, "subcategory-detail.html", gin.H{
		"site":        config.Site,
		"title":       subcategory.Name + " | " + config.Site.Name,
		"subcategory": subcategory,
	})
}

// GET /search/
// "Tìm kiếm" hiện trả toàn bộ tài liệu đã join taxonomy, sắp theo tên;
// việc lọc theo từ khóa do bảng phía client đảm nhiệm.
func SearchPage(c *gin.Context) {
	if !isAjaxRequest(c) {
		c.HTML(http.StatusOK, "search.html", gin.H{
			"site":  config.Site,
			"title": "Tìm kiếm | " + config.Site.Name,
		})
		return
	}

	db := c.MustGet("db").(*gorm.DB)

	var files []models.File
	if err := db.Preload("Subcategory.Category").
		Order("name ASC").
		Find(&files).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách tài liệu"})
		return
	}

	rows := make([]gin.H, 0, len(files))
	for _, f := range files {
		rows = append(rows, fileRow(f))
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

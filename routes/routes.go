package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhub-vn/studyhub-backend/controllers"
	"github.com/studyhub-vn/studyhub-backend/middleware"
	"github.com/studyhub-vn/studyhub-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.Use(middleware.DBMiddleware(db))

	r.GET("/health", controllers.HealthCheck)

	// ===== Trang công khai (server-rendered) =====
	r.GET("/", controllers.HomePage)
	r.POST("/", controllers.HomeSearch)
	r.GET("/about/", controllers.AboutPage)
	r.GET("/contact/", controllers.ContactPage)
	r.POST("/contact/", controllers.SubmitFeedback)
	r.GET("/search/", controllers.SearchPage)
	r.GET("/category/", controllers.CategoryListPage)
	r.GET("/category/:category_slug/", controllers.CategoryDetailPage)
	r.GET("/category/:category_slug/:subcategory_slug/", controllers.SubcategoryDetailPage)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	user := api.Group("/user")
	{
		user.Use(middleware.AuthMiddleware())
		user.GET("/profile", controllers.GetProfile)
		user.PUT("/profile", controllers.UpdateProfile)
	}

	admin := api.Group("/admin")
	{
		admin.Use(middleware.AuthMiddleware(), middleware.RequireStaff())

		// Quản lý phân loại
		admin.POST("/categories", controllers.CreateCategory)
		admin.GET("/categories", controllers.GetCategories)
		admin.GET("/categories/:id", controllers.GetCategoryDetail)
		admin.PUT("/categories/:id", controllers.UpdateCategory)
		admin.PATCH("/categories/:id/toggle-status", controllers.ToggleCategoryStatus)
		admin.DELETE("/categories/:id", controllers.DeleteCategory)

		// Quản lý môn học
		admin.POST("/subcategories", controllers.CreateSubcategory)
		admin.GET("/subcategories", controllers.GetSubcategories)
		admin.GET("/subcategories/:id", controllers.GetSubcategoryDetail)
		admin.PUT("/subcategories/:id", controllers.UpdateSubcategory)
		admin.PATCH("/subcategories/:id/toggle-status", controllers.ToggleSubcategoryStatus)
		admin.DELETE("/subcategories/:id", controllers.DeleteSubcategory)

		// Quản lý tài liệu
		admin.POST("/files", controllers.UploadFile)
		admin.GET("/files", controllers.GetFiles)
		admin.GET("/files/:id", controllers.GetFileDetail)
		admin.PUT("/files/:id", controllers.UpdateFile)
		admin.DELETE("/files/:id", controllers.DeleteFile)

		// Liên hệ từ khách: chỉ xem + điền phản hồi, không có route tạo mới
		admin.GET("/feedbacks", controllers.GetFeedbacks)
		admin.GET("/feedbacks/:id", controllers.GetFeedbackDetail)
		admin.PATCH("/feedbacks/:id", controllers.ModerateFeedback)
	}

	r.GET("/ws/catalog", ws.HandleCatalogWebSocket)

	return r
}

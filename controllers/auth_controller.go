package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/studyhub-vn/studyhub-backend/models"
	"github.com/studyhub-vn/studyhub-backend/utils"
)

// ====== INPUT STRUCTS ======
type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ====== HANDLERS ======

// Register tạo User và Profile trong cùng một transaction:
// hoặc cả hai cùng được tạo, hoặc không tạo gì cả.
func Register(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Check username/email tồn tại
	var count int64
	db.Model(&models.User{}).
		Where("username = ? OR email = ?", input.Username, input.Email).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên đăng nhập hoặc email đã được sử dụng"})
		return
	}

	// Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể mã hoá mật khẩu"})
		return
	}

	newUser := models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashed),
		IsActive: true,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		profile := models.Profile{
			UserID:   newUser.ID,
			FullName: input.FullName,
			Gender:   models.GenderMale, // mặc định
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tạo người dùng"})
		return
	}

	db.Preload("Profile").First(&newUser, "id = ?", newUser.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Đăng ký thành công",
		"user":    newUser,
	})
}

func Login(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := db.Where("username = ?", input.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Tên đăng nhập hoặc mật khẩu không đúng"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Tên đăng nhập hoặc mật khẩu không đúng"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Tài khoản đã bị tạm khóa"})
		return
	}

	token, err := utils.GenerateToken(user.ID.String(), user.IsStaff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo token"})
		return
	}

	now := time.Now()
	db.Model(&user).Update("last_login", &now)

	c.JSON(http.StatusOK, gin.H{
		"message": "Đăng nhập thành công",
		"token":   token,
		"user":    user,
	})
}

// GetProfile trả về hồ sơ của chính người đang đăng nhập.
func GetProfile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var user models.User
	if err := db.Preload("Profile").First(&user, "id = ?", c.GetString("user_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile cập nhật hồ sơ cá nhân (multipart, avatar tùy chọn).
// Avatar được lưu tại đường dẫn cố định images/user-avatars/<id>_avatar<ext>.
func UpdateProfile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var profile models.Profile
	if err := db.First(&profile, "user_id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy hồ sơ"})
		return
	}

	if fullName, ok := c.GetPostForm("full_name"); ok {
		profile.FullName = fullName
	}
	if gender, ok := c.GetPostForm("gender"); ok {
		g := models.UserGender(gender)
		if !g.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Giới tính không hợp lệ"})
			return
		}
		profile.Gender = g
	}
	if birthdate, ok := c.GetPostForm("birthdate"); ok {
		parsed, err := time.Parse("2006-01-02", birthdate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ngày sinh không hợp lệ (yyyy-mm-dd)"})
			return
		}
		profile.Birthdate = &parsed
	}

	if avatar, err := c.FormFile("avatar"); err == nil {
		objectPath := utils.AvatarObjectPath(userID.String(), utils.NormalizeExt(avatar.Filename))
		publicURL, err := utils.UploadToStorage(avatar, objectPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi upload ảnh đại diện", "details": err.Error()})
			return
		}
		profile.Avatar = &publicURL
	}

	if err := db.Save(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật hồ sơ"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật hồ sơ thành công",
		"profile": profile,
	})
}

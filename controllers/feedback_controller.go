package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/studyhub-vn/studyhub-backend/config"
	"github.com/studyhub-vn/studyhub-backend/models"
	"github.com/studyhub-vn/studyhub-backend/utils"
)

type FeedbackInput struct {
	FullName string `form:"full_name" json:"full_name" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Phone    string `form:"phone" json:"phone"`
	Message  string `form:"message" json:"message" binding:"required"`
}

// feedbackFieldErrors đổi lỗi của validator thành map lỗi theo từng field,
// mỗi lỗi gắn đúng với input gây ra nó.
func feedbackFieldErrors(err error) map[string][]string {
	fieldNames := map[string]string{
		"FullName": "full_name",
		"Email":    "email",
		"Phone":    "phone",
		"Message":  "message",
	}

	fieldErrors := map[string][]string{}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			field, ok := fieldNames[fieldErr.Field()]
			if !ok {
				continue
			}
			message := config.Site.RequiredField
			if fieldErr.Tag() == "email" {
				message = config.Site.InvalidEmail
			}
			fieldErrors[field] = append(fieldErrors[field], message)
		}
	}
	return fieldErrors
}

// POST /contact/ — khách ẩn danh gửi liên hệ.
// Ajax nhận JSON; còn lại redirect/re-render như form thường.
func SubmitFeedback(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input FeedbackInput
	if err := c.ShouldBind(&input); err != nil {
		fieldErrors := feedbackFieldErrors(err)
		if isAjaxRequest(c) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success":          false,
				"errors":           fieldErrors,
				"non_field_errors": []string{},
			})
			return
		}
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"site":   config.Site,
			"title":  "Liên hệ | " + config.Site.Name,
			"errors": fieldErrors,
			"values": input,
		})
		return
	}

	feedback := models.Feedback{
		FullName:      input.FullName,
		Email:         input.Email,
		Message:       input.Message,
		ProcessStatus: models.ProcessNotStarted,
	}
	if input.Phone != "" {
		feedback.Phone = &input.Phone
	}

	if err := db.Create(&feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu liên hệ"})
		return
	}

	// Báo mail cho admin, lỗi gửi mail không chặn request.
	if to := config.Site.FeedbackMailTo; to != "" {
		body := fmt.Sprintf(
			"<p><b>%s</b> (%s) vừa gửi liên hệ:</p><p>%s</p>",
			feedback.FullName, feedback.Email, feedback.Message,
		)
		if err := utils.SendEmail(to, config.Site.FeedbackMailSubj, body); err != nil {
			log.Println("Không gửi được mail báo liên hệ mới:", err)
		}
	}

	if isAjaxRequest(c) {
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": config.Site.ContactThanks,
		})
		return
	}
	c.Redirect(http.StatusFound, "/contact/")
}

// GET /api/admin/feedbacks — mới nhất trước.
func GetFeedbacks(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var feedbacks []models.Feedback
	query := db.Model(&models.Feedback{})

	if status := c.Query("process_status"); status != "" {
		query = query.Where("process_status = ?", status)
	}

	if err := query.Order("sent_at DESC").Find(&feedbacks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách liên hệ"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": feedbacks})
}

// GET /api/admin/feedbacks/:id
func GetFeedbackDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var feedback models.Feedback
	if err := db.First(&feedback, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy liên hệ"})
		return
	}
	c.JSON(http.StatusOK, feedback)
}

type ModerateFeedbackInput struct {
	ResponseFromUs *string `json:"response_from_us"`
	ProcessStatus  *string `json:"process_status"`
}

// PATCH /api/admin/feedbacks/:id
// Admin chỉ được điền phản hồi và trạng thái xử lý; các trường
// do khách nhập là read-only sau khi gửi.
func ModerateFeedback(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var feedback models.Feedback
	if err := db.First(&feedback, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy liên hệ"})
		return
	}

	var input ModerateFeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.ResponseFromUs != nil {
		updates["response_from_us"] = *input.ResponseFromUs
	}
	if input.ProcessStatus != nil {
		status := models.ProcessStatus(*input.ProcessStatus)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Trạng thái xử lý không hợp lệ"})
			return
		}
		updates["process_status"] = status
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không có trường nào để cập nhật"})
		return
	}

	if err := db.Model(&feedback).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật liên hệ"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Cập nhật liên hệ thành công",
		"feedback": feedback,
	})
}

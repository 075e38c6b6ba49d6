package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyhub-vn/studyhub-backend/config"
	"github.com/studyhub-vn/studyhub-backend/models"
)

func submitFeedbackForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	return multipartBody(t, fields, "", "", nil)
}

func TestSubmitFeedbackAjax(t *testing.T) {
	r, db := setupServer(t)

	body, ctype := submitFeedbackForm(t, map[string]string{
		"full_name": "Nguyễn Văn A",
		"email":     "vana@example.com",
		"phone":     "0901234567",
		"message":   "Trang web rất hữu ích, cảm ơn các bạn.",
	})
	w := perform(r, http.MethodPost, "/contact/", body, requestOpts{ajax: true, ctype: ctype})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, config.Site.ContactThanks, resp.Message)

	var feedback models.Feedback
	require.NoError(t, db.First(&feedback, "email = ?", "vana@example.com").Error)
	assert.Equal(t, "Nguyễn Văn A", feedback.FullName)
	require.NotNil(t, feedback.Phone)
	assert.Equal(t, "0901234567", *feedback.Phone)
	assert.Equal(t, models.ProcessNotStarted, feedback.ProcessStatus)
	assert.Nil(t, feedback.ResponseFromUs)
}

func TestSubmitFeedbackAjaxInvalid(t *testing.T) {
	r, db := setupServer(t)

	// Thiếu full_name + message, email sai định dạng
	body, ctype := submitFeedbackForm(t, map[string]string{
		"email": "khong-phai-email",
	})
	w := perform(r, http.MethodPost, "/contact/", body, requestOpts{ajax: true, ctype: ctype})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Success        bool                `json:"success"`
		Errors         map[string][]string `json:"errors"`
		NonFieldErrors []string            `json:"non_field_errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Errors["full_name"], config.Site.RequiredField)
	assert.Contains(t, resp.Errors["email"], config.Site.InvalidEmail)
	assert.Contains(t, resp.Errors["message"], config.Site.RequiredField)
	assert.Empty(t, resp.NonFieldErrors)

	// Form lỗi thì không được lưu gì
	var count int64
	require.NoError(t, db.Model(&models.Feedback{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitFeedbackNonAjax(t *testing.T) {
	r, db := setupServer(t)

	body, ctype := submitFeedbackForm(t, map[string]string{
		"full_name": "Trần Thị B",
		"email":     "thib@example.com",
		"message":   "Cho mình hỏi về tài liệu Giải tích.",
	})
	w := perform(r, http.MethodPost, "/contact/", body, requestOpts{ctype: ctype})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/contact/", w.Header().Get("Location"))

	var feedback models.Feedback
	require.NoError(t, db.First(&feedback, "email = ?", "thib@example.com").Error)
	assert.Nil(t, feedback.Phone)
}

func TestSubmitFeedbackNonAjaxInvalidReRendersForm(t *testing.T) {
	r, db := setupServer(t)

	body, ctype := submitFeedbackForm(t, map[string]string{
		"full_name": "Trần Thị B",
		"email":     "khong-hop-le",
		"message":   "Xin chào",
	})
	w := perform(r, http.MethodPost, "/contact/", body, requestOpts{ctype: ctype})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	// Form render lại với lỗi và giá trị đã nhập
	assert.Contains(t, w.Body.String(), config.Site.InvalidEmail)
	assert.Contains(t, w.Body.String(), "Trần Thị B")

	var count int64
	require.NoError(t, db.Model(&models.Feedback{}).Count(&count).Error)
	assert.Zero(t, count)
}

func createFeedback(t *testing.T, db *gorm.DB, email string, sentAt time.Time) models.Feedback {
	t.Helper()
	feedback := models.Feedback{
		FullName:      "Khách",
		Email:         email,
		Message:       "Nội dung liên hệ",
		SentAt:        sentAt,
		ProcessStatus: models.ProcessNotStarted,
	}
	require.NoError(t, db.Create(&feedback).Error)
	return feedback
}

func TestGetFeedbacksNewestFirst(t *testing.T) {
	r, db := setupServer(t)
	_, token := createStaff(t, db)

	now := time.Now()
	createFeedback(t, db, "cu@example.com", now.Add(-time.Hour))
	createFeedback(t, db, "moi@example.com", now)

	w := perform(r, http.MethodGet, "/api/admin/feedbacks", nil, requestOpts{token: token})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.Feedback `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "moi@example.com", resp.Data[0].Email)
	assert.Equal(t, "cu@example.com", resp.Data[1].Email)
}

func TestGetFeedbacksFilterByStatus(t *testing.T) {
	r, db := setupServer(t)
	_, token := createStaff(t, db)

	done := createFeedback(t, db, "xong@example.com", time.Now())
	require.NoError(t, db.Model(&done).Update("process_status", models.ProcessCompleted).Error)
	createFeedback(t, db, "chua@example.com", time.Now())

	w := perform(r, http.MethodGet, "/api/admin/feedbacks?process_status=completed", nil, requestOpts{token: token})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.Feedback `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "xong@example.com", resp.Data[0].Email)
}

func TestModerateFeedback(t *testing.T) {
	r, db := setupServer(t)
	_, token := createStaff(t, db)
	feedback := createFeedback(t, db, "khach@example.com", time.Now())

	payload, err := json.Marshal(map[string]string{
		"response_from_us": "Đã gửi tài liệu qua email cho bạn.",
		"process_status":   "completed",
	})
	require.NoError(t, err)

	w := perform(r, http.MethodPatch, "/api/admin/feedbacks/"+feedback.ID.String(),
		bytes.NewReader(payload), requestOpts{token: token, ctype: "application/json"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Feedback
	require.NoError(t, db.First(&updated, "id = ?", feedback.ID).Error)
	require.NotNil(t, updated.ResponseFromUs)
	assert.Equal(t, "Đã gửi tài liệu qua email cho bạn.", *updated.ResponseFromUs)
	assert.Equal(t, models.ProcessCompleted, updated.ProcessStatus)
	// Các trường khách nhập giữ nguyên
	assert.Equal(t, "khach@example.com", updated.Email)
}

func TestModerateFeedbackInvalidStatus(t *testing.T) {
	r, db := setupServer(t)
	_, token := createStaff(t, db)
	feedback := createFeedback(t, db, "khach@example.com", time.Now())

	payload := []byte(`{"process_status": "dang-bay"}`)
	w := perform(r, http.MethodPatch, "/api/admin/feedbacks/"+feedback.ID.String(),
		bytes.NewReader(payload), requestOpts{token: token, ctype: "application/json"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var unchanged models.Feedback
	require.NoError(t, db.First(&unchanged, "id = ?", feedback.ID).Error)
	assert.Equal(t, models.ProcessNotStarted, unchanged.ProcessStatus)
}

func TestModerateFeedbackEmptyBody(t *testing.T) {
	r, db := setupServer(t)
	_, token := createStaff(t, db)
	feedback := createFeedback(t, db, "khach@example.com", time.Now())

	w := perform(r, http.MethodPatch, "/api/admin/feedbacks/"+feedback.ID.String(),
		bytes.NewReader([]byte(`{}`)), requestOpts{token: token, ctype: "application/json"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackRoutesRequireStaff(t *testing.T) {
	r, db := setupServer(t)
	feedback := createFeedback(t, db, "khach@example.com", time.Now())

	w := perform(r, http.MethodGet, "/api/admin/feedbacks", nil, requestOpts{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/api/admin/feedbacks/"+feedback.ID.String(), nil, requestOpts{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

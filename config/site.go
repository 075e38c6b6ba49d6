package config

import "os"

// Site chứa các chuỗi hiển thị của trang, set một lần lúc khởi động
// và không đổi trong suốt vòng đời process.
type SiteStrings struct {
	Name             string
	ContactThanks    string // thông báo khi gửi liên hệ thành công
	RequiredField    string // lỗi thiếu trường bắt buộc
	InvalidEmail     string // lỗi email sai định dạng
	FeedbackMailTo   string // địa chỉ nhận mail báo có liên hệ mới, rỗng = tắt
	FeedbackMailSubj string
}

var Site SiteStrings

func InitSite() {
	Site = SiteStrings{
		Name:             getenvDefault("SITE_NAME", "StudyHub"),
		ContactThanks:    "Cảm ơn bạn đã liên hệ! Chúng tôi sẽ phản hồi sớm nhất có thể.",
		RequiredField:    "Trường này là bắt buộc phải nhập",
		InvalidEmail:     "Địa chỉ Email không hợp lệ",
		FeedbackMailTo:   os.Getenv("FEEDBACK_NOTIFY_EMAIL"),
		FeedbackMailSubj: "Có liên hệ mới trên StudyHub",
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

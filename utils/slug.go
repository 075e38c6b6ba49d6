package utils

import (
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Số lần thử suffix tối đa trước khi bỏ cuộc.
const slugRetryBudget = 10

var ErrSlugExhausted = errors.New("không tìm được slug duy nhất sau nhiều lần thử")

func GenerateSlug(name string) string {
	return slug.Make(name)
}

// UniqueSlug sinh slug từ name, duy nhất trong table.
// Khi trùng thì thêm suffix -2, -3, ... cho tới khi hết budget.
// excludeID để bỏ qua chính record đang update (nil khi create).
func UniqueSlug(db *gorm.DB, table, name string, excludeID interface{}) (string, error) {
	base := slug.Make(name)
	candidate := base
	for i := 2; i <= slugRetryBudget+1; i++ {
		var count int64
		q := db.Table(table).Where("slug = ?", candidate)
		if excludeID != nil {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", ErrSlugExhausted
}

// SaveWithUniqueSlug sinh slug duy nhất rồi gọi save. Hai request có thể
// cùng qua bước probe và đụng unique index; khi đó probe lại (lúc này đã
// thấy row thắng cuộc) và thử suffix mới thay vì báo lỗi luôn.
func SaveWithUniqueSlug(db *gorm.DB, table, name string, excludeID interface{}, save func(slugValue string) error) error {
	for attempt := 0; attempt < slugRetryBudget; attempt++ {
		slugValue, err := UniqueSlug(db, table, name, excludeID)
		if err != nil {
			return err
		}
		err = save(slugValue)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return ErrSlugExhausted
}

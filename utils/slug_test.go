package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSlugTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE items (id TEXT PRIMARY KEY, slug TEXT UNIQUE)").Error)
	return db
}

func TestGenerateSlug(t *testing.T) {
	assert.Equal(t, "mathematics", GenerateSlug("Mathematics"))
	assert.Equal(t, "midterm-2023", GenerateSlug("Midterm 2023"))
	assert.Equal(t, "toan-hoc", GenerateSlug("Toán học"))
	assert.Equal(t, "hello-world", GenerateSlug("  Hello, World!  "))
}

func TestUniqueSlugNoCollision(t *testing.T) {
	db := newSlugTestDB(t)

	got, err := UniqueSlug(db, "items", "Giải tích", nil)
	require.NoError(t, err)
	assert.Equal(t, "giai-tich", got)
}

func TestUniqueSlugAppendsSuffix(t *testing.T) {
	db := newSlugTestDB(t)
	require.NoError(t, db.Exec("INSERT INTO items (id, slug) VALUES ('a', 'calculus')").Error)

	got, err := UniqueSlug(db, "items", "Calculus", nil)
	require.NoError(t, err)
	assert.Equal(t, "calculus-2", got)

	require.NoError(t, db.Exec("INSERT INTO items (id, slug) VALUES ('b', 'calculus-2')").Error)
	got, err = UniqueSlug(db, "items", "Calculus", nil)
	require.NoError(t, err)
	assert.Equal(t, "calculus-3", got)
}

func TestUniqueSlugExcludesOwnRecord(t *testing.T) {
	db := newSlugTestDB(t)
	require.NoError(t, db.Exec("INSERT INTO items (id, slug) VALUES ('a', 'calculus')").Error)

	// Update không đổi tên: slug giữ nguyên, không bị coi là trùng với chính nó.
	got, err := UniqueSlug(db, "items", "Calculus", "a")
	require.NoError(t, err)
	assert.Equal(t, "calculus", got)
}

func TestUniqueSlugExhaustsBudget(t *testing.T) {
	db := newSlugTestDB(t)
	require.NoError(t, db.Exec("INSERT INTO items (id, slug) VALUES ('0', 'calculus')").Error)
	for i := 2; i <= slugRetryBudget+1; i++ {
		require.NoError(t, db.Exec(
			"INSERT INTO items (id, slug) VALUES (?, ?)",
			fmt.Sprint(i), fmt.Sprintf("calculus-%d", i),
		).Error)
	}

	_, err := UniqueSlug(db, "items", "Calculus", nil)
	assert.ErrorIs(t, err, ErrSlugExhausted)
}

func TestSaveWithUniqueSlugRetriesOnDuplicateRace(t *testing.T) {
	db := newSlugTestDB(t)

	// Giả lập race: lần save đầu thua unique index vì một request khác
	// vừa chiếm slug; row thắng cuộc xuất hiện trước lần probe sau.
	attempts := 0
	err := SaveWithUniqueSlug(db, "items", "Calculus", nil, func(slugValue string) error {
		attempts++
		if attempts == 1 {
			require.NoError(t, db.Exec("INSERT INTO items (id, slug) VALUES ('rival', 'calculus')").Error)
			return gorm.ErrDuplicatedKey
		}
		return db.Exec("INSERT INTO items (id, slug) VALUES ('mine', ?)", slugValue).Error
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	var slug string
	require.NoError(t, db.Raw("SELECT slug FROM items WHERE id = 'mine'").Scan(&slug).Error)
	assert.Equal(t, "calculus-2", slug)
}

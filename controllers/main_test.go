package controllers_test

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/studyhub-vn/studyhub-backend/config"
	"github.com/studyhub-vn/studyhub-backend/models"
	"github.com/studyhub-vn/studyhub-backend/routes"
	"github.com/studyhub-vn/studyhub-backend/utils"
)

// setupServer dựng router đầy đủ trên một DB sqlite in-memory riêng cho test.
func setupServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")
	config.InitSite()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	r := gin.New()
	r.LoadHTMLGlob("../templates/*.html")
	routes.SetupRouter(r, db)
	return r, db
}

// fakeStorage giả lập Supabase Storage để test upload/delete không gọi mạng thật.
func fakeStorage(t *testing.T) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"Key": "uploads/fake"}`)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("SUPABASE_URL", srv.URL)
	t.Setenv("SUPABASE_KEY", "fake-key")
}

func createStaff(t *testing.T, db *gorm.DB) (models.User, string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("matkhau123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Username: "curator-" + uuid.NewString()[:8],
		Email:    uuid.NewString()[:8] + "@studyhub.vn",
		Password: string(hashed),
		IsActive: true,
		IsStaff:  true,
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: user.ID, Gender: models.GenderMale}).Error)

	token, err := utils.GenerateToken(user.ID.String(), true)
	require.NoError(t, err)
	return user, token
}

func createCategory(t *testing.T, db *gorm.DB, operator uuid.UUID, name string) models.Category {
	t.Helper()
	category := models.Category{CatalogBase: models.CatalogBase{
		Name:        name,
		Slug:        utils.GenerateSlug(name),
		IsActive:    true,
		CreatedByID: operator,
	}}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func createSubcategory(t *testing.T, db *gorm.DB, operator uuid.UUID, category models.Category, name string) models.Subcategory {
	t.Helper()
	subcategory := models.Subcategory{
		CatalogBase: models.CatalogBase{
			Name:        name,
			Slug:        utils.GenerateSlug(name),
			IsActive:    true,
			CreatedByID: operator,
		},
		CategoryID: category.ID,
	}
	require.NoError(t, db.Create(&subcategory).Error)
	return subcategory
}

func createFile(t *testing.T, db *gorm.DB, operator uuid.UUID, subcategory models.Subcategory, name string, fileType models.FileType) models.File {
	t.Helper()
	file := models.File{
		Name:          name,
		Slug:          utils.GenerateSlug(name),
		SubcategoryID: subcategory.ID,
		FileType:      fileType,
		FileLanguage:  models.FileLanguageEnglish,
		UploadedFile:  "https://storage.local/uploads/files/" + utils.GenerateSlug(name) + ".pdf",
		CreatedByID:   operator,
	}
	require.NoError(t, db.Create(&file).Error)
	return file
}

type requestOpts struct {
	token string
	ajax  bool
	ctype string
}

func perform(r *gin.Engine, method, path string, body io.Reader, opts requestOpts) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}
	if opts.ajax {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	if opts.ctype != "" {
		req.Header.Set("Content-Type", opts.ctype)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// multipartBody dựng body multipart từ các field text và file đính kèm.
func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func todayRowDate() string {
	return time.Now().Format("02/01/2006")
}

package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

const storageBucket = "uploads"

// NormalizeExt lấy phần mở rộng (viết thường) của tên file gốc.
func NormalizeExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// FileObjectPath là đường dẫn cố định của tài liệu trên storage,
// suy ra được từ vị trí trong taxonomy: files/<category>/<subcategory>/<type>__<slug><ext>
func FileObjectPath(categorySlug, subcategorySlug, fileType, fileSlug, ext string) string {
	return fmt.Sprintf("files/%s/%s/%s__%s%s", categorySlug, subcategorySlug, fileType, fileSlug, ext)
}

// CoverObjectPath: images/<kind>-covers/<id>_cover<ext> (kind = "category"/"subcategory").
func CoverObjectPath(kind, id, ext string) string {
	return fmt.Sprintf("images/%s-covers/%s_cover%s", kind, id, ext)
}

// AvatarObjectPath: images/user-avatars/<user-id>_avatar<ext>
func AvatarObjectPath(userID, ext string) string {
	return fmt.Sprintf("images/user-avatars/%s_avatar%s", userID, ext)
}

// PublicStorageURL trả về URL công khai của một object trong bucket uploads.
func PublicStorageURL(objectPath string) string {
	supabaseURL := strings.TrimRight(os.Getenv("SUPABASE_URL"), "/")
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", supabaseURL, storageBucket, objectPath)
}

// UploadToStorage đẩy nội dung multipart file lên Supabase Storage
// tại objectPath và trả về public URL.
func UploadToStorage(fileHeader *multipart.FileHeader, objectPath string) (string, error) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")

	storageClient := storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	options := storage.FileOptions{
		ContentType: &contentType,
	}

	if _, err := storageClient.UploadFile(storageBucket, objectPath, &buf, options); err != nil {
		return "", err
	}

	return PublicStorageURL(objectPath), nil
}

// DeleteFromStorage nhận public URL và gọi API Supabase Storage để xóa object.
// URL rỗng thì bỏ qua (file chưa từng upload).
func DeleteFromStorage(publicURL string) error {
	if publicURL == "" {
		return nil
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")
	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("SUPABASE_URL hoặc SUPABASE_KEY chưa cấu hình")
	}

	idx := strings.Index(publicURL, "/storage/v1/object/")
	if idx == -1 {
		return fmt.Errorf("không xác định được đường dẫn object trong URL: %s", publicURL)
	}

	rest := publicURL[idx+len("/storage/v1/object/"):]
	rest = strings.TrimPrefix(rest, "public/")

	// rest => "<bucket>/<path/to/object...>"
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 {
		return fmt.Errorf("không parse được bucket/object từ URL: %s", publicURL)
	}
	bucket := parts[0]
	object := parts[1]
	if qIdx := strings.Index(object, "?"); qIdx != -1 {
		object = object[:qIdx]
	}
	if u, err := url.PathUnescape(object); err == nil {
		object = u
	}

	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", strings.TrimRight(supabaseURL, "/"), bucket, object)

	req, err := http.NewRequest(http.MethodDelete, deleteURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+supabaseKey)
	req.Header.Set("apikey", supabaseKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("xóa file trên storage thất bại: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}

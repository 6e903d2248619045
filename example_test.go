package imagedl_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/adamwoolhether/imagedl"
)

func ExampleDownload() {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x00")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(png))
	}))
	defer ts.Close()

	dir, err := os.MkdirTemp("", "imagedl-example")
	if err != nil {
		fmt.Println("tempdir error:", err)
		return
	}
	defer os.RemoveAll(dir)

	res := imagedl.Download(context.Background(), ts.URL+"/kitten.png", dir, imagedl.WithTimeout(5*time.Second))

	fmt.Println(res.Success, filepath.Base(res.Destination), res.Size, res.MimeType)
	// Output: true kitten.png 12 image/png
}

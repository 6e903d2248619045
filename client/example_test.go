package client_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/adamwoolhether/imagedl/client"
)

func ExampleBuild() {
	c, err := client.Build(
		client.WithTimeout(30*time.Second),
		client.WithConnectTimeout(10*time.Second),
		client.WithMaxRedirects(5),
		client.WithUserAgent("example/1.0"),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	_ = c
	fmt.Println("client built")
	// Output: client built
}

func ExampleURL() {
	u := client.URL("https", "images.unsplash.com", "/photo-1506905925346",
		client.WithQueryStrings(map[string]string{"w": "640", "h": "480", "fit": "crop"}),
	)

	fmt.Println(u.String())
	// Output: https://images.unsplash.com/photo-1506905925346?fit=crop&h=480&w=640
}

func ExampleClient_Head() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", "2048")
	}))
	defer ts.Close()

	c, _ := client.Build()

	header, status, err := c.Head(context.Background(), ts.URL+"/photo.jpg")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(status, header.Get("Content-Type"), header.Get("Content-Length"))
	// Output: 200 image/jpeg 2048
}

func ExampleStatusCode() {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	c, _ := client.Build()

	_, _, err := c.Fetch(context.Background(), ts.URL+"/gone.png")
	fmt.Println(client.StatusCode(err))
	// Output: 404
}

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"time"

	"github.com/promodash/internal/client"
	"github.com/promodash/internal/db"
	"github.com/promodash/internal/service"
)

type seedItem struct {
	Title string
	Link  string
	Color color.RGBA
}

var (
	bannerSeeds = []seedItem{
		{Title: "Spring Sale", Link: "https://example.com/spring", Color: color.RGBA{R: 230, G: 90, B: 90, A: 255}},
		{Title: "Free Shipping", Link: "https://example.com/shipping", Color: color.RGBA{R: 60, G: 140, B: 220, A: 255}},
		{Title: "New Arrivals", Link: "https://example.com/new", Color: color.RGBA{R: 90, G: 180, B: 120, A: 255}},
	}
	gallerySeeds = []seedItem{
		{Title: "Storefront", Link: "https://example.com/gallery/storefront", Color: color.RGBA{R: 200, G: 160, B: 60, A: 255}},
		{Title: "Summer Lookbook", Link: "https://example.com/gallery/lookbook", Color: color.RGBA{R: 240, G: 200, B: 120, A: 255}},
	}
	videoSeeds = []seedItem{
		{Title: "Product Tour", Link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Color: color.RGBA{R: 40, G: 40, B: 60, A: 255}},
	}
	mediaSeeds = []seedItem{
		{Title: "Press Logo", Color: color.RGBA{R: 120, G: 120, B: 120, A: 255}},
		{Title: "Partner Badge", Color: color.RGBA{R: 170, G: 90, B: 200, A: 255}},
	}
)

// 演示数据生成器：通过 HTTP API 上传占位图并创建各类内容
func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "dashboard base URL")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := seedAll(ctx, client.New(*baseURL), os.Stdout); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func seedAll(ctx context.Context, c *client.Client, out io.Writer) error {
	fmt.Fprintln(out, "seeding demo content...")

	if err := seedCollection(ctx, client.NewResource[db.Banner](c, service.Banners), bannerSeeds, out); err != nil {
		return err
	}
	if err := seedCollection(ctx, client.NewResource[db.GalleryImage](c, service.GalleryImages), gallerySeeds, out); err != nil {
		return err
	}
	if err := seedCollection(ctx, client.NewResource[db.GalleryVideo](c, service.GalleryVideos), videoSeeds, out); err != nil {
		return err
	}
	if err := seedCollection(ctx, client.NewResource[db.Media](c, service.Medias), mediaSeeds, out); err != nil {
		return err
	}

	fmt.Fprintln(out, "done")
	return nil
}

func seedCollection[T any](ctx context.Context, res *client.Resource[T], items []seedItem, out io.Writer) error {
	for i, item := range items {
		data, err := placeholderPNG(item.Color)
		if err != nil {
			return err
		}
		_, err = res.SubmitCreate(ctx, client.Submission{
			Title:    item.Title,
			Link:     item.Link,
			IsActive: true,
			File: &client.File{
				Name:        fmt.Sprintf("seed-%d.png", i+1),
				ContentType: "image/png",
				Data:        data,
			},
		})
		if err != nil {
			return fmt.Errorf("create %q: %w", item.Title, err)
		}
		fmt.Fprintf(out, "  created %s\n", item.Title)
	}
	return nil
}

// 生成纯色占位图
func placeholderPNG(fill color.RGBA) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

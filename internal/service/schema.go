package service

import (
	"fmt"
	"net/http"
	"strings"
)

// Schema configures one content collection for the generic service, API and
// admin pages.
type Schema struct {
	// Key is the stable identifier used for cache keys and metric labels.
	Key string
	// Collection is the URL segment under /api and /admin.
	Collection string
	Singular   string
	Plural     string
	Label      string
	// ImageField is both the JSON field and the column holding the image URL.
	ImageField   string
	HasLink      bool
	LinkLabel    string
	CreateStatus int
}

var (
	Banners = Schema{
		Key:          "banners",
		Collection:   "banners",
		Singular:     "banner",
		Plural:       "banners",
		Label:        "Banner",
		ImageField:   "image",
		HasLink:      true,
		LinkLabel:    "Link",
		CreateStatus: http.StatusOK,
	}
	GalleryImages = Schema{
		Key:          "gallery_images",
		Collection:   "gallery/images",
		Singular:     "gallery image",
		Plural:       "gallery images",
		Label:        "Gallery image",
		ImageField:   "image",
		HasLink:      true,
		LinkLabel:    "Link",
		CreateStatus: http.StatusOK,
	}
	GalleryVideos = Schema{
		Key:          "gallery_videos",
		Collection:   "gallery/videos",
		Singular:     "gallery video",
		Plural:       "gallery videos",
		Label:        "Gallery video",
		ImageField:   "thumbnail",
		HasLink:      true,
		LinkLabel:    "Video link",
		CreateStatus: http.StatusOK,
	}
	Medias = Schema{
		Key:          "media",
		Collection:   "medias",
		Singular:     "media",
		Plural:       "media",
		Label:        "Media",
		ImageField:   "image",
		CreateStatus: http.StatusCreated,
	}
)

// Schemas lists every collection in navigation order.
func Schemas() []Schema {
	return []Schema{Banners, GalleryImages, GalleryVideos, Medias}
}

func (s Schema) FetchFailed() string  { return fmt.Sprintf("Failed to fetch %s", s.Plural) }
func (s Schema) CreateFailed() string { return fmt.Sprintf("Failed to create %s", s.Singular) }
func (s Schema) UpdateFailed() string { return fmt.Sprintf("Failed to update %s", s.Singular) }
func (s Schema) DeleteFailed() string { return fmt.Sprintf("Failed to delete %s", s.Singular) }
func (s Schema) Deleted() string      { return fmt.Sprintf("%s deleted successfully", s.Label) }
func (s Schema) Created() string      { return fmt.Sprintf("%s created successfully", s.Label) }
func (s Schema) Updated() string      { return fmt.Sprintf("%s updated successfully", s.Label) }

// ImageLabel is the form label of the image field.
func (s Schema) ImageLabel() string {
	if s.ImageField == "thumbnail" {
		return "Thumbnail"
	}
	return "Image"
}

// Title is the capitalized plural used for page headings and navigation.
func (s Schema) Title() string {
	if s.Plural == "" {
		return ""
	}
	return strings.ToUpper(s.Plural[:1]) + s.Plural[1:]
}

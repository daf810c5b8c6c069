package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GalleryImage 定义图库图片模型
type GalleryImage struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Image     string    `gorm:"not null" json:"image"`
	Link      string    `gorm:"not null" json:"link"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (GalleryImage) TableName() string {
	return "gallery_images"
}

func (g *GalleryImage) BeforeCreate(*gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

func (g *GalleryImage) RecordID() string { return g.ID }

func (g *GalleryImage) Fields() ContentFields {
	return ContentFields{Title: g.Title, Image: g.Image, Link: g.Link, IsActive: g.IsActive}
}

func (g *GalleryImage) Assign(f ContentFields) {
	g.Title = f.Title
	g.Image = f.Image
	g.Link = f.Link
	g.IsActive = f.IsActive
}

func (g *GalleryImage) Timestamps() (time.Time, time.Time) { return g.CreatedAt, g.UpdatedAt }

// GalleryVideo 定义图库视频模型，Link 指向视频地址
type GalleryVideo struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Thumbnail string    `gorm:"not null" json:"thumbnail"`
	Link      string    `gorm:"not null" json:"link"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (GalleryVideo) TableName() string {
	return "gallery_videos"
}

func (g *GalleryVideo) BeforeCreate(*gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

func (g *GalleryVideo) RecordID() string { return g.ID }

func (g *GalleryVideo) Fields() ContentFields {
	return ContentFields{Title: g.Title, Image: g.Thumbnail, Link: g.Link, IsActive: g.IsActive}
}

func (g *GalleryVideo) Assign(f ContentFields) {
	g.Title = f.Title
	g.Thumbnail = f.Image
	g.Link = f.Link
	g.IsActive = f.IsActive
}

func (g *GalleryVideo) Timestamps() (time.Time, time.Time) { return g.CreatedAt, g.UpdatedAt }

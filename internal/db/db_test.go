package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesParentDirAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "promodash.db")

	gdb, err := Open(Options{Driver: DriverSQLite, Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	for _, model := range Models() {
		assert.True(t, gdb.Migrator().HasTable(model))
	}
}

func TestBeforeCreateAssignsIDAndKeepsInactiveFlag(t *testing.T) {
	gdb, err := Open(Options{Path: filepath.Join(t.TempDir(), "ids.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	video := GalleryVideo{Title: "Launch", Thumbnail: "/uploads/1-t.png", Link: "https://video.example.com/1", IsActive: false}
	require.NoError(t, gdb.Create(&video).Error)
	assert.Len(t, video.ID, 36)

	var stored GalleryVideo
	require.NoError(t, gdb.First(&stored, "id = ?", video.ID).Error)
	assert.False(t, stored.IsActive)
	assert.Equal(t, "/uploads/1-t.png", stored.Fields().Image)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Options{Driver: "mongo"})
	assert.Error(t, err)

	_, err = Open(Options{Driver: DriverPostgres})
	assert.Error(t, err)
}

func TestContentFieldsRoundTrip(t *testing.T) {
	fields := ContentFields{Title: "Spring Sale", Image: "/uploads/1-a.png", Link: "https://example.com", IsActive: true}

	records := []Content{&Banner{}, &GalleryImage{}, &GalleryVideo{}}
	for _, record := range records {
		record.Assign(fields)
		assert.Equal(t, fields, record.Fields())
	}

	media := &Media{}
	media.Assign(fields)
	assert.Equal(t, ContentFields{Title: "Spring Sale", Image: "/uploads/1-a.png", IsActive: true}, media.Fields())
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-drive-service/entity"
)

func TestClassifyFileType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		mimeType string
		want     string
	}{
		{"plain text is others", "testfile.txt", "text/plain", entity.FileTypeOthers},
		{"audio mime", "track.bin", "audio/mpeg", entity.FileTypeMusic},
		{"music extension", "track.mp3", "application/octet-stream", entity.FileTypeMusic},
		{"pdf mime", "report", "application/pdf", entity.FileTypePDF},
		{"pdf extension", "report.pdf", "application/octet-stream", entity.FileTypePDF},
		{"video mime", "clip.dat", "video/mp4", entity.FileTypeVideo},
		{"video extension", "clip.mkv", "application/octet-stream", entity.FileTypeVideo},
		{"image mime", "pic", "image/png", entity.FileTypeImage},
		{"image extension uppercase", "PIC.JPG", "application/octet-stream", entity.FileTypeImage},
		{"unknown everything", "archive.zip", "application/zip", entity.FileTypeOthers},
		{"no extension no mime", "blob", "application/octet-stream", entity.FileTypeOthers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ClassifyFileType(tt.filename, tt.mimeType))
		})
	}
}

func TestResolveMimeType(t *testing.T) {
	require.Equal(t, "text/plain", ResolveMimeType("a.txt", "text/plain"))
	require.Equal(t, "application/pdf", ResolveMimeType("a.pdf", ""))
	require.Equal(t, "application/octet-stream", ResolveMimeType("no-extension", ""))
}

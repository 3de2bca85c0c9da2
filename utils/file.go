package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// EnsureUploadDir creates the uploads directory if it doesn't exist
func EnsureUploadDir() error {
	return os.MkdirAll("uploads", os.ModePerm)
}

// SaveFile saves the uploaded file to the given destination path
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	// ✅ Ensure the directory for the destination file exists
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	return err
}

// SaveBytes writes in-memory data (generated TTS audio) to the given
// destination path, creating parent directories as needed
func SaveBytes(data []byte, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0o644)
}

// GetUploadPath returns the full path for a file inside the uploads directory
func GetUploadPath(filename string) string {
	return filepath.Join("uploads", filename)
}

// IsAudioUpload checks the extension of an uploaded verse recording. Whisper
// accepts more formats than this; the list is what the web client produces.
func IsAudioUpload(fileHeader *multipart.FileHeader) bool {
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".mp3", ".wav", ".webm", ".ogg", ".m4a":
		return true
	}
	return false
}

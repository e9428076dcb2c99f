package input

import (
	"bytes"
	"os"
	"strings"
	"unicode/utf8"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

// Validator performs the pre-flight checks on local files. A draft is never
// created for input that is known-invalid locally.
type Validator struct{}

var _ ports.InputValidator = (*Validator)(nil)

// NewValidator returns a stateless validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate reads and checks both files, returning validated inputs or a
// *domain.LocalInputError naming the first violation found. Content is checked
// before the image, matching the order the pipeline consumes them.
func (v *Validator) Validate(contentPath, imagePath string) (domain.ContentInput, domain.ImageInput, error) {
	content, err := validateContent(contentPath)
	if err != nil {
		return domain.ContentInput{}, domain.ImageInput{}, err
	}

	img, err := validateImage(imagePath)
	if err != nil {
		return domain.ContentInput{}, domain.ImageInput{}, err
	}

	return content, img, nil
}

func validateContent(path string) (domain.ContentInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		// Unreadable and missing collapse to the same violation; the operator
		// fixes both the same way.
		return domain.ContentInput{}, &domain.LocalInputError{Kind: domain.ContentFileMissing, Path: path}
	}

	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return domain.ContentInput{}, &domain.LocalInputError{Kind: domain.ContentFileEmpty, Path: path}
	}
	if !utf8.ValidString(text) {
		return domain.ContentInput{}, &domain.LocalInputError{Kind: domain.ContentFileNotUTF8, Path: path}
	}

	return domain.ContentInput{Path: path, Text: text}, nil
}

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
)

func validateImage(path string) (domain.ImageInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ImageInput{}, &domain.LocalInputError{Kind: domain.ImageFileMissing, Path: path}
	}
	if len(data) == 0 {
		return domain.ImageInput{}, &domain.LocalInputError{Kind: domain.ImageFileEmpty, Path: path}
	}

	mime, ok := sniffImage(data)
	if !ok {
		return domain.ImageInput{}, &domain.LocalInputError{Kind: domain.UnsupportedImageFormat, Path: path}
	}

	return domain.ImageInput{Path: path, Data: data, MIME: mime}, nil
}

// sniffImage detects the two formats the platform accepts by magic bytes, so a
// mislabelled extension cannot slip through.
func sniffImage(data []byte) (string, bool) {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return "image/jpeg", true
	case bytes.HasPrefix(data, pngMagic):
		return "image/png", true
	default:
		return "", false
	}
}

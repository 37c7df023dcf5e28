package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"abcstore/internal/domain/entity"
	"abcstore/internal/domain/service"
	"abcstore/pkg/logger"
)

// URLPrefix is the managed storage prefix; only URLs under it are treated
// as existing assets.
const URLPrefix = "/uploads/products/"

const (
	mainBound    = 800
	thumbSize    = 200
	mainQuality  = 85
	thumbQuality = 80
	thumbPrefix  = "thumb_"
)

// LocalStorage stores product images on local disk. Main images are fitted
// inside an 800x800 box without enlargement and re-encoded as JPEG; each
// gets a 200x200 center-cropped thumbnail sharing the filename stem.
type LocalStorage struct {
	dir     string
	cleaner *Cleaner
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	s := &LocalStorage{dir: dir}
	s.cleaner = NewCleaner(s.deleteAsset, 256)
	s.cleaner.Start()
	return s, nil
}

func (s *LocalStorage) Close() {
	s.cleaner.Close()
}

// Cleaner exposes the background cleanup queue, mainly for tests.
func (s *LocalStorage) Cleaner() *Cleaner {
	return s.cleaner
}

func (s *LocalStorage) Ingest(ctx context.Context, inputs []service.ImageInput) []entity.ProductImage {
	var images []entity.ProductImage

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			break
		}

		img, err := s.resolve(input)
		if err != nil {
			// partial-failure policy: drop the file, keep the batch
			logger.Error("Failed to process image input: %v", err)
			continue
		}
		if img == nil {
			continue
		}

		img.IsPrimary = len(images) == 0
		images = append(images, *img)
	}

	return images
}

func (s *LocalStorage) resolve(input service.ImageInput) (*entity.ProductImage, error) {
	switch input.Kind {
	case service.ImageFromFile:
		return s.saveProcessed(input.Data)

	case service.ImageFromDataURI:
		data, err := decodeDataURI(input.URI)
		if err != nil {
			return nil, err
		}
		return s.saveProcessed(data)

	case service.ImageFromURL:
		if !Managed(input.URI) {
			// arbitrary external URLs are never re-attached
			return nil, nil
		}
		thumb := input.Thumbnail
		if thumb == "" {
			thumb = ThumbnailURL(input.URI)
		}
		return &entity.ProductImage{URL: input.URI, Thumbnail: thumb}, nil
	}

	return nil, fmt.Errorf("unknown image input kind %d", input.Kind)
}

func (s *LocalStorage) saveProcessed(data []byte) (*entity.ProductImage, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	filename := uuid.New().String() + ".jpg"

	main := imaging.Fit(src, mainBound, mainBound, imaging.Lanczos)
	var mainBuf bytes.Buffer
	if err := imaging.Encode(&mainBuf, main, imaging.JPEG, imaging.JPEGQuality(mainQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, filename), mainBuf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	thumb := imaging.Fill(src, thumbSize, thumbSize, imaging.Center, imaging.Lanczos)
	var thumbBuf bytes.Buffer
	if err := imaging.Encode(&thumbBuf, thumb, imaging.JPEG, imaging.JPEGQuality(thumbQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, thumbPrefix+filename), thumbBuf.Bytes(), 0o644); err != nil {
		// keep the main image even when the thumbnail write fails
		logger.Warn("Failed to write thumbnail for %s: %v", filename, err)
	}

	return &entity.ProductImage{
		URL:       URLPrefix + filename,
		Thumbnail: URLPrefix + thumbPrefix + filename,
		Size:      int64(mainBuf.Len()),
	}, nil
}

func (s *LocalStorage) Reconcile(oldImages, newImages []entity.ProductImage) {
	for _, url := range supersededURLs(oldImages, newImages) {
		if err := s.deleteAsset(url); err != nil {
			logger.Error("Failed to delete image %s: %v", url, err)
		}
	}
}

func (s *LocalStorage) EnqueueCleanup(oldImages, newImages []entity.ProductImage) {
	s.cleaner.Enqueue(supersededURLs(oldImages, newImages)...)
}

// deleteAsset removes the main file and, best effort, its thumbnail.
// Already missing files are not an error.
func (s *LocalStorage) deleteAsset(url string) error {
	filePath, ok := s.FilePath(url)
	if !ok {
		return nil
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return err
	}

	thumbPath := filepath.Join(s.dir, thumbPrefix+path.Base(url))
	if err := os.Remove(thumbPath); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to delete thumbnail for %s: %v", url, err)
	}
	return nil
}

// FilePath maps a managed URL onto its on-disk location.
func (s *LocalStorage) FilePath(url string) (string, bool) {
	if !Managed(url) {
		return "", false
	}
	return filepath.Join(s.dir, path.Base(url)), true
}

func Managed(url string) bool {
	return strings.HasPrefix(url, URLPrefix)
}

// ThumbnailURL derives the thumbnail path by filename convention.
func ThumbnailURL(url string) string {
	return URLPrefix + thumbPrefix + path.Base(url)
}

func supersededURLs(oldImages, newImages []entity.ProductImage) []string {
	kept := make(map[string]struct{}, len(newImages))
	for _, img := range newImages {
		kept[img.URL] = struct{}{}
	}

	var urls []string
	for _, img := range oldImages {
		if img.URL == "" {
			continue
		}
		if _, ok := kept[img.URL]; !ok {
			urls = append(urls, img.URL)
		}
	}
	return urls
}

func decodeDataURI(uri string) ([]byte, error) {
	idx := strings.Index(uri, ",")
	if !strings.HasPrefix(uri, "data:image") || idx < 0 {
		return nil, fmt.Errorf("not a data URI")
	}
	data, err := base64.StdEncoding.DecodeString(uri[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return data, nil
}

package service

import (
	"context"

	"abcstore/internal/domain/entity"
)

// ImageKind discriminates the accepted image input variants. Inputs are
// resolved into this union once at the API boundary; the pipeline never
// inspects raw request types.
type ImageKind int

const (
	// ImageFromFile is an uploaded file held in memory.
	ImageFromFile ImageKind = iota
	// ImageFromDataURI is a base64 data URI string.
	ImageFromDataURI
	// ImageFromURL references an already stored asset by URL.
	ImageFromURL
)

type ImageInput struct {
	Kind        ImageKind
	Filename    string
	ContentType string
	Data        []byte
	URI         string
	Thumbnail   string
}

// ImageService converts heterogeneous image inputs into stored asset
// records and reclaims disk space for superseded assets.
type ImageService interface {
	// Ingest processes inputs in order. A failing input is dropped, never
	// aborting the batch; the first successful asset is marked primary.
	Ingest(ctx context.Context, inputs []ImageInput) []entity.ProductImage

	// Reconcile deletes every old asset whose URL is absent from the new
	// set. Missing files are tolerated.
	Reconcile(oldImages, newImages []entity.ProductImage)

	// EnqueueCleanup hands the same work to the background cleaner; used on
	// delete paths where the response should not wait for file I/O.
	EnqueueCleanup(oldImages, newImages []entity.ProductImage)
}

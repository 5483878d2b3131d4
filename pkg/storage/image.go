package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
)

// MaxImageSize is the upload limit for menu images.
const MaxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func extension(contentType string) string {
	if ext, ok := imageExtensions[contentType]; ok {
		return ext
	}
	return ".bin"
}

// DetectImage sniffs the content type of r. The returned reader yields the
// full content, sniffed bytes included.
func DetectImage(r io.Reader) (string, io.Reader, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", nil, err
	}
	if len(head) == 0 {
		return "", nil, ErrEmptyFile
	}
	ct := http.DetectContentType(head)
	if _, ok := imageExtensions[ct]; !ok {
		return ct, nil, fmt.Errorf("%w: %s", ErrInvalidType, ct)
	}
	return ct, br, nil
}

// PutImage validates and uploads an image of the given size, public-read.
func PutImage(ctx context.Context, s Storage, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	if size <= 0 {
		return nil, ErrEmptyFile
	}
	if size > MaxImageSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, size, MaxImageSize)
	}
	ct, body, err := DetectImage(r)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithACL(ACLPublicRead)}, opts...)
	opts = append(opts, WithContentType(ct))
	return s.Put(ctx, io.LimitReader(body, size), size, opts...)
}

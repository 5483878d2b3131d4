package storage_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lemamita/mamita/pkg/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type recordingStorage struct {
	data []byte
	opts int
	key  string
}

func (s *recordingStorage) Put(_ context.Context, r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.data = data
	s.opts = len(opts)
	s.key = "menus/x.png"
	return &storage.FileInfo{Key: s.key, Size: size, URL: "https://cdn/" + s.key}, nil
}

func (s *recordingStorage) Delete(context.Context, string) error { return nil }

func (s *recordingStorage) PublicURL(key string) string { return "https://cdn/" + key }

func TestDetectImage(t *testing.T) {
	t.Parallel()

	ct, r, err := storage.DetectImage(bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.Equal(t, "image/png", ct)
	all, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, pngHeader, all)

	ct, _, err = storage.DetectImage(strings.NewReader("%PDF-1.7 not an image"))
	require.ErrorIs(t, err, storage.ErrInvalidType)
	require.Equal(t, "application/pdf", ct)

	_, _, err = storage.DetectImage(strings.NewReader(""))
	require.ErrorIs(t, err, storage.ErrEmptyFile)
}

func TestPutImage(t *testing.T) {
	t.Parallel()

	t.Run("uploads the whole image", func(t *testing.T) {
		t.Parallel()

		s := &recordingStorage{}
		info, err := storage.PutImage(context.Background(), s, bytes.NewReader(pngHeader), int64(len(pngHeader)), storage.WithPrefix("menus"))
		require.NoError(t, err)
		require.Equal(t, "https://cdn/menus/x.png", info.URL)
		require.Equal(t, pngHeader, s.data)
		require.Equal(t, 3, s.opts)
	})

	t.Run("rejects oversize before reading", func(t *testing.T) {
		t.Parallel()

		s := &recordingStorage{}
		_, err := storage.PutImage(context.Background(), s, bytes.NewReader(pngHeader), storage.MaxImageSize+1)
		require.ErrorIs(t, err, storage.ErrFileTooLarge)
		require.Nil(t, s.data)
	})

	t.Run("rejects non images", func(t *testing.T) {
		t.Parallel()

		s := &recordingStorage{}
		_, err := storage.PutImage(context.Background(), s, strings.NewReader("hello, plain text"), 17)
		require.ErrorIs(t, err, storage.ErrInvalidType)
		require.Nil(t, s.data)
	})

	t.Run("rejects empty", func(t *testing.T) {
		t.Parallel()

		_, err := storage.PutImage(context.Background(), &recordingStorage{}, strings.NewReader(""), 0)
		require.ErrorIs(t, err, storage.ErrEmptyFile)
	})
}

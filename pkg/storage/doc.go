// Package storage uploads menu banner images to S3-compatible object storage
// and returns their public URLs.
//
//	s, err := storage.New(cfg)
//	info, err := storage.PutImage(ctx, s, file, header.Size, storage.WithPrefix("menus"))
//
// PutImage sniffs the content type from the first bytes, rejects anything
// that is not an image or exceeds the size limit, and stores the object
// public-read under a random key.
package storage

package handlers

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"

	_ "golang.org/x/image/webp"
)

var errNotImage = errors.New("not a supported image")

// readImage loads an uploaded file and checks that it decodes as png, jpeg,
// gif or webp. The returned content type comes from the decoded format, not
// from the client.
func readImage(fh *multipart.FileHeader) ([]byte, string, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", err
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", errNotImage
	}
	return data, "image/" + format, nil
}

package repository

import (
	"encoding/json"

	"github.com/localdeals/residence/internal/model"
)

// Images are stored as a JSON array in a TEXT column. The external hosting
// service owns the binary data; the store only keeps {url, publicId} pairs.

func encodeImages(imgs []model.Image) (string, error) {
	if len(imgs) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(imgs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeImages(raw string) ([]model.Image, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var imgs []model.Image
	if err := json.Unmarshal([]byte(raw), &imgs); err != nil {
		return nil, err
	}
	return imgs, nil
}

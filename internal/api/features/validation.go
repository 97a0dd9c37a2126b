package features

import (
	"errors"
	"fmt"
	"strings"

	"github.com/good-yellow-bee/feattrack/internal/models"
)

func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title is required")
	}
	if len(title) > 200 {
		return errors.New("title must be 200 characters or less")
	}
	return nil
}

func ValidateImages(images []string) error {
	if len(images) > models.MaxFeatureImages {
		return fmt.Errorf("a feature can carry at most %d images", models.MaxFeatureImages)
	}
	for _, img := range images {
		if strings.TrimSpace(img) == "" {
			return errors.New("image URLs must not be empty")
		}
	}
	return nil
}

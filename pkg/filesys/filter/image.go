package filter

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/calvinalkan/filesys/pkg/filesys"
)

// ImageType is an image format recognized by [Image].
type ImageType uint8

const (
	GIF ImageType = iota + 1
	JPEG
	PNG
	BMP
	WEBP
	TIFF
	ICO
	PSD
)

var imageMIME = map[ImageType]string{
	GIF:  "image/gif",
	JPEG: "image/jpeg",
	PNG:  "image/png",
	BMP:  "image/bmp",
	WEBP: "image/webp",
	TIFF: "image/tiff",
	ICO:  "image/x-icon",
	PSD:  "image/vnd.adobe.photoshop",
}

var allImageTypes = []ImageType{GIF, JPEG, PNG, BMP, WEBP, TIFF, ICO, PSD}

func (t ImageType) String() string {
	if m, ok := imageMIME[t]; ok {
		return strings.TrimPrefix(m, "image/")
	}

	return fmt.Sprintf("ImageType(%d)", uint8(t))
}

// MIME returns the media type of t.
func (t ImageType) MIME() string { return imageMIME[t] }

// ParseImageType maps a name such as "png" or "jpg" to its ImageType.
func ParseImageType(name string) (ImageType, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "gif":
		return GIF, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "webp":
		return WEBP, nil
	case "tif", "tiff":
		return TIFF, nil
	case "ico":
		return ICO, nil
	case "psd":
		return PSD, nil
	default:
		return 0, fmt.Errorf("unknown image type %q", name)
	}
}

// Image accepts regular files whose header identifies one of types. With
// no types every supported image format is accepted, unlike an empty
// allow-list which would reject every file. The file extension is ignored.
func Image(types ...ImageType) filesys.Filter {
	if len(types) == 0 {
		types = allImageTypes
	}

	return filesys.FilterFunc(func(f filesys.File) bool {
		if !f.IsFile() {
			return false
		}

		detected, err := detect(f)
		if err != nil {
			return false
		}

		for _, t := range types {
			if m, ok := imageMIME[t]; ok && detected.Is(m) {
				return true
			}
		}

		return false
	})
}

func detect(f filesys.File) (*mimetype.MIME, error) {
	h, err := f.System().FS().Open(f.Path())
	if err != nil {
		return nil, err
	}
	defer h.Close()

	return mimetype.DetectReader(h)
}

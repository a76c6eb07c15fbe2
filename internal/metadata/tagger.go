package metadata

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"discogs/internal/provider/discogs"

	"go.senan.xyz/taglib"
)

// TagLib property names for the label fields Discogs provides.
const (
	tagLabel          = "LABEL"
	tagCatalogNumber  = "CATALOGNUMBER"
	tagBarcode        = "BARCODE"
	tagReleaseCountry = "RELEASECOUNTRY"
)

// TagsFromRelease maps a Discogs release onto taglib keys. Empty fields are
// left out so existing tags for them survive a write.
func TagsFromRelease(r discogs.Release) map[string][]string {
	tags := make(map[string][]string)

	if album := r.Album(); album != "" {
		tags[taglib.Album] = []string{album}
	}
	if artist := r.Artist(); artist != "" {
		tags[taglib.AlbumArtist] = []string{artist}
		tags[taglib.Artist] = []string{artist}
	}
	if r.Year != "" && r.Year != "0" {
		tags[taglib.Date] = []string{r.Year}
	}
	if len(r.Genre) > 0 {
		tags[taglib.Genre] = []string{strings.Join(r.Genre, ", ")}
	}
	if len(r.Label) > 0 {
		tags[tagLabel] = []string{r.Label[0]}
	}
	if r.CatNo != "" && !strings.EqualFold(r.CatNo, "none") {
		tags[tagCatalogNumber] = []string{r.CatNo}
	}
	if len(r.Barcode) > 0 {
		tags[tagBarcode] = []string{r.Barcode[0]}
	}
	if r.Country != "" {
		tags[tagReleaseCountry] = []string{r.Country}
	}

	return tags
}

// WriteTags writes the release metadata into an audio file.
func WriteTags(path string, r discogs.Release) error {
	if err := taglib.WriteTags(path, TagsFromRelease(r), 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}

// WriteArtwork embeds artwork image data into an audio file.
func WriteArtwork(path string, imageData []byte) error {
	if len(imageData) == 0 {
		return nil
	}
	if err := taglib.WriteImage(path, imageData); err != nil {
		return fmt.Errorf("failed to write artwork to %s: %w", path, err)
	}
	return nil
}

// ReadQuery returns the artist and album already tagged on an audio file.
func ReadQuery(path string) (artist, album string, err error) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read existing tags: %w", err)
	}

	artist = firstTag(tags, taglib.AlbumArtist)
	if artist == "" {
		artist = firstTag(tags, taglib.Artist)
	}
	return artist, firstTag(tags, taglib.Album), nil
}

// ArtworkURL picks the largest image a release advertises.
func ArtworkURL(r discogs.Release) string {
	if r.CoverImage != "" && !strings.HasSuffix(r.CoverImage, "spacer.gif") {
		return r.CoverImage
	}
	return r.Thumb
}

// ExtensionFromURL returns the image file extension (with the dot) of an
// image URL, or ".jpg" when the path carries none.
// Discogs thumbs often end in ".jpeg.jpg"; only the final one is kept.
func ExtensionFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	}
	return ".jpg"
}

func firstTag(tags map[string][]string, key string) string {
	if vals, ok := tags[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}

package discogs

import "strings"

// Release is a database search hit of type "release".
type Release struct {
	ID          int       `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"` // "Artist - Album"
	Label       []string  `json:"label"`
	Format      []string  `json:"format"`
	Country     string    `json:"country"`
	Year        string    `json:"year"`
	Genre       []string  `json:"genre"`
	Style       []string  `json:"style"`
	Barcode     []string  `json:"barcode"`
	CatNo       string    `json:"catno"`
	Thumb       string    `json:"thumb"`
	CoverImage  string    `json:"cover_image"`
	URI         string    `json:"uri"`
	ResourceURL string    `json:"resource_url"`
	Community   Community `json:"community"`
}

// Community holds the want/have counters attached to a release.
type Community struct {
	Want int `json:"want"`
	Have int `json:"have"`
}

// Artist is a database search hit of type "artist".
type Artist struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Thumb       string `json:"thumb"`
	CoverImage  string `json:"cover_image"`
	URI         string `json:"uri"`
	ResourceURL string `json:"resource_url"`
}

// Name returns the artist name, which the search API reports as the title.
func (a Artist) Name() string { return a.Title }

// Artist returns the artist part of a release title.
func (r Release) Artist() string {
	artist, _ := splitTitle(r.Title)
	return artist
}

// Album returns the album part of a release title. Titles without the
// "Artist - " prefix are returned whole.
func (r Release) Album() string {
	_, album := splitTitle(r.Title)
	return album
}

func splitTitle(title string) (artist, album string) {
	if i := strings.Index(title, " - "); i >= 0 {
		return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
	}
	return "", strings.TrimSpace(title)
}

package googlebooks

import "strings"

// Volume is a Google Books volume mapped to the catalog's book shape.
type Volume struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Publisher   string   `json:"publisher"`
	ISBN        string   `json:"isbn"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Rank        *float64 `json:"rank,omitempty"`
	Link        string   `json:"link"`
	Year        string   `json:"year"`
}

// AuthorList joins the authors with "," for the book form.
func (v *Volume) AuthorList() string {
	return strings.Join(v.Authors, ",")
}

// raw API shapes

type rawSearchResponse struct {
	TotalItems int         `json:"totalItems"`
	Items      []rawVolume `json:"items"`
}

type rawVolume struct {
	ID         string        `json:"id"`
	VolumeInfo rawVolumeInfo `json:"volumeInfo"`
}

type rawVolumeInfo struct {
	Title               string          `json:"title"`
	Authors             []string        `json:"authors"`
	Publisher           string          `json:"publisher"`
	PublishedDate       string          `json:"publishedDate"`
	Description         string          `json:"description"`
	IndustryIdentifiers []rawIdentifier `json:"industryIdentifiers"`
	ImageLinks          *rawImageLinks  `json:"imageLinks"`
	AverageRating       *float64        `json:"averageRating"`
	PreviewLink         string          `json:"previewLink"`
}

type rawIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type rawImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// toVolume maps the API shape. ISBN_13 wins over ISBN_10 regardless of
// order; the year is the first four characters of publishedDate.
func (r *rawVolume) toVolume() Volume {
	info := r.VolumeInfo

	v := Volume{
		ID:          r.ID,
		Title:       info.Title,
		Authors:     info.Authors,
		Publisher:   info.Publisher,
		ISBN:        selectISBN(info.IndustryIdentifiers),
		Description: cleanDescription(info.Description),
		Rank:        info.AverageRating,
		Link:        info.PreviewLink,
		Year:        truncateYear(info.PublishedDate),
	}
	if v.Authors == nil {
		v.Authors = []string{}
	}
	if info.ImageLinks != nil {
		v.Thumbnail = info.ImageLinks.Thumbnail
	}
	return v
}

func selectISBN(ids []rawIdentifier) string {
	var isbn10 string
	for _, id := range ids {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			if isbn10 == "" {
				isbn10 = id.Identifier
			}
		}
	}
	return isbn10
}

func truncateYear(date string) string {
	if len(date) > 4 {
		return date[:4]
	}
	return date
}

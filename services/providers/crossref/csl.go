package crossref

import (
	"github.com/upb/paper-assistant-gateway/models"
)

// Work is the subset of a Crossref work record the gateway reads
type Work struct {
	DOI            string     `json:"DOI"`
	URL            string     `json:"URL"`
	Type           string     `json:"type"`
	Title          []string   `json:"title"`
	ContainerTitle []string   `json:"container-title"`
	Author         []Author   `json:"author"`
	Volume         string     `json:"volume"`
	Issue          string     `json:"issue"`
	Page           string     `json:"page"`
	Publisher      string     `json:"publisher"`
	Published      *DateParts `json:"published"`
	PublishedPrint *DateParts `json:"published-print"`
	Issued         *DateParts `json:"issued"`
	Deposited      *DateParts `json:"deposited"`
}

// Author is a Crossref contributor
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// DateParts is a Crossref partial date; parts may be null
type DateParts struct {
	DateParts [][]*int `json:"date-parts"`
}

func (d *DateParts) year() int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 || d.DateParts[0][0] == nil {
		return 0
	}
	return *d.DateParts[0][0]
}

type workEnvelope struct {
	Status  string `json:"status"`
	Message *Work  `json:"message"`
}

// Crossref work types that have a different CSL name
var cslTypes = map[string]string{
	"journal-article":     "article-journal",
	"proceedings-article": "paper-conference",
	"book-chapter":        "chapter",
	"posted-content":      "article",
	"dissertation":        "thesis",
	"monograph":           "book",
	"edited-book":         "book",
	"reference-book":      "book",
}

const defaultCSLType = "article-journal"

// ToCSL normalizes a Crossref work into a CSL-JSON record. The year is taken
// from the first of published, published-print, issued and deposited that has one.
func ToCSL(w *Work) *models.CitationData {
	data := &models.CitationData{
		ID:             w.DOI,
		Type:           cslType(w.Type),
		Title:          first(w.Title),
		ContainerTitle: first(w.ContainerTitle),
		Volume:         w.Volume,
		Issue:          w.Issue,
		Page:           w.Page,
		Publisher:      w.Publisher,
		DOI:            w.DOI,
		URL:            w.URL,
	}

	for _, a := range w.Author {
		data.Author = append(data.Author, models.CitationAuthor{Given: a.Given, Family: a.Family})
	}

	for _, d := range []*DateParts{w.Published, w.PublishedPrint, w.Issued, w.Deposited} {
		if y := d.year(); y != 0 {
			data.Issued = &models.CitationDate{DateParts: [][]int{{y}}}
			break
		}
	}

	return data
}

func cslType(crossrefType string) string {
	if crossrefType == "" {
		return defaultCSLType
	}
	if t, ok := cslTypes[crossrefType]; ok {
		return t
	}
	return crossrefType
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

package models

import (
	"sort"
)

// CitationAuthor is one author entry of a CSL record
type CitationAuthor struct {
	Given  string `json:"given,omitempty"`
	Family string `json:"family,omitempty"`
}

// CitationDate is a CSL date with "date-parts" precision
type CitationDate struct {
	DateParts [][]int `json:"date-parts"`
}

// CitationData is a CSL-JSON record normalized from a bibliographic lookup.
// Empty fields are dropped on encoding.
type CitationData struct {
	ID             string           `json:"id,omitempty"`
	Type           string           `json:"type,omitempty"`
	Title          string           `json:"title,omitempty"`
	Author         []CitationAuthor `json:"author,omitempty"`
	Issued         *CitationDate    `json:"issued,omitempty"`
	ContainerTitle string           `json:"container-title,omitempty"`
	Volume         string           `json:"volume,omitempty"`
	Issue          string           `json:"issue,omitempty"`
	Page           string           `json:"page,omitempty"`
	Publisher      string           `json:"publisher,omitempty"`
	DOI            string           `json:"DOI,omitempty"`
	URL            string           `json:"URL,omitempty"`
}

// Year returns the issued year, or 0 when unknown
func (c *CitationData) Year() int {
	if c.Issued == nil || len(c.Issued.DateParts) == 0 || len(c.Issued.DateParts[0]) == 0 {
		return 0
	}
	return c.Issued.DateParts[0][0]
}

// CitationStyle is a rendering style served through content negotiation
type CitationStyle struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Accept string `json:"-" yaml:"accept"`
}

// DefaultCitationStyle is rendered first when a widget loads a document
const DefaultCitationStyle = "apa"

// CitationStyles lists the supported styles keyed by id
var CitationStyles = map[string]CitationStyle{
	"apa":       {ID: "apa", Name: "APA", Accept: "text/bibliography; style=apa"},
	"mla":       {ID: "mla", Name: "MLA", Accept: "text/bibliography; style=modern-language-association"},
	"chicago":   {ID: "chicago", Name: "Chicago", Accept: "text/bibliography; style=chicago-author-date"},
	"harvard":   {ID: "harvard", Name: "Harvard", Accept: "text/bibliography; style=harvard-cite-them-right"},
	"ieee":      {ID: "ieee", Name: "IEEE", Accept: "text/bibliography; style=ieee"},
	"vancouver": {ID: "vancouver", Name: "Vancouver", Accept: "text/bibliography; style=vancouver"},
	"bibtex":    {ID: "bibtex", Name: "BibTeX", Accept: "application/x-bibtex"},
}

// LookupCitationStyle returns the style for id
func LookupCitationStyle(id string) (CitationStyle, bool) {
	style, ok := CitationStyles[id]
	return style, ok
}

// CitationStyleIDs returns the style ids with the default first and the rest sorted
func CitationStyleIDs() []string {
	ids := make([]string, 0, len(CitationStyles))
	for id := range CitationStyles {
		if id != DefaultCitationStyle {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return append([]string{DefaultCitationStyle}, ids...)
}

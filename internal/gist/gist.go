package gist

import "time"

// Gist is a single hosted snippet as returned by the gists API.
type Gist struct {
	// ID is the opaque identifier used to address the gist remotely
	ID string `json:"id"`

	// Description is the optional, user-written plain-text description
	Description string `json:"description"`

	// HTMLURL is the canonical web URL, shown when there is no description
	HTMLURL string `json:"html_url"`

	Public    bool            `json:"public"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Files     map[string]File `json:"files,omitempty"`
}

// File is one file inside a gist. Content is never fetched.
type File struct {
	Filename string `json:"filename"`
	Language string `json:"language,omitempty"`
	Size     int    `json:"size"`
}

// Label returns the text shown for the gist in a listing: the description
// verbatim on one line, or the URL when the description is blank.
func (g Gist) Label() string {
	if label := CollapseSpace(g.Description); label != "" {
		return label
	}
	return g.HTMLURL
}

package model

// Page is one rendered document handed to the enrichment pipeline
type Page struct {
	// URL is the absolute page URL, directory pages end with a slash
	URL   string
	Title string
	HTML  string

	// SourcePath is the absolute path of the originating markdown file, may be empty
	SourcePath string
	// Keywords is a comma separated list from the source front matter
	Keywords string
	// Description overrides the extracted description when set
	Description string
}

// PageMeta is the metadata extracted from a page and consumed by injection
type PageMeta struct {
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
}

// FAQ is one question and answer pair
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PageGit is the git data attached to a page
type PageGit struct {
	Record        GitRecord
	Contributions []Contribution
}

// Package view holds the display-oriented shapes of CMS records.
package view

// MediaFile is an uploaded image or document.
type MediaFile struct {
	ID              string
	URL             string
	AlternativeText string
	Caption         string
	Width           int
	Height          int
	Mime            string
	// Formats maps a breakpoint or thumbnail name to its URL.
	Formats map[string]string
}

// FormatURL returns the URL of a named format, falling back to the original.
func (m *MediaFile) FormatURL(name string) string {
	if m == nil {
		return ""
	}
	if u, ok := m.Formats[name]; ok && u != "" {
		return u
	}
	return m.URL
}

type News struct {
	ID          string
	Title       string
	PublishDate string
	Content     string
	CoverImage  *MediaFile
	CreatedAt   string
	UpdatedAt   string
}

type Member struct {
	ID                  string
	Name                string
	EnglishName         string
	Role                string
	Bio                 string
	Email               string
	Photo               *MediaFile
	Slug                string
	EnrollmentYear      int
	EnrollmentStatus    string
	ResearchInterests   string
	EducationBackground string
	Publications        string
	CreatedAt           string
	UpdatedAt           string
}

type Publication struct {
	ID               string
	Title            string
	Authors          string
	Year             string
	PublicationVenue string
	VolumeIssuePages string
	PublicationType  string
	DOILink          string
	PDFFile          *MediaFile
	CodeLink         string
	Abstract         string
	ResearchAreas    []ResearchArea
	CreatedAt        string
	UpdatedAt        string
}

type Patent struct {
	ID                string
	Title             string
	Inventors         string
	ApplicationNumber string
	PublicationNumber string
	GrantNumber       string
	Year              string
	Status            string
	PDFFile           *MediaFile
	Link              string
	ResearchAreas     []ResearchArea
	CreatedAt         string
	UpdatedAt         string
}

type Award struct {
	ID              string
	Title           string
	Recipients      string
	CompetitionName string
	AwardRank       string
	Year            string
	Date            string
	PDFFile         *MediaFile
	Link            string
	ResearchAreas   []ResearchArea
	CreatedAt       string
	UpdatedAt       string
}

type Opening struct {
	ID            string
	Title         string
	Slug          string
	PositionType  string
	Description   string
	Requirements  []string
	Benefits      []string
	Location      string
	DeadlineDate  string
	ContactEmail  string
	ApplyLink     string
	Order         int
	Status        string
	ResearchAreas []ResearchArea
	CreatedAt     string
	UpdatedAt     string
}

// ResearchHighlight is one bullet of a research area page.
type ResearchHighlight struct {
	Title       string
	Description string
	Icon        string
	Link        string
}

type ResearchArea struct {
	ID                  string
	Title               string
	Description         string
	Icon                string
	Slug                string
	Order               int
	CoverImage          *MediaFile
	DetailedContent     string
	ResearchHighlights  []ResearchHighlight
	RelatedPublications []Publication
	RelatedPatents      []Patent
	RelatedAwards       []Award
	Keywords            []string
	CreatedAt           string
	UpdatedAt           string
}

type ContactPage struct {
	ID           string
	Title        string
	Content      string
	Address      string
	Email        string
	Phone        string
	MapEmbedCode string
	CreatedAt    string
	UpdatedAt    string
}

type JoinUsPage struct {
	ID        string
	Title     string
	Content   string
	CreatedAt string
	UpdatedAt string
}

// Pagination is the page position of a list.
type Pagination struct {
	Page      int
	PageSize  int
	PageCount int
	Total     int
}

// HasPrev reports whether a previous page exists.
func (p *Pagination) HasPrev() bool { return p != nil && p.Page > 1 }

// HasNext reports whether a next page exists.
func (p *Pagination) HasNext() bool { return p != nil && p.Page < p.PageCount }

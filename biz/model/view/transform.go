package view

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/yi-nology/lab_portal/pkg/cms"
)

const (
	defaultPublicationType = "Journal"
	defaultPositionType    = "Other"
	defaultResearchIcon    = "🧠"
)

// Transformer turns CMS documents into view models. Relative media URLs are
// resolved against the CMS origin.
type Transformer struct {
	origin string
}

// NewTransformer returns a transformer for media served from origin
// (e.g. http://localhost:1337). A trailing /api is dropped.
func NewTransformer(origin string) *Transformer {
	origin = strings.TrimRight(origin, "/")
	return &Transformer{origin: strings.TrimSuffix(origin, "/api")}
}

// MediaURL keeps absolute and protocol-relative URLs and prefixes relative ones.
func (t *Transformer) MediaURL(u string) string {
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http") || strings.HasPrefix(u, "//") {
		return u
	}
	return t.origin + u
}

// Media converts a media field; nil when absent or without URL.
func (t *Transformer) Media(doc cms.Document, field string) *MediaFile {
	m, ok := doc.One(field)
	if !ok {
		return nil
	}
	rawURL := m.String("url")
	if rawURL == "" {
		return nil
	}
	file := &MediaFile{
		ID:              m.ID(),
		URL:             t.MediaURL(rawURL),
		AlternativeText: m.String("alternativeText"),
		Caption:         m.String("caption"),
		Mime:            m.String("mime"),
	}
	file.Width, _ = m.Int("width")
	file.Height, _ = m.Int("height")
	if formats := m.Get("formats"); formats.IsObject() {
		file.Formats = map[string]string{}
		formats.ForEach(func(name, value gjson.Result) bool {
			if u := value.Get("url").String(); u != "" {
				file.Formats[name.String()] = t.MediaURL(u)
			}
			return true
		})
	}
	return file
}

func (t *Transformer) News(doc cms.Document) News {
	cover := t.Media(doc, "cover_image")
	if cover == nil {
		cover = t.Media(doc, "coverImage")
	}
	return News{
		ID:          doc.DocumentID(),
		Title:       doc.String("title"),
		PublishDate: firstNonEmpty(doc.String("publish_date"), doc.String("publishDate")),
		Content:     doc.String("content"),
		CoverImage:  cover,
		CreatedAt:   doc.String("createdAt"),
		UpdatedAt:   doc.String("updatedAt"),
	}
}

func (t *Transformer) Member(doc cms.Document) Member {
	m := Member{
		ID:                  doc.DocumentID(),
		Name:                doc.String("name"),
		EnglishName:         firstNonEmpty(doc.String("english_name"), doc.String("englishName")),
		Role:                doc.String("role"),
		Bio:                 doc.String("bio"),
		Email:               doc.String("email"),
		Photo:               t.Media(doc, "photo"),
		Slug:                doc.String("slug"),
		EnrollmentStatus:    firstNonEmpty(doc.String("enrollment_status"), doc.String("enrollmentStatus")),
		ResearchInterests:   firstNonEmpty(doc.String("research_interests"), doc.String("researchInterests")),
		EducationBackground: firstNonEmpty(doc.String("education_background"), doc.String("educationBackground")),
		Publications:        doc.String("publications"),
		CreatedAt:           doc.String("createdAt"),
		UpdatedAt:           doc.String("updatedAt"),
	}
	if year, ok := doc.Int("enrollment_year"); ok {
		m.EnrollmentYear = year
	} else if year, ok := doc.Int("enrollmentYear"); ok {
		m.EnrollmentYear = year
	}
	return m
}

func (t *Transformer) Publication(doc cms.Document) Publication {
	return Publication{
		ID:               doc.DocumentID(),
		Title:            doc.String("title"),
		Authors:          doc.String("authors"),
		Year:             doc.String("year"),
		PublicationVenue: doc.String("publication_venue"),
		VolumeIssuePages: doc.String("volume_issue_pages"),
		PublicationType:  doc.StringOr("publication_type", defaultPublicationType),
		DOILink:          doc.String("doi_link"),
		PDFFile:          t.Media(doc, "pdf_file"),
		CodeLink:         doc.String("code_link"),
		Abstract:         doc.String("abstract"),
		ResearchAreas:    t.researchAreas(doc, "research_areas"),
		CreatedAt:        doc.String("createdAt"),
		UpdatedAt:        doc.String("updatedAt"),
	}
}

func (t *Transformer) Patent(doc cms.Document) Patent {
	return Patent{
		ID:                doc.DocumentID(),
		Title:             doc.String("title"),
		Inventors:         doc.String("inventors"),
		ApplicationNumber: doc.String("application_number"),
		PublicationNumber: doc.String("publication_number"),
		GrantNumber:       doc.String("grant_number"),
		Year:              doc.String("year"),
		Status:            status(doc),
		PDFFile:           t.Media(doc, "pdf_file"),
		Link:              doc.String("link"),
		ResearchAreas:     t.researchAreas(doc, "research_areas"),
		CreatedAt:         doc.String("createdAt"),
		UpdatedAt:         doc.String("updatedAt"),
	}
}

func (t *Transformer) Award(doc cms.Document) Award {
	return Award{
		ID:              doc.DocumentID(),
		Title:           doc.String("title"),
		Recipients:      doc.String("recipients"),
		CompetitionName: doc.String("competition_name"),
		AwardRank:       doc.String("award_rank"),
		Year:            doc.String("year"),
		Date:            doc.String("date"),
		PDFFile:         t.Media(doc, "pdf_file"),
		Link:            doc.String("link"),
		ResearchAreas:   t.researchAreas(doc, "research_areas"),
		CreatedAt:       doc.String("createdAt"),
		UpdatedAt:       doc.String("updatedAt"),
	}
}

func (t *Transformer) Opening(doc cms.Document) Opening {
	o := Opening{
		ID:            doc.DocumentID(),
		Title:         doc.String("title"),
		Slug:          doc.String("slug"),
		PositionType:  doc.StringOr("position_type", defaultPositionType),
		Description:   doc.String("description"),
		Requirements:  textItems(doc.Get("requirements")),
		Benefits:      textItems(doc.Get("benefits")),
		Location:      doc.String("location"),
		DeadlineDate:  doc.String("deadline_date"),
		ContactEmail:  doc.String("contact_email"),
		ApplyLink:     doc.String("apply_link"),
		Status:        status(doc),
		ResearchAreas: t.researchAreas(doc, "research_areas"),
		CreatedAt:     doc.String("createdAt"),
		UpdatedAt:     doc.String("updatedAt"),
	}
	o.Order, _ = doc.Int("order")
	return o
}

func (t *Transformer) ResearchArea(doc cms.Document) ResearchArea {
	ra := ResearchArea{
		ID:              doc.DocumentID(),
		Title:           doc.String("title"),
		Description:     doc.String("description"),
		Icon:            doc.StringOr("icon", defaultResearchIcon),
		Slug:            doc.String("slug"),
		CoverImage:      t.Media(doc, "cover_image"),
		DetailedContent: doc.String("detailed_content"),
		Keywords:        doc.Strings("keywords"),
		CreatedAt:       doc.String("createdAt"),
		UpdatedAt:       doc.String("updatedAt"),
	}
	ra.Order, _ = doc.Int("order")
	for _, h := range doc.Get("research_highlights").Array() {
		ra.ResearchHighlights = append(ra.ResearchHighlights, ResearchHighlight{
			Title:       h.Get("title").String(),
			Description: h.Get("description").String(),
			Icon:        h.Get("icon").String(),
			Link:        h.Get("link").String(),
		})
	}
	for _, p := range doc.Many("related_publications") {
		ra.RelatedPublications = append(ra.RelatedPublications, t.Publication(p))
	}
	for _, p := range doc.Many("related_patents") {
		ra.RelatedPatents = append(ra.RelatedPatents, t.Patent(p))
	}
	for _, a := range doc.Many("related_awards") {
		ra.RelatedAwards = append(ra.RelatedAwards, t.Award(a))
	}
	return ra
}

func (t *Transformer) ContactPage(doc cms.Document) ContactPage {
	return ContactPage{
		ID:           doc.DocumentID(),
		Title:        doc.String("title"),
		Content:      doc.String("content"),
		Address:      doc.String("address"),
		Email:        doc.String("email"),
		Phone:        firstNonEmpty(doc.String("phone_number"), doc.String("phone")),
		MapEmbedCode: doc.String("map_embed_code"),
		CreatedAt:    doc.String("createdAt"),
		UpdatedAt:    doc.String("updatedAt"),
	}
}

func (t *Transformer) JoinUsPage(doc cms.Document) JoinUsPage {
	return JoinUsPage{
		ID:        doc.DocumentID(),
		Title:     doc.String("title"),
		Content:   doc.String("content"),
		CreatedAt: doc.String("createdAt"),
		UpdatedAt: doc.String("updatedAt"),
	}
}

// researchAreas shallow-converts a relation; nested relations are not followed.
func (t *Transformer) researchAreas(doc cms.Document, field string) []ResearchArea {
	related := doc.Many(field)
	if len(related) == 0 {
		return nil
	}
	out := make([]ResearchArea, 0, len(related))
	for _, r := range related {
		out = append(out, ResearchArea{
			ID:    r.DocumentID(),
			Title: r.String("title"),
			Slug:  r.String("slug"),
			Icon:  r.StringOr("icon", defaultResearchIcon),
		})
	}
	return out
}

// PaginationFrom converts CMS pagination metadata.
func PaginationFrom(p *cms.Pagination) *Pagination {
	if p == nil {
		return nil
	}
	return &Pagination{Page: p.Page, PageSize: p.PageSize, PageCount: p.PageCount, Total: p.Total}
}

// status prefers status_field, which avoids the CMS reserved "status" attribute.
func status(doc cms.Document) string {
	return firstNonEmpty(doc.String("status_field"), doc.String("status"))
}

// textItems accepts both ["a", "b"] and [{"text": "a"}, ...].
func textItems(r gjson.Result) []string {
	var out []string
	for _, item := range r.Array() {
		var s string
		switch {
		case item.Type == gjson.String:
			s = item.String()
		case item.Get("text").Exists():
			s = item.Get("text").String()
		case item.Get("attributes.text").Exists():
			s = item.Get("attributes.text").String()
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package site

import (
	"context"
	"errors"

	"github.com/yi-nology/lab_portal/biz/model/view"
	"github.com/yi-nology/lab_portal/pkg/cms"
	"github.com/yi-nology/lab_portal/pkg/validator"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	collectionNews         = "news-items"
	collectionMembers      = "members"
	collectionResearch     = "research-areas"
	collectionPublications = "publications"
	collectionPatents      = "patents"
	collectionAwards       = "awards"
	collectionOpenings     = "openings"
	collectionContactForms = "contact-forms"
	singleContactPage      = "contact-page"
	singleJoinUsPage       = "join-us-page"

	newsPageSize    = 10
	homeNewsLimit   = 2
	listPageSize    = 100
	homeResearchMax = 3
)

var researchPopulate = []string{"cover_image", "related_publications", "related_patents", "related_awards"}

type homeBody struct {
	Research []view.ResearchArea
	News     []view.News
}

type newsListBody struct {
	News       []view.News
	Pagination *view.Pagination
}

type publicationsBody struct {
	Publications []view.Publication
	Patents      []view.Patent
	Awards       []view.Award
}

type joinBody struct {
	Page     *view.JoinUsPage
	Openings []view.Opening
}

type contactBody struct {
	Page   *view.ContactPage
	Status string
	Form   ContactForm
}

// unavailable logs a failed fetch and turns the page into a placeholder.
func (s *Service) unavailable(l *Layout, what string, err error) {
	s.log.Error("cms fetch failed", zap.String("path", l.Path), zap.String("fetch", what), zap.Error(err))
	l.Unavailable = true
}

func (s *Service) home(ctx context.Context, l *Layout, _ string) (string, error) {
	l.Title = l.T["nav_home"]
	body := &homeBody{}
	l.Body = body

	var (
		g                    errgroup.Group
		research, news       *cms.Response
		researchErr, newsErr error
	)
	g.Go(func() error {
		research, researchErr = s.cms.Find(ctx, collectionResearch, cms.Query{
			Locale:   l.Locale,
			Page:     1,
			PageSize: homeResearchMax,
			Sort:     []string{"order:asc", "createdAt:desc"},
			Populate: []string{"cover_image"},
		})
		return nil
	})
	g.Go(func() error {
		news, newsErr = s.cms.Find(ctx, collectionNews, cms.Query{
			Locale:   l.Locale,
			Page:     1,
			PageSize: homeNewsLimit,
			Sort:     []string{"publish_date:desc"},
			Populate: []string{"cover_image"},
		})
		return nil
	})
	_ = g.Wait()

	if researchErr != nil {
		s.unavailable(l, collectionResearch, researchErr)
	} else {
		for _, doc := range research.Data {
			body.Research = append(body.Research, s.transform.ResearchArea(doc))
		}
	}
	if newsErr != nil {
		s.unavailable(l, collectionNews, newsErr)
	} else {
		for _, doc := range news.Data {
			body.News = append(body.News, s.transform.News(doc))
		}
	}
	return "home", nil
}

func (s *Service) newsList(ctx context.Context, l *Layout, _ string) (string, error) {
	l.Title = l.T["news_title"]
	body := &newsListBody{}
	l.Body = body

	resp, err := s.cms.Find(ctx, collectionNews, cms.Query{
		Locale:   l.Locale,
		Page:     1,
		PageSize: newsPageSize,
		Sort:     []string{"publish_date:desc"},
		Populate: []string{"cover_image"},
	})
	if err != nil {
		s.unavailable(l, collectionNews, err)
		return "news", nil
	}
	for _, doc := range resp.Data {
		body.News = append(body.News, s.transform.News(doc))
	}
	body.Pagination = view.PaginationFrom(resp.Pagination)
	return "news", nil
}

func (s *Service) newsDetail(ctx context.Context, l *Layout, id string) (string, error) {
	if _, ok := validator.SanitizeSlug(id); !ok {
		return "", ErrPageNotFound
	}
	doc, err := s.cms.FindOne(ctx, collectionNews, id, cms.Query{
		Locale:   l.Locale,
		Populate: []string{"cover_image"},
	})
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return "", ErrPageNotFound
		}
		s.unavailable(l, collectionNews, err)
		l.Title = l.T["news_title"]
		return "news_detail", nil
	}
	news := s.transform.News(doc)
	l.Title = news.Title
	l.Body = &news
	return "news_detail", nil
}

func (s *Service) researchList(ctx context.Context, l *Layout, _ string) (string, error) {
	l.Title = l.T["research_title"]
	resp, err := s.cms.Find(ctx, collectionResearch, cms.Query{
		Locale:   l.Locale,
		Page:     1,
		PageSize: listPageSize,
		Sort:     []string{"order:asc", "createdAt:desc"},
		Populate: []string{"cover_image"},
	})
	if err != nil {
		s.unavailable(l, collectionResearch, err)
		return "research", nil
	}
	areas := make([]view.ResearchArea, 0, len(resp.Data))
	for _, doc := range resp.Data {
		areas = append(areas, s.transform.ResearchArea(doc))
	}
	l.Body = areas
	return "research", nil
}

func (s *Service) researchDetail(ctx context.Context, l *Layout, slug string) (string, error) {
	if _, ok := validator.SanitizeSlug(slug); !ok {
		return "", ErrPageNotFound
	}
	doc, err := s.cms.FindFirst(ctx, collectionResearch, cms.Query{
		Locale:       l.Locale,
		Filters:      map[string]string{"slug": slug},
		PopulateDeep: researchPopulate,
	})
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return "", ErrPageNotFound
		}
		s.unavailable(l, collectionResearch, err)
		l.Title = l.T["research_title"]
		return "research_detail", nil
	}
	area := s.transform.ResearchArea(doc)
	l.Title = area.Title
	l.Body = &area
	return "research_detail", nil
}

func (s *Service) memberList(ctx context.Context, l *Layout, _ string) (string, error) {
	l.Title = l.T["members_title"]
	resp, err := s.cms.Find(ctx, collectionMembers, cms.Query{
		Locale:   l.Locale,
		Page:     1,
		PageSize: listPageSize,
		Sort:     []string{"createdAt:desc"},
		Populate: []string{"photo"},
	})
	if err != nil {
		s.unavailable(l, collectionMembers, err)
		return "members", nil
	}
	members := make([]view.Member, 0, len(resp.Data))
	for _, doc := range resp.Data {
		members = append(members, s.transform.Member(doc))
	}
	l.Body = members
	return "members", nil
}

func (s *Service) memberDetail(ctx context.Context, l *Layout, slug string) (string, error) {
	if _, ok := validator.SanitizeSlug(slug); !ok {
		return "", ErrPageNotFound
	}
	doc, err := s.cms.FindFirst(ctx, collectionMembers, cms.Query{
		Locale:   l.Locale,
		Filters:  map[string]string{"slug": slug},
		Populate: []string{"photo"},
	})
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return "", ErrPageNotFound
		}
		s.unavailable(l, collectionMembers, err)
		l.Title = l.T["members_title"]
		return "member_detail", nil
	}
	member := s.transform.Member(doc)
	l.Title = member.Name
	l.Body = &member
	return "member_detail", nil
}

// publications fetches papers, patents and awards concurrently. Each list
// fails on its own.
func (s *Service) publications(ctx context.Context, l *Layout, _ string) (string, error) {
	l.Title = l.T["publications_title"]
	body := &publicationsBody{}
	l.Body = body

	var (
		g                 errgroup.Group
		pubs, pats, awrds *cms.Response
		pubErr, patErr    error
		awardErr          error
	)
	g.Go(func() error {
		pubs, pubErr = s.cms.Find(ctx, collectionPublications, cms.Query{
			Locale:   l.Locale,
			Page:     1,
			PageSize: listPageSize,
			Sort:     []string{"year:desc"},
			Populate: []string{"pdf_file", "research_areas"},
		})
		return nil
	})
	g.Go(func() error {
		pats, patErr = s.cms.Find(ctx, collectionPatents, cms.Query{
			Locale:   l.Locale,
			Page:     1,
			PageSize: listPageSize,
			Sort:     []string{"year:desc", "createdAt:desc"},
			Populate: []string{"research_areas"},
		})
		return nil
	})
	g.Go(func() error {
		awrds, awardErr = s.cms.Find(ctx, collectionAwards, cms.Query{
			Locale:   l.Locale,
			Page:     1,
			PageSize: listPageSize,
			Sort:     []string{"year:desc", "createdAt:desc"},
			Populate: []string{"research_areas"},
		})
		return nil
	})
	_ = g.Wait()

	if pubErr != nil {
		s.unavailable(l, collectionPublications, pubErr)
	} else {
		for _, doc := range pubs.Data {
			body.Publications = append(body.Publications, s.transform.Publication(doc))
		}
	}
	if patErr != nil {
		s.unavailable(l, collectionPatents, patErr)
	} else {
		for _, doc := range pats.Data {
			body.Patents = append(body.Patents, s.transform.Patent(doc))
		}
	}
	if awardErr != nil {
		s.unavailable(l, collectionAwards, awardErr)
	} else {
		for _, doc := range awrds.Data {
			body.Awards = append(body.Awards, s.transform.Award(doc))
		}
	}
	return "publications", nil
}

func (s *Service) join(ctx context.Context, l *Layout, _ string) (string, error) {
	l.Title = l.T["join_title"]
	body := &joinBody{}
	l.Body = body

	var (
		g          errgroup.Group
		page       cms.Document
		openings   *cms.Response
		pageErr    error
		openingErr error
	)
	g.Go(func() error {
		page, pageErr = s.cms.FindSingle(ctx, singleJoinUsPage, cms.Query{Locale: l.Locale})
		return nil
	})
	g.Go(func() error {
		openings, openingErr = s.cms.Find(ctx, collectionOpenings, cms.Query{
			Locale:   l.Locale,
			Page:     1,
			PageSize: listPageSize,
			Sort:     []string{"order:asc", "createdAt:desc"},
			Populate: []string{"research_areas"},
		})
		return nil
	})
	_ = g.Wait()

	switch {
	case pageErr == nil:
		jp := s.transform.JoinUsPage(page)
		body.Page = &jp
		if jp.Title != "" {
			l.Title = jp.Title
		}
	case !errors.Is(pageErr, cms.ErrNotFound):
		s.unavailable(l, singleJoinUsPage, pageErr)
	}
	if openingErr != nil {
		s.unavailable(l, collectionOpenings, openingErr)
	} else {
		for _, doc := range openings.Data {
			body.Openings = append(body.Openings, s.transform.Opening(doc))
		}
	}
	return "join", nil
}

func (s *Service) openingDetail(ctx context.Context, l *Layout, slug string) (string, error) {
	if _, ok := validator.SanitizeSlug(slug); !ok {
		return "", ErrPageNotFound
	}
	doc, err := s.cms.FindFirst(ctx, collectionOpenings, cms.Query{
		Locale:   l.Locale,
		Filters:  map[string]string{"slug": slug},
		Populate: []string{"research_areas"},
	})
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			return "", ErrPageNotFound
		}
		s.unavailable(l, collectionOpenings, err)
		l.Title = l.T["join_title"]
		return "opening_detail", nil
	}
	opening := s.transform.Opening(doc)
	l.Title = opening.Title
	l.Body = &opening
	return "opening_detail", nil
}

func (s *Service) contact(ctx context.Context, l *Layout, _ string) (string, error) {
	l.Title = l.T["contact_title"]
	body := &contactBody{}
	l.Body = body

	doc, err := s.cms.FindSingle(ctx, singleContactPage, cms.Query{Locale: l.Locale})
	if err != nil {
		if !errors.Is(err, cms.ErrNotFound) {
			s.unavailable(l, singleContactPage, err)
		}
		return "contact", nil
	}
	page := s.transform.ContactPage(doc)
	body.Page = &page
	if page.Title != "" {
		l.Title = page.Title
	}
	return "contact", nil
}

package site

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"
	"github.com/yi-nology/lab_portal/pkg/cms"
	"github.com/yi-nology/lab_portal/pkg/locale"
	"github.com/yi-nology/lab_portal/pkg/pagecache"
	"github.com/yi-nology/lab_portal/pkg/static"
)

type fakeCMS struct {
	mu       sync.Mutex
	lists    map[string]string
	singles  map[string]string
	failing  map[string]error
	calls    map[string]int
	created  []any
	queries  []cms.Query
	createTo string
}

func newFakeCMS() *fakeCMS {
	return &fakeCMS{
		lists:   map[string]string{},
		singles: map[string]string{},
		failing: map[string]error{},
		calls:   map[string]int{},
	}
}

func (f *fakeCMS) record(name string, q cms.Query) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	f.queries = append(f.queries, q)
	return f.failing[name]
}

func (f *fakeCMS) Find(_ context.Context, collection string, q cms.Query) (*cms.Response, error) {
	if err := f.record(collection, q); err != nil {
		return nil, err
	}
	resp := &cms.Response{}
	if raw, ok := f.lists[collection]; ok {
		for _, item := range gjson.Parse(raw).Array() {
			resp.Data = append(resp.Data, cms.NewDocument(item))
		}
	}
	return resp, nil
}

func (f *fakeCMS) FindOne(_ context.Context, collection, documentID string, q cms.Query) (cms.Document, error) {
	if err := f.record(collection+"/"+documentID, q); err != nil {
		return cms.Document{}, err
	}
	raw, ok := f.singles[collection+"/"+documentID]
	if !ok {
		return cms.Document{}, &cms.APIError{Status: 404, Name: "NotFoundError", Message: "Not Found"}
	}
	return cms.ParseDocument([]byte(raw)), nil
}

func (f *fakeCMS) FindFirst(ctx context.Context, collection string, q cms.Query) (cms.Document, error) {
	key := collection + "?slug=" + q.Filters["slug"]
	if err := f.record(key, q); err != nil {
		return cms.Document{}, err
	}
	raw, ok := f.singles[key]
	if !ok {
		return cms.Document{}, cms.ErrNotFound
	}
	return cms.ParseDocument([]byte(raw)), nil
}

func (f *fakeCMS) FindSingle(_ context.Context, singleType string, q cms.Query) (cms.Document, error) {
	if err := f.record(singleType, q); err != nil {
		return cms.Document{}, err
	}
	raw, ok := f.singles[singleType]
	if !ok {
		return cms.Document{}, cms.ErrNotFound
	}
	return cms.ParseDocument([]byte(raw)), nil
}

func (f *fakeCMS) Create(_ context.Context, collection string, payload any) (cms.Document, error) {
	if err := f.record("create:"+collection, cms.Query{}); err != nil {
		return cms.Document{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createTo = collection
	f.created = append(f.created, payload)
	return cms.ParseDocument([]byte(`{"id":1}`)), nil
}

func (f *fakeCMS) Origin() string { return "http://cms.local" }

func (f *fakeCMS) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func newTestService(t *testing.T) (*Service, *fakeCMS) {
	t.Helper()
	fsys, err := static.WebFS()
	if err != nil {
		t.Fatalf("WebFS: %v", err)
	}
	renderer, err := NewRenderer(fsys)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	fake := newFakeCMS()
	return NewService(fake, renderer, pagecache.NewLRU(64, time.Minute), nil), fake
}

func body(t *testing.T, page *pagecache.Page) string {
	t.Helper()
	if page == nil {
		t.Fatalf("nil page")
	}
	if page.ContentType != contentType {
		t.Fatalf("content type = %q", page.ContentType)
	}
	return string(page.Body)
}

func TestNewsListRendersAndCaches(t *testing.T) {
	svc, fake := newTestService(t)
	fake.lists[collectionNews] = `[
		{"id":1,"documentId":"n1","title":"Paper accepted","publish_date":"2024-03-05","content":"<p>Our <b>paper</b> was accepted.</p>"},
		{"id":2,"attributes":{"title":"Lab retreat","publish_date":"2024-01-10","content":"Team trip"}}
	]`
	ctx := context.Background()

	page, err := svc.Page(ctx, locale.Chinese, "/news/")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	html := body(t, page)
	for _, want := range []string{"Paper accepted", "Lab retreat", "2024年3月5日", "Our paper was accepted.", `href="/news/n1"`, `lang="zh-CN"`} {
		if !strings.Contains(html, want) {
			t.Fatalf("page missing %q:\n%s", want, html)
		}
	}

	if _, err := svc.Page(ctx, locale.Chinese, "/news"); err != nil {
		t.Fatalf("Page (cached): %v", err)
	}
	if n := fake.count(collectionNews); n != 1 {
		t.Fatalf("cms calls = %d, want 1 (second render served from cache)", n)
	}

	en, err := svc.Page(ctx, locale.English, "/news")
	if err != nil {
		t.Fatalf("Page en: %v", err)
	}
	if !strings.Contains(body(t, en), "March 5, 2024") {
		t.Fatalf("english page should format dates in English")
	}
	if n := fake.count(collectionNews); n != 2 {
		t.Fatalf("locales must be cached separately, cms calls = %d", n)
	}
	for _, q := range fake.queries {
		if q.Locale == "" {
			t.Fatalf("query without locale: %+v", q)
		}
	}
}

func TestUnavailablePageIsNotCached(t *testing.T) {
	svc, fake := newTestService(t)
	fake.failing[collectionMembers] = errors.New("dial tcp: connection refused")
	ctx := context.Background()

	page, err := svc.Page(ctx, locale.English, "/members")
	if err != nil {
		t.Fatalf("CMS failures must render a placeholder, got %v", err)
	}
	if !strings.Contains(body(t, page), MessagesFor(locale.English)["unavailable"]) {
		t.Fatalf("placeholder notice missing")
	}

	delete(fake.failing, collectionMembers)
	fake.lists[collectionMembers] = `[{"id":3,"name":"Li Lei","slug":"li-lei","role":"PhD student"}]`
	page, err = svc.Page(ctx, locale.English, "/members")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if !strings.Contains(body(t, page), "Li Lei") {
		t.Fatalf("expected fresh content after recovery")
	}
}

func TestPublicationsToleratesPartialFailure(t *testing.T) {
	svc, fake := newTestService(t)
	fake.lists[collectionPublications] = `[{"id":1,"title":"Deep Things","authors":"A. Author","year":"2024","publication_venue":"NeurIPS"}]`
	fake.lists[collectionAwards] = `[{"id":2,"title":"Gold","competition_name":"ICPC"}]`
	fake.failing[collectionPatents] = errors.New("timeout")

	page, err := svc.Page(context.Background(), locale.English, "/publications")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	html := body(t, page)
	for _, want := range []string{"Deep Things", "Journal", "ICPC", MessagesFor(locale.English)["unavailable"]} {
		if !strings.Contains(html, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestDetailPages(t *testing.T) {
	svc, fake := newTestService(t)
	fake.singles[collectionNews+"/n1"] = `{"id":1,"documentId":"n1","title":"Hello","content":"# Heading\n\n<script>alert(1)</script>Text"}`
	fake.singles[collectionResearch+"?slug=vision"] = `{"id":4,"title":"Vision","slug":"vision","related_publications":{"data":[{"id":9,"attributes":{"title":"Seeing","authors":"B"}}]}}`
	fake.singles[collectionOpenings+"?slug=postdoc"] = `{"id":5,"title":"Postdoc","slug":"postdoc","requirements":[{"text":"PhD"}],"apply_link":"https://apply.example"}`
	ctx := context.Background()

	page, err := svc.Page(ctx, locale.English, "/news/n1")
	if err != nil {
		t.Fatalf("news detail: %v", err)
	}
	html := body(t, page)
	if !strings.Contains(html, "<h1>Heading</h1>") || strings.Contains(html, "<script>") {
		t.Fatalf("rich text not rendered or not sanitized:\n%s", html)
	}

	page, err = svc.Page(ctx, locale.English, "/research/vision")
	if err != nil {
		t.Fatalf("research detail: %v", err)
	}
	if !strings.Contains(body(t, page), "Seeing") || !strings.Contains(body(t, page), "🧠") {
		t.Fatalf("research detail missing related publication or default icon")
	}
	if q := fake.queries[len(fake.queries)-1]; len(q.PopulateDeep) == 0 || q.Filters["slug"] != "vision" {
		t.Fatalf("unexpected research query: %+v", q)
	}

	page, err = svc.Page(ctx, locale.English, "/join/postdoc")
	if err != nil {
		t.Fatalf("opening detail: %v", err)
	}
	if !strings.Contains(body(t, page), "https://apply.example") || !strings.Contains(body(t, page), "PhD") {
		t.Fatalf("opening detail incomplete")
	}
}

func TestPageNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, path := range []string{"/unknown", "/news/missing", "/members/nobody", "/members/Bad%20Slug", "/a/b/c", "/contact/x"} {
		if _, err := svc.Page(ctx, locale.English, path); !errors.Is(err, ErrPageNotFound) {
			t.Fatalf("Page(%q) err = %v, want ErrPageNotFound", path, err)
		}
	}
	if !strings.Contains(body(t, svc.NotFound(locale.Chinese, "/x")), "页面不存在") {
		t.Fatalf("not found page should be localized")
	}
}

func TestHomeAndJoinAndContact(t *testing.T) {
	svc, fake := newTestService(t)
	fake.lists[collectionResearch] = `[{"id":1,"title":"Robotics","slug":"robotics","icon":"🤖"}]`
	fake.lists[collectionNews] = `[{"id":2,"documentId":"n2","title":"Welcome"}]`
	fake.lists[collectionOpenings] = `[{"id":3,"title":"Engineer","slug":"engineer"}]`
	fake.singles[singleJoinUsPage] = `{"id":1,"title":"Work with us","content":"We are hiring."}`
	fake.singles[singleContactPage] = `{"id":1,"title":"Reach us","address":"Room 101","phone_number":"123"}`
	ctx := context.Background()

	cases := map[string][]string{
		"/":        {"Robotics", "🤖", "Welcome"},
		"/join":    {"Work with us", "We are hiring.", "Engineer", "Other"},
		"/contact": {"Reach us", "Room 101", "123", `action="/contact"`},
	}
	for path, wants := range cases {
		page, err := svc.Page(ctx, locale.English, path)
		if err != nil {
			t.Fatalf("Page(%q): %v", path, err)
		}
		html := body(t, page)
		for _, want := range wants {
			if !strings.Contains(html, want) {
				t.Fatalf("Page(%q) missing %q", path, want)
			}
		}
	}
}

func TestSubmitContact(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	invalid := []ContactForm{
		{Name: "", Email: "a@b.c", Message: "hi"},
		{Name: "A", Email: "not-an-email", Message: "hi"},
		{Name: "A", Email: "a@b.c", Message: "   "},
	}
	for _, form := range invalid {
		if err := svc.SubmitContact(ctx, form); !errors.Is(err, ErrInvalidContact) {
			t.Fatalf("SubmitContact(%+v) err = %v", form, err)
		}
	}
	if len(fake.created) != 0 {
		t.Fatalf("invalid forms must not reach the CMS")
	}

	if err := svc.SubmitContact(ctx, ContactForm{Name: " Han ", Email: "han@example.com", Message: "Hello"}); err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}
	if fake.createTo != collectionContactForms {
		t.Fatalf("created in %q", fake.createTo)
	}
	if got := fake.created[0].(ContactForm); got.Name != "Han" {
		t.Fatalf("form not normalized: %+v", got)
	}

	page, err := svc.ContactResult(ctx, locale.English, ContactInvalid, ContactForm{Name: "Han", Message: "keep me"})
	if err != nil {
		t.Fatalf("ContactResult: %v", err)
	}
	html := body(t, page)
	if !strings.Contains(html, MessagesFor(locale.English)["form_invalid"]) || !strings.Contains(html, "keep me") {
		t.Fatalf("contact result should show the error and keep the input")
	}
}

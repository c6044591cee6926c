package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/models"
)

// mockBlogService is an in-memory implementation of BlogService
type mockBlogService struct {
	posts         map[int]*models.BlogPost
	lastFilter    models.BlogFilter
	publishedOnly bool
	created       *models.CreateBlogPostRequest
}

func newMockBlogService() *mockBlogService {
	return &mockBlogService{posts: map[int]*models.BlogPost{
		1: {ID: 1, Title: "Hello", Slug: "hello", Status: models.StatusPublished, Tags: []string{"go"}},
		2: {ID: 2, Title: "Draft", Slug: "draft", Status: models.StatusDraft},
	}}
}

func (m *mockBlogService) List(ctx context.Context, filter models.BlogFilter, params models.ListParams) (*models.ListResult[models.BlogPost], error) {
	m.lastFilter = filter
	var posts []models.BlogPost
	for id := 1; id <= len(m.posts); id++ {
		if p, ok := m.posts[id]; ok && (filter.Status == "" || p.Status == filter.Status) {
			posts = append(posts, *p)
		}
	}
	return models.NewListResult(params, posts), nil
}

func (m *mockBlogService) GetByID(ctx context.Context, id int, publishedOnly bool) (*models.BlogPost, error) {
	m.publishedOnly = publishedOnly
	p, ok := m.posts[id]
	if !ok || (publishedOnly && p.Status != models.StatusPublished) {
		return nil, apperrors.NotFound("Blog post not found")
	}
	return p, nil
}

func (m *mockBlogService) GetBySlug(ctx context.Context, slug string, publicView bool) (*models.BlogPost, error) {
	for _, p := range m.posts {
		if p.Slug == slug && (!publicView || p.Status == models.StatusPublished) {
			p.ContentHTML = "<p>rendered</p>"
			return p, nil
		}
	}
	return nil, apperrors.NotFound("Blog post not found")
}

func (m *mockBlogService) Create(ctx context.Context, req *models.CreateBlogPostRequest, authorID *int) (*models.BlogPost, error) {
	m.created = req
	p := req.ToPost()
	p.ID = 3
	p.AuthorID = authorID
	m.posts[p.ID] = p
	return p, nil
}

func (m *mockBlogService) Update(ctx context.Context, id int, req *models.UpdateBlogPostRequest) (*models.BlogPost, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperrors.NotFound("Blog post not found")
	}
	req.Apply(p)
	return p, nil
}

func (m *mockBlogService) Delete(ctx context.Context, id int) error {
	if _, ok := m.posts[id]; !ok {
		return apperrors.NotFound("Blog post not found")
	}
	delete(m.posts, id)
	return nil
}

func (m *mockBlogService) Categories(ctx context.Context, publishedOnly bool) ([]string, error) {
	return []string{"engineering"}, nil
}

func (m *mockBlogService) Tags(ctx context.Context, publishedOnly bool) ([]string, error) {
	m.publishedOnly = publishedOnly
	return []string{"go"}, nil
}

func (m *mockBlogService) ToggleFeatured(ctx context.Context, id int) (*models.BlogPost, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperrors.NotFound("Blog post not found")
	}
	p.Featured = !p.Featured
	return p, nil
}

func (m *mockBlogService) OwnerID(ctx context.Context, id int) (*int, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperrors.NotFound("Blog post not found")
	}
	return p.AuthorID, nil
}

func TestBlogHandler_List_AnonymousOnlyPublished(t *testing.T) {
	svc := newMockBlogService()
	router := newTestRouter(NewBlogHandler(svc, newTestBase()))

	rec := doRequest(t, router, http.MethodGet, "/blog?status=draft&tag=go&featured=maybe", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusPublished, svc.lastFilter.Status)
	assert.Equal(t, "go", svc.lastFilter.Tag)
	assert.Nil(t, svc.lastFilter.Featured)

	var data struct {
		Posts []models.BlogPost `json:"posts"`
	}
	decodeData(t, decodeEnvelope(t, rec), &data)
	for _, p := range data.Posts {
		assert.Equal(t, models.StatusPublished, p.Status)
	}
}

func TestBlogHandler_List_Admin(t *testing.T) {
	svc := newMockBlogService()
	router := newTestRouter(NewBlogHandler(svc, newTestBase()))

	rec := doRequest(t, router, http.MethodGet, "/blog?status=draft", nil, superToken)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusDraft, svc.lastFilter.Status)
}

func TestBlogHandler_GetBySlug(t *testing.T) {
	router := newTestRouter(NewBlogHandler(newMockBlogService(), newTestBase()))

	rec := doRequest(t, router, http.MethodGet, "/blog/slug/hello", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Post models.BlogPost `json:"post"`
	}
	decodeData(t, decodeEnvelope(t, rec), &data)
	assert.Equal(t, "<p>rendered</p>", data.Post.ContentHTML)

	rec = doRequest(t, router, http.MethodGet, "/blog/slug/draft", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlogHandler_Lookups(t *testing.T) {
	svc := newMockBlogService()
	router := newTestRouter(NewBlogHandler(svc, newTestBase()))

	rec := doRequest(t, router, http.MethodGet, "/blog/tags", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.publishedOnly)
	var tags struct {
		Tags []string `json:"tags"`
	}
	decodeData(t, decodeEnvelope(t, rec), &tags)
	assert.Equal(t, []string{"go"}, tags.Tags)

	rec = doRequest(t, router, http.MethodGet, "/blog/tags", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.publishedOnly)

	rec = doRequest(t, router, http.MethodGet, "/blog/categories", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBlogHandler_GetByID_Draft(t *testing.T) {
	router := newTestRouter(NewBlogHandler(newMockBlogService(), newTestBase()))

	rec := doRequest(t, router, http.MethodGet, "/blog/2", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/blog/2", nil, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBlogHandler_Writes(t *testing.T) {
	svc := newMockBlogService()
	router := newTestRouter(NewBlogHandler(svc, newTestBase()))
	body := map[string]any{"title": "New", "excerpt": "Short", "content": "Long text", "category": "engineering"}

	rec := doRequest(t, router, http.MethodPost, "/blog", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, svc.created)

	rec = doRequest(t, router, http.MethodPost, "/blog", body, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.posts[3].AuthorID)
	assert.Equal(t, 1, *svc.posts[3].AuthorID)

	rec = doRequest(t, router, http.MethodPut, "/blog/3", map[string]any{"excerpt": "Shorter"}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Shorter", svc.posts[3].Excerpt)

	rec = doRequest(t, router, http.MethodPatch, "/blog/3/featured", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.posts[3].Featured)

	rec = doRequest(t, router, http.MethodDelete, "/blog/3", nil, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, router, http.MethodDelete, "/blog/3", nil, adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

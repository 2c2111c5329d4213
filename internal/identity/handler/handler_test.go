package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Resolver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"webfinger/internal/identity/builder"
	"webfinger/internal/identity/handler/mocks"
	"webfinger/internal/identity/models"
	"webfinger/internal/identity/service"
	"webfinger/internal/identity/source"
	"webfinger/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	resolver *mocks.MockResolver
	router   http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.resolver = mocks.NewMockResolver(s.ctrl)
	s.router = newRouter(s.resolver)
}

func newRouter(resolver Resolver) http.Handler {
	r := chi.NewRouter()
	New(resolver, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func webfingerPath(resource string) string {
	return Path + "?resource=" + url.QueryEscape(resource)
}

func (s *HandlerSuite) TestFoundReturnsJRD() {
	rec := models.DiscoveryRecord{
		Subject: "acct:alice@example.com",
		Aliases: []string{"https://example.com/@alice"},
		Links:   []models.LinkRecord{{Rel: "self", Href: "https://example.com/users/alice", Type: "application/activity+json"}},
	}
	s.resolver.EXPECT().Lookup(gomock.Any(), "acct:alice@example.com").Return(rec, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, webfingerPath("acct:alice@example.com")))

	testutil.AssertStatusOK(s.T(), rr)
	s.Equal("application/jrd+json", rr.Header().Get("Content-Type"))
	got := testutil.UnmarshalResponse[models.DiscoveryRecord](s.T(), rr)
	s.Equal(rec, *got)
}

func (s *HandlerSuite) TestMissingResourceIs400() {
	s.resolver.EXPECT().Lookup(gomock.Any(), "").Return(models.DiscoveryRecord{}, service.ErrMissingParameter).Times(2)

	for _, path := range []string{Path, Path + "?resource="} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "Missing resource parameter")
	}
}

func (s *HandlerSuite) TestUnknownResourceIs404() {
	s.resolver.EXPECT().Lookup(gomock.Any(), "acct:nobody@example.com").Return(models.DiscoveryRecord{}, service.ErrNotFound)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, webfingerPath("acct:nobody@example.com")))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "Resource not found")
}

func (s *HandlerSuite) TestUnexpectedErrorIs500WithoutDetails() {
	s.resolver.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(models.DiscoveryRecord{}, errors.New("registry exploded"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, webfingerPath("acct:a@example.com")))

	testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
	s.NotContains(rr.Body.String(), "exploded")
}

func (s *HandlerSuite) TestOnlyGetIsRouted() {
	s.resolver.EXPECT().Lookup(gomock.Any(), gomock.Any()).Times(0)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, webfingerPath("acct:a@example.com")))

	testutil.AssertStatus(s.T(), rr, http.StatusMethodNotAllowed)
}

// End to end through the real builder and service.
func TestWebFingerWithRealService(t *testing.T) {
	reg, _ := builder.Build(source.KeyValues{
		"USER_1_EMAIL":       "alice@example.com",
		"USER_2_EMAIL":       "bob@example.com",
		"USER_2_ALIASES":     "https://a.example,not a url,https://b.example",
		"USER_2_LINK_1_REL":  "self",
		"USER_2_LINK_1_HREF": "https://example.com/users/bob",
		"USER_2_LINK_2_REL":  "broken",
		"USER_2_LINK_2_HREF": "::::",
	})
	svc, err := service.New(reg)
	if err != nil {
		t.Fatalf("service.New: %v", err)
	}
	router := newRouter(svc)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, webfingerPath("acct:alice@example.com")))
	testutil.AssertStatusOK(t, rr)
	assert.JSONEq(t, `{"subject":"acct:alice@example.com","aliases":[],"links":[]}`, rr.Body.String())

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, webfingerPath("acct:bob@example.com")))
	testutil.AssertStatusOK(t, rr)
	assert.JSONEq(t, `{
		"subject":"acct:bob@example.com",
		"aliases":["https://a.example","https://b.example"],
		"links":[{"rel":"self","href":"https://example.com/users/bob"}]
	}`, rr.Body.String())

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, webfingerPath("acct:nobody@example.com")))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "Resource not found")
}

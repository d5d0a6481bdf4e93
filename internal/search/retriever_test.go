package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/sportcheck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	search      *Response
	searchErr   error
	follow      *Response
	followErr   error
	queries     []string
	followed    []string
	searchCalls int
}

func (f *fakeClient) Search(ctx context.Context, query string, num int) (*Response, error) {
	f.searchCalls++
	f.queries = append(f.queries, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search, nil
}

func (f *fakeClient) Follow(ctx context.Context, link string) (*Response, error) {
	f.followed = append(f.followed, link)
	if f.followErr != nil {
		return nil, f.followErr
	}
	return f.follow, nil
}

func title(s string) *string { return &s }

func teamA() model.ParsedEntities {
	return model.ParsedEntities{
		Subject:      model.StringPtr("Team A"),
		Event:        model.StringPtr("championship"),
		Date:         model.StringPtr("2023-06-01"),
		PlayerOrTeam: model.StringPtr("Team A"),
	}
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "Team A championship 2023-06-01", BuildQuery(teamA()))

	full := model.ParsedEntities{
		Date:               model.StringPtr("2016"),
		LeagueOrTournament: model.StringPtr("NBA"),
		Event:              model.StringPtr("Finals"),
		PlayerOrTeam:       model.StringPtr("Cavaliers"),
		Location:           model.StringPtr("Oakland"),
	}
	assert.Equal(t, "Cavaliers Finals NBA 2016", BuildQuery(full))

	assert.Equal(t, "", BuildQuery(model.ParsedEntities{Subject: model.StringPtr("x"), Location: model.StringPtr("y")}))
}

func TestRetriever_EmptyQuerySkipsProvider(t *testing.T) {
	client := &fakeClient{}
	r := NewRetriever(client, 5, time.Second)

	results := r.Retrieve(context.Background(), model.ParsedEntities{Subject: model.StringPtr("Team A")}, 5)
	assert.Empty(t, results)
	assert.Equal(t, 0, client.searchCalls)
}

func TestRetriever_MapsAndTruncates(t *testing.T) {
	client := &fakeClient{search: &Response{OrganicResults: []OrganicResult{
		{Title: title("One"), Link: "https://a.example/1", Snippet: "first"},
		{Title: title("No link")},
		{Link: "https://a.example/2"},
		{Title: title("Three"), Link: "https://a.example/3", Snippet: "third"},
		{Title: title("Four"), Link: "https://a.example/4", Snippet: "fourth"},
	}}}
	r := NewRetriever(client, 5, time.Second)

	results := r.Retrieve(context.Background(), teamA(), 3)
	require.Len(t, results, 3)
	assert.Equal(t, "https://a.example/1", results[0].Link)
	assert.Nil(t, results[1].Title)
	assert.Equal(t, model.NoSnippet, results[1].Snippet)
	assert.Equal(t, "https://a.example/3", results[2].Link)
	assert.Empty(t, client.followed)
	assert.Equal(t, []string{"Team A championship 2023-06-01"}, client.queries)
}

func TestRetriever_RelatedFallbackSingleHop(t *testing.T) {
	client := &fakeClient{
		search: &Response{RelatedSearches: []RelatedSearch{
			{Query: "team a 2023", SerpAPILink: "https://serpapi.com/search.json?q=team+a+2023"},
			{Query: "other", SerpAPILink: "https://serpapi.com/search.json?q=other"},
		}},
		follow: &Response{
			OrganicResults:  []OrganicResult{{Title: title("Related"), Link: "https://b.example/1", Snippet: "related"}},
			RelatedSearches: []RelatedSearch{{SerpAPILink: "https://serpapi.com/search.json?q=again"}},
		},
	}
	r := NewRetriever(client, 5, time.Second)

	results := r.Retrieve(context.Background(), teamA(), 0)
	require.Len(t, results, 1)
	assert.Equal(t, "https://b.example/1", results[0].Link)
	assert.Equal(t, []string{"https://serpapi.com/search.json?q=team+a+2023"}, client.followed)
}

func TestRetriever_FirstRelatedWithoutLinkStops(t *testing.T) {
	client := &fakeClient{
		search: &Response{RelatedSearches: []RelatedSearch{
			{Query: "first"},
			{Query: "second", SerpAPILink: "https://serpapi.com/search.json?q=second"},
		}},
		follow: &Response{
			OrganicResults: []OrganicResult{{Title: title("Second"), Link: "https://b.example/2", Snippet: "second"}},
		},
	}
	r := NewRetriever(client, 5, time.Second)

	assert.Empty(t, r.Retrieve(context.Background(), teamA(), 5))
	assert.Empty(t, client.followed)
}

func TestRetriever_NoResultsNoRelated(t *testing.T) {
	client := &fakeClient{search: &Response{Error: "Google hasn't returned any results for this query."}}
	r := NewRetriever(client, 5, time.Second)

	assert.Empty(t, r.Retrieve(context.Background(), teamA(), 5))
	assert.Empty(t, client.followed)
}

func TestRetriever_FailuresBecomeEmpty(t *testing.T) {
	client := &fakeClient{searchErr: errors.New("invalid api key")}
	r := NewRetriever(client, 5, time.Second)

	results := r.Retrieve(context.Background(), teamA(), 5)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	_, err := r.Search(context.Background(), teamA(), 5)
	assert.Error(t, err)
}

func TestRetriever_FallbackFailureBecomesEmpty(t *testing.T) {
	client := &fakeClient{
		search:    &Response{RelatedSearches: []RelatedSearch{{SerpAPILink: "https://serpapi.com/x"}}},
		followErr: errors.New("boom"),
	}
	r := NewRetriever(client, 5, time.Second)

	assert.Empty(t, r.Retrieve(context.Background(), teamA(), 5))
}

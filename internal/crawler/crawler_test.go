package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body><ul>
<li class="ciPlayername"><a class="ColumnistSmry" href="/ci/content/player/1.html">WG Grace</a></li>
<li class="ciPlayername"><a class="ColumnistSmry" href="/ci/content/player/2.html">Hon. FSG Calthorpe</a></li>
<li class="ciPlayername"><a class="ColumnistSmry" href="/ci/content/player/3.html">JB Nameless</a></li>
<li class="ciPlayername"><a class="ColumnistSmry" href="/ci/content/player/4.html">KP Broken</a></li>
<li class="other"><a class="ColumnistSmry" href="/ignored.html">ZZ Ignored</a></li>
</ul></body></html>`

func playerHTML(knownAs, fullName string, paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="ciPlayernametxt"><div><h1>`)
	b.WriteString(knownAs)
	b.WriteString(`</h1></div></div>`)
	b.WriteString(`<p class="ciPlayerinformationtxt"><b>Born</b> <span>18 July 1848</span></p>`)
	if fullName != "" {
		b.WriteString(`<p class="ciPlayerinformationtxt"><b>Full name</b> <span>`)
		b.WriteString(fullName)
		b.WriteString(`</span></p>`)
	}
	b.WriteString(`<div id="shrtPrfl">`)
	for _, p := range paragraphs {
		b.WriteString("<p>" + p + "</p>")
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ci/content/player/caps.html", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("country") != "1" || r.URL.Query().Get("class") != "1" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, listingHTML)
	})
	mux.HandleFunc("/ci/content/player/1.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, playerHTML("WG Grace", "William Gilbert Grace",
			"The most famous\ncricketer of his age.", "  ", "A doctor by trade."))
	})
	mux.HandleFunc("/ci/content/player/2.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, playerHTML("Freddie Calthorpe", "Frederick Somerset Gough Calthorpe", "Led the side abroad."))
	})
	mux.HandleFunc("/ci/content/player/3.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, playerHTML("JB Nameless", "", "No full name here."))
	})
	mux.HandleFunc("/ci/content/player/4.html", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSurnameFromListing(t *testing.T) {
	cases := map[string]string{
		"WG Grace":           "Grace",
		"Hon. FSG Calthorpe": "Calthorpe",
		"Rev. V Royle":       "Royle",
		"Sir CA Smith":       "Smith",
		"Inzamam-ul-Haq":     "Inzamam-ul-Haq",
		"AB de Villiers":     "de Villiers",
		"MS":                 "",
	}
	for label, want := range cases {
		assert.Equal(t, want, SurnameFromListing(label), label)
	}
}

func TestParsePlayerPage(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		playerHTML("WG Grace", "William Gilbert Grace", "Line\none.", "Line two.")))
	require.NoError(t, err)

	page := ParsePlayerPage(doc)
	assert.Equal(t, "WG Grace", page.KnownAs)
	assert.Equal(t, "William Gilbert Grace", page.FullName)
	assert.Equal(t, []string{"Line one.", "Line two."}, page.Biography)
}

func TestParseListingResolvesLinks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	require.NoError(t, err)
	base, err := url.Parse("http://example.test")
	require.NoError(t, err)

	links := ParseListing(doc, base)
	require.Len(t, links, 4)
	assert.Equal(t, PlayerLink{Surname: "Grace", URL: "http://example.test/ci/content/player/1.html"}, links[0])
	assert.Equal(t, "Calthorpe", links[1].Surname)
}

func TestListingURL(t *testing.T) {
	c, err := New(Config{BaseURL: "http://example.test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/ci/content/player/caps.html?class=1&country=3", c.ListingURL(3))
}

func TestCrawlSkipsBrokenPlayers(t *testing.T) {
	srv := newTestServer(t)
	c, err := New(Config{BaseURL: srv.URL, Concurrency: 2}, nil)
	require.NoError(t, err)

	profiles, err := c.Crawl(context.Background(), []int{1})
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	assert.Equal(t, 1, profiles[0].NationalityID)
	assert.Equal(t, "Grace", profiles[0].Surname)
	assert.Equal(t, "WG Grace", profiles[0].KnownAs)
	assert.Equal(t, "William Gilbert Grace", profiles[0].FullName)
	assert.Equal(t, []string{"The most famous cricketer of his age.", "A doctor by trade."}, profiles[0].Biography)

	assert.Equal(t, "Calthorpe", profiles[1].Surname)
	assert.Equal(t, "Frederick Somerset Gough", profiles[1].EffectiveGivenNames())
}

func TestCrawlFailsOnMissingListing(t *testing.T) {
	srv := newTestServer(t)
	c, err := New(Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = c.Crawl(context.Background(), []int{2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nationality 2")
}

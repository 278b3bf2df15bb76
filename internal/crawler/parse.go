package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlayerLink is one entry of a nationality's player listing.
type PlayerLink struct {
	Surname string
	URL     string
}

// PlayerPage is what a player profile page yields.
type PlayerPage struct {
	KnownAs   string
	FullName  string
	Biography []string
}

var (
	honorifics = []string{"Hon.", "Rev."}
	titles     = map[string]bool{"sir": true}
)

// SurnameFromListing extracts the surname from a listing label such as
// "HJ Simpson". Tokens written entirely in upper case are taken to be
// initials and dropped, as are honorifics and titles.
func SurnameFromListing(label string) string {
	for _, h := range honorifics {
		label = strings.ReplaceAll(label, h, "")
	}

	kept := make([]string, 0, 2)
	for _, token := range strings.Fields(label) {
		if titles[strings.ToLower(token)] {
			continue
		}
		if token == strings.ToUpper(token) {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

// ParseListing returns the player links of a listing page, resolved against
// base.
func ParseListing(doc *goquery.Document, base *url.URL) []PlayerLink {
	links := make([]PlayerLink, 0, 64)
	doc.Find("li.ciPlayername a.ColumnistSmry").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		surname := SurnameFromListing(sel.Text())
		if surname == "" {
			return
		}
		links = append(links, PlayerLink{
			Surname: surname,
			URL:     base.ResolveReference(ref).String(),
		})
	})
	return links
}

// ParsePlayerPage extracts the display name, the labelled full name and the
// short-profile paragraphs.
func ParsePlayerPage(doc *goquery.Document) PlayerPage {
	page := PlayerPage{
		KnownAs: normalizeText(doc.Find("div.ciPlayernametxt h1").First().Text()),
	}

	doc.Find("p.ciPlayerinformationtxt").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.TrimSpace(sel.Find("b").First().Text()) != "Full name" {
			return true
		}
		page.FullName = normalizeText(sel.Find("span").First().Text())
		return false
	})

	doc.Find("div#shrtPrfl p").Each(func(_ int, sel *goquery.Selection) {
		if line := normalizeText(sel.Text()); line != "" {
			page.Biography = append(page.Biography, line)
		}
	})

	return page
}

// normalizeText flattens a text node onto one line.
func normalizeText(input string) string {
	input = strings.ReplaceAll(input, " ", " ")
	return strings.Join(strings.Fields(input), " ")
}

// Package feed renders journal entries as an RSS 2.0 document.
package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"happythings/internal/models"
)

const (
	ContentType  = "application/rss+xml; charset=utf-8"
	CacheControl = "public, max-age=3600, s-maxage=3600"
	// Limit is how many of the newest entries the feed carries.
	Limit = 100

	pubDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"
	itemSuffix    = " - Things to be Happy About"
)

type Channel struct {
	Title       string
	Description string
	// SiteURL is the public origin, without a trailing slash.
	SiteURL string
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string   `xml:"title"`
	Link          string   `xml:"link"`
	Description   string   `xml:"description"`
	Language      string   `xml:"language"`
	LastBuildDate string   `xml:"lastBuildDate"`
	AtomLink      atomLink `xml:"atom:link"`
	Generator     string   `xml:"generator"`
	Items         []item   `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        guid   `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description cdata  `xml:"description"`
}

type guid struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type cdata struct {
	Value string `xml:",cdata"`
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// noonUTC is the publish time of a dated entry; it keeps the date stable in
// every reader's timezone.
func noonUTC(date string) (string, error) {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("entry date %q: %w", date, err)
	}
	return d.Add(12 * time.Hour).Format(pubDateLayout), nil
}

func thingsHTML(things []string) string {
	var b strings.Builder
	b.WriteString("<ul>\n")
	for _, t := range things {
		b.WriteString("<li>")
		b.WriteString(htmlEscaper.Replace(t))
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>")
	return b.String()
}

// Render writes the feed for entries, which must be newest first.
func Render(w io.Writer, ch Channel, entries []models.Entry, now time.Time) error {
	site := strings.TrimRight(ch.SiteURL, "/")
	doc := rssDoc{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         ch.Title,
			Link:          site,
			Description:   ch.Description,
			Language:      "en-us",
			LastBuildDate: now.UTC().Format(pubDateLayout),
			AtomLink:      atomLink{Href: site + "/feed", Rel: "self", Type: "application/rss+xml"},
			Generator:     "happythings",
			Items:         make([]item, 0, len(entries)),
		},
	}
	for i, e := range entries {
		pub, err := noonUTC(e.Date)
		if err != nil {
			return err
		}
		if i == 0 {
			doc.Channel.LastBuildDate = pub
		}
		link := site + "/?date=" + e.Date
		doc.Channel.Items = append(doc.Channel.Items, item{
			Title:       e.Date + itemSuffix,
			Link:        link,
			GUID:        guid{IsPermaLink: true, Value: link},
			PubDate:     pub,
			Description: cdata{Value: thingsHTML(e.Things)},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	return enc.Close()
}

package feed

import (
	"bytes"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happythings/internal/models"
)

var channel = Channel{Title: "Things to be Happy About", Description: "daily", SiteURL: "https://happy.example/"}

func TestRender(t *testing.T) {
	entries := []models.Entry{
		{Date: "2024-03-02", Things: models.Things{"tea & <cake>", `"quotes"`}},
		{Date: "2024-03-01", Things: models.Things{"sun"}},
	}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, channel, entries, time.Now()))
	out := buf.String()

	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	assert.Contains(t, out, `<atom:link href="https://happy.example/feed" rel="self" type="application/rss+xml"></atom:link>`)
	assert.Contains(t, out, `<lastBuildDate>Sat, 02 Mar 2024 12:00:00 GMT</lastBuildDate>`)
	assert.Contains(t, out, `<title>2024-03-02 - Things to be Happy About</title>`)
	assert.Contains(t, out, `<guid isPermaLink="true">https://happy.example/?date=2024-03-01</guid>`)
	assert.Contains(t, out, `<pubDate>Fri, 01 Mar 2024 12:00:00 GMT</pubDate>`)
	assert.Contains(t, out, "<![CDATA[<ul>\n<li>tea &amp; &lt;cake&gt;</li>\n<li>&quot;quotes&quot;</li>\n</ul>]]>")

	var parsed struct {
		Channel struct {
			Items []struct {
				Link        string `xml:"link"`
				Description string `xml:"description"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed.Channel.Items, 2)
	assert.Equal(t, "https://happy.example/?date=2024-03-02", parsed.Channel.Items[0].Link)
	assert.Equal(t, "<ul>\n<li>sun</li>\n</ul>", parsed.Channel.Items[1].Description)
}

func TestRender_Empty(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, channel, nil, now))
	assert.Contains(t, buf.String(), `<lastBuildDate>Mon, 06 May 2024 07:08:09 GMT</lastBuildDate>`)
	assert.NotContains(t, buf.String(), "<item>")
}

func TestRender_BadDate(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, channel, []models.Entry{{Date: "soon"}}, time.Now())
	assert.Error(t, err)
}

package ingest

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gavel/internal/corpus"
)

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	GUID           string       `xml:"guid"`
	Title          string       `xml:"title"`
	Description    string       `xml:"description"`
	ContentEncoded string       `xml:"encoded"`
	PubDate        string       `xml:"pubDate"`
	Duration       string       `xml:"duration"`
	Enclosure      rssEnclosure `xml:"enclosure"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// ParseFeed decodes an RSS document into episodes. Items without a GUID,
// title, or publication date are skipped; the caller decides what to log.
func ParseFeed(data []byte, feedURL string) ([]*corpus.Episode, []error) {
	var document rssDocument
	if err := xml.Unmarshal(data, &document); err != nil {
		return nil, []error{fmt.Errorf("parse rss: %w", err)}
	}

	var episodes []*corpus.Episode
	var problems []error
	for index, item := range document.Channel.Items {
		guid := strings.TrimSpace(item.GUID)
		title := strings.TrimSpace(item.Title)
		if guid == "" || title == "" {
			problems = append(problems, fmt.Errorf("item %d: missing guid or title", index))
			continue
		}
		pubDate, err := parsePubDate(item.PubDate)
		if err != nil {
			problems = append(problems, fmt.Errorf("item %d (%s): %w", index, guid, err))
			continue
		}

		description := strings.TrimSpace(item.Description)
		descriptionHTML := strings.TrimSpace(item.ContentEncoded)
		if descriptionHTML == "" {
			descriptionHTML = description
		}

		episodes = append(episodes, &corpus.Episode{
			GUID:            guid,
			Title:           title,
			Description:     description,
			DescriptionHTML: descriptionHTML,
			PubDate:         pubDate,
			DurationSeconds: parseDuration(item.Duration),
			FeedURL:         feedURL,
			AudioURL:        strings.TrimSpace(item.Enclosure.URL),
		})
	}
	return episodes, problems
}

func parsePubDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("missing pubDate")
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable pubDate %q", value)
}

// parseDuration accepts plain seconds or (hh:)mm:ss clock notation.
func parseDuration(value string) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if seconds < 0 {
			return 0
		}
		return seconds
	}

	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	var total int64
	for _, part := range parts {
		component, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || component < 0 {
			return 0
		}
		total = total*60 + component
	}
	return total
}

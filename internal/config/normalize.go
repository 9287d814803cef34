package config

import "strings"

func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.DataDir,
		&c.Paths.AudioDir,
		&c.Paths.LogDir,
		&c.Paths.ExportDir,
	} {
		expanded, err := ExpandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Feed.URL = strings.TrimSpace(c.Feed.URL)
	c.Podcast.ShowName = strings.TrimSpace(c.Podcast.ShowName)
	c.Podcast.SegmentName = strings.TrimSpace(c.Podcast.SegmentName)
	hosts := c.Podcast.Hosts[:0]
	for _, host := range c.Podcast.Hosts {
		if trimmed := strings.TrimSpace(host); trimmed != "" {
			hosts = append(hosts, trimmed)
		}
	}
	c.Podcast.Hosts = hosts

	c.Anthropic.APIKey = strings.TrimSpace(c.Anthropic.APIKey)
	c.Anthropic.BaseURL = strings.TrimRight(strings.TrimSpace(c.Anthropic.BaseURL), "/")
	c.Transcriber.APIKey = strings.TrimSpace(c.Transcriber.APIKey)
	c.Transcriber.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcriber.BaseURL), "/")

	c.Segments.Model = strings.TrimSpace(c.Segments.Model)
	c.Extraction.Model = strings.TrimSpace(c.Extraction.Model)
	c.Drafting.Model = strings.TrimSpace(c.Drafting.Model)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	return nil
}

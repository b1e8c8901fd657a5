package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscriber()
	c.normalizeRender()
	return nil
}

func (c *Config) normalizePaths() error {
	for _, field := range []*string{&c.Paths.UploadDir, &c.Paths.OutputDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	return nil
}

func (c *Config) normalizeTranscriber() {
	c.Transcriber.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcriber.BaseURL), "/")
	c.Transcriber.APIKey = strings.TrimSpace(c.Transcriber.APIKey)
	if c.Transcriber.APIKey == "" {
		c.Transcriber.APIKey = strings.TrimSpace(os.Getenv("ASSEMBLYAI_API_KEY"))
	}
	c.Transcriber.SpeechModel = strings.TrimSpace(c.Transcriber.SpeechModel)
	if c.Transcriber.SpeechModel == "" {
		c.Transcriber.SpeechModel = defaultSpeechModel
	}
}

func (c *Config) normalizeRender() {
	c.Render.CaptionStyle = strings.ToLower(strings.TrimSpace(c.Render.CaptionStyle))
	if c.Render.CaptionStyle == "" {
		c.Render.CaptionStyle = defaultCaptionStyle
	}
}

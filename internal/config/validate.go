package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscriber(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.UploadDir == "" {
		return errors.New("paths.upload_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.UploadDir == c.Paths.OutputDir {
		return errors.New("paths.upload_dir and paths.output_dir must differ")
	}
	return nil
}

func (c *Config) validateTranscriber() error {
	if c.Transcriber.BaseURL == "" {
		return errors.New("transcriber.base_url must be set")
	}
	if c.Transcriber.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/caption/config.toml"
		}
		return fmt.Errorf("transcriber.api_key is required. Set ASSEMBLYAI_API_KEY env var or edit %s (create with 'caption config init')", defaultPath)
	}
	if c.Transcriber.PollIntervalSeconds <= 0 {
		return errors.New("transcriber.poll_interval_seconds must be positive")
	}
	if c.Transcriber.MaxPolls <= 0 {
		return errors.New("transcriber.max_polls must be positive")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.TimeoutSeconds <= 0 {
		return errors.New("render.timeout_seconds must be positive")
	}
	switch c.Render.CaptionStyle {
	case "box", "shadow":
		return nil
	default:
		return fmt.Errorf("render.caption_style must be \"box\" or \"shadow\", got %q", c.Render.CaptionStyle)
	}
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.WorkerCount <= 0 {
		return errors.New("workflow.worker_count must be positive")
	}
	if c.Workflow.QueuePollInterval < 0 {
		return errors.New("workflow.queue_poll_interval must not be negative")
	}
	if c.Workflow.ErrorRetryInterval < 0 {
		return errors.New("workflow.error_retry_interval must not be negative")
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.Retention.WindowMinutes <= 0 {
		return errors.New("retention.window_minutes must be positive")
	}
	if c.Retention.SweepIntervalMinutes <= 0 {
		return errors.New("retention.sweep_interval_minutes must be positive")
	}
	return nil
}

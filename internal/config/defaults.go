package config

const (
	defaultUploadDir              = "~/.local/share/caption/uploads"
	defaultOutputDir              = "~/.local/share/caption/outputs"
	defaultLogDir                 = "~/.local/share/caption/logs"
	defaultAPIBind                = "127.0.0.1:7499"
	defaultTranscriberBaseURL     = "https://api.assemblyai.com"
	defaultSpeechModel            = "universal"
	defaultPollIntervalSeconds    = 3
	defaultMaxPolls               = 120
	defaultUploadTimeoutSeconds   = 60
	defaultRequestTimeoutSeconds  = 30
	defaultRenderTimeoutSeconds   = 600
	defaultCaptionStyle           = "box"
	defaultUploadMaxSizeMB        = 500
	defaultWorkerCount            = 4
	defaultQueuePollInterval      = 5
	defaultErrorRetryInterval     = 10
	defaultRetentionWindowMinutes = 60
	defaultSweepIntervalMinutes   = 60
	defaultLogFormat              = "text"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir: defaultUploadDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Transcriber: Transcriber{
			BaseURL:               defaultTranscriberBaseURL,
			SpeechModel:           defaultSpeechModel,
			PollIntervalSeconds:   defaultPollIntervalSeconds,
			MaxPolls:              defaultMaxPolls,
			UploadTimeoutSeconds:  defaultUploadTimeoutSeconds,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Render: Render{
			TimeoutSeconds: defaultRenderTimeoutSeconds,
			CaptionStyle:   defaultCaptionStyle,
		},
		Upload: Upload{
			MaxSizeMB: defaultUploadMaxSizeMB,
		},
		Workflow: Workflow{
			WorkerCount:        defaultWorkerCount,
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Retention: Retention{
			WindowMinutes:        defaultRetentionWindowMinutes,
			SweepIntervalMinutes: defaultSweepIntervalMinutes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package model

// ================ Config ================
type EngineConfig struct {
	// SessionTimeout bounds the multi-turn scenario lock; a lock older than
	// this is treated as absent and the partial session is discarded.
	SessionTimeout string `envconfig:"SESSION_TIMEOUT" default:"300s"`

	Delivery struct {
		// DefaultLoadingSite is used when the input names no loading site.
		DefaultLoadingSite string `envconfig:"DELIVERY_DEFAULT_LOADING_SITE" default:"유진알루미늄"`
	}
}

type SessionStoreConfig struct {
	TTL string `envconfig:"SESSION_STORE_TTL" default:"24h"`
}

type ClassifierModelConfig struct {
	Model       string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"CLASSIFIER_MAX_TOKENS" default:"512"`
	Temperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0.0"`
}

type ExtractorModelConfig struct {
	Model       string  `envconfig:"EXTRACTOR_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"EXTRACTOR_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"EXTRACTOR_TEMPERATURE" default:"0.0"`
}

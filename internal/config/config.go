// Package config provides configuration types and loading for harmony.
package config

// Config is the root configuration struct.
// Top-level groups: Paths, Model, Embedding, Clustering, Debate,
// Interventions, Consensus, Providers, Gateway, Ingest, Channels.
type Config struct {
	Paths         PathsConfig         `json:"paths"`
	Model         ModelConfig         `json:"model"`
	Embedding     EmbeddingConfig     `json:"embedding"`
	Clustering    ClusteringConfig    `json:"clustering"`
	Debate        DebateConfig        `json:"debate"`
	Interventions InterventionsConfig `json:"interventions"`
	Consensus     ConsensusConfig     `json:"consensus"`
	Providers     ProvidersConfig     `json:"providers"`
	Gateway       GatewayConfig       `json:"gateway"`
	Ingest        IngestConfig        `json:"ingest"`
	Channels      ChannelsConfig      `json:"channels"`
}

// PathsConfig groups filesystem path settings.
type PathsConfig struct {
	DataDir string `json:"dataDir" envconfig:"DATA_DIR"`
}

// ModelConfig groups LLM model settings for debate generation.
type ModelConfig struct {
	Name        string  `json:"name" envconfig:"MODEL"`
	MaxTokens   int     `json:"maxTokens" envconfig:"MAX_TOKENS"`
	Temperature float64 `json:"temperature" envconfig:"TEMPERATURE"`
}

// EmbeddingConfig groups sentence-embedding settings. The same model must
// back clustering, interventions, and consensus so similarity scores stay
// comparable across the system.
type EmbeddingConfig struct {
	Model string `json:"model" envconfig:"EMBEDDING_MODEL"`
}

// ClusteringConfig groups the clustering engine settings.
type ClusteringConfig struct {
	KRange         []int `json:"kRange"`
	Seed           int64 `json:"seed" envconfig:"SEED"`
	Restarts       int   `json:"restarts" envconfig:"RESTARTS"`
	MinSubmissions int   `json:"minSubmissions" envconfig:"MIN_SUBMISSIONS"`
	MaxSubmissions int   `json:"maxSubmissions" envconfig:"MAX_SUBMISSIONS"`
}

// DebateConfig groups debate orchestration settings.
type DebateConfig struct {
	MaxRounds             int     `json:"maxRounds" envconfig:"MAX_ROUNDS"`
	MaxMessages           int     `json:"maxMessages" envconfig:"MAX_MESSAGES"`
	ContextMessageLimit   int     `json:"contextMessageLimit" envconfig:"CONTEXT_MESSAGE_LIMIT"`
	MaxPersonaSubmissions int     `json:"maxPersonaSubmissions" envconfig:"MAX_PERSONA_SUBMISSIONS"`
	AgentMessageMaxWords  int     `json:"agentMessageMaxWords" envconfig:"AGENT_MESSAGE_MAX_WORDS"`
	AgentTokenRatio       float64 `json:"agentTokenRatio" envconfig:"AGENT_TOKEN_RATIO"`
	PersonaTemperature    float64 `json:"personaTemperature" envconfig:"PERSONA_TEMPERATURE"`
	SummaryTemperature    float64 `json:"summaryTemperature" envconfig:"SUMMARY_TEMPERATURE"`
}

// InterventionsConfig groups moderator intervention thresholds.
type InterventionsConfig struct {
	RepetitionThreshold   float64 `json:"repetitionThreshold" envconfig:"REPETITION_THRESHOLD"`
	OffTopicThreshold     float64 `json:"offTopicThreshold" envconfig:"OFF_TOPIC_THRESHOLD"`
	StalemateThreshold    float64 `json:"stalemateThreshold" envconfig:"STALEMATE_THRESHOLD"`
	MinMessages           int     `json:"minMessages" envconfig:"MIN_MESSAGES"`
	StalemateMinRound     int     `json:"stalemateMinRound" envconfig:"STALEMATE_MIN_ROUND"`
	StalemateWindowRounds int     `json:"stalemateWindowRounds" envconfig:"STALEMATE_WINDOW_ROUNDS"`
	DetectEthical         bool    `json:"detectEthical" envconfig:"DETECT_ETHICAL"`
}

// ConsensusConfig groups the consensus score weights. Weights must sum to 1.0.
type ConsensusConfig struct {
	SemanticWeight    float64 `json:"semanticWeight" envconfig:"SEMANTIC_WEIGHT"`
	AgreementWeight   float64 `json:"agreementWeight" envconfig:"AGREEMENT_WEIGHT"`
	ConvergenceWeight float64 `json:"convergenceWeight" envconfig:"CONVERGENCE_WEIGHT"`
	ResolutionWeight  float64 `json:"resolutionWeight" envconfig:"RESOLUTION_WEIGHT"`
}

// ProvidersConfig contains LLM provider configurations.
type ProvidersConfig struct {
	OpenAI ProviderConfig `json:"openai"`
}

// ProviderConfig contains settings for a single LLM provider.
type ProviderConfig struct {
	APIKey  string `json:"apiKey" envconfig:"API_KEY"`
	APIBase string `json:"apiBase,omitempty" envconfig:"API_BASE"`
}

// GatewayConfig contains HTTP gateway server settings.
type GatewayConfig struct {
	Host string `json:"host" envconfig:"HOST"`
	Port int    `json:"port" envconfig:"PORT"`
}

// IngestConfig contains submission intake settings.
type IngestConfig struct {
	Kafka KafkaConfig `json:"kafka"`
}

// KafkaConfig configures the Kafka submission intake.
type KafkaConfig struct {
	Enabled       bool   `json:"enabled" envconfig:"ENABLED"`
	Brokers       string `json:"brokers" envconfig:"BROKERS"`
	Topic         string `json:"topic" envconfig:"TOPIC"`
	ConsumerGroup string `json:"consumerGroup" envconfig:"CONSUMER_GROUP"`
}

// ChannelsConfig contains chat platform configurations.
type ChannelsConfig struct {
	Slack SlackConfig `json:"slack"`
}

// SlackConfig configures the Slack submission bridge.
type SlackConfig struct {
	Enabled  bool   `json:"enabled" envconfig:"ENABLED"`
	BotToken string `json:"botToken" envconfig:"BOT_TOKEN"`
	AppToken string `json:"appToken" envconfig:"APP_TOKEN"`
	// Channels maps a Slack channel ID to the project collecting from it.
	Channels map[string]string `json:"channels"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir: "~/.harmony",
		},
		Model: ModelConfig{
			Name:        "gpt-4o",
			MaxTokens:   1000,
			Temperature: 0.7,
		},
		Embedding: EmbeddingConfig{
			Model: "text-embedding-3-small",
		},
		Clustering: ClusteringConfig{
			KRange:         []int{2, 3, 4},
			Seed:           42,
			Restarts:       10,
			MinSubmissions: 2,
			MaxSubmissions: 1000,
		},
		Debate: DebateConfig{
			MaxRounds:             3,
			MaxMessages:           30,
			ContextMessageLimit:   3,
			MaxPersonaSubmissions: 5,
			AgentMessageMaxWords:  100,
			AgentTokenRatio:       0.5,
			PersonaTemperature:    0.7,
			SummaryTemperature:    0.3,
		},
		Interventions: InterventionsConfig{
			RepetitionThreshold:   0.85,
			OffTopicThreshold:     0.5,
			StalemateThreshold:    0.80,
			MinMessages:           3,
			StalemateMinRound:     2,
			StalemateWindowRounds: 5,
			DetectEthical:         true,
		},
		Consensus: ConsensusConfig{
			SemanticWeight:    0.70,
			AgreementWeight:   0.20,
			ConvergenceWeight: 0.05,
			ResolutionWeight:  0.05,
		},
		Gateway: GatewayConfig{
			Host: "127.0.0.1",
			Port: 18890,
		},
		Ingest: IngestConfig{
			Kafka: KafkaConfig{
				Enabled:       false,
				Brokers:       "localhost:9092",
				Topic:         "harmony.submissions",
				ConsumerGroup: "harmony",
			},
		},
	}
}

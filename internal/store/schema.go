package store

import "time"

// Debate lifecycle statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Message types on a debate transcript.
const (
	TypeAgentMessage        = "agent_message"
	TypeOrchestratorMessage = "orchestrator_message"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id          TEXT PRIMARY KEY,
	project_id  TEXT NOT NULL,
	user_id     TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL,
	embedding   BLOB,
	created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_submissions_project ON submissions(project_id);

CREATE TABLE IF NOT EXISTS debates (
	debate_id        TEXT PRIMARY KEY,
	project_id       TEXT NOT NULL,
	status           TEXT NOT NULL,
	consensus_score  REAL,
	error_text       TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_debates_project ON debates(project_id);
CREATE INDEX IF NOT EXISTS idx_debates_status ON debates(status);

CREATE TABLE IF NOT EXISTS debate_agents (
	debate_id        TEXT NOT NULL,
	agent_id         TEXT NOT NULL,
	agent_name       TEXT NOT NULL,
	cluster_id       INTEGER NOT NULL,
	persona_summary  TEXT NOT NULL DEFAULT '',
	UNIQUE(debate_id, agent_id)
);

CREATE TABLE IF NOT EXISTS debate_messages (
	message_id    TEXT PRIMARY KEY,
	debate_id     TEXT NOT NULL,
	agent_id      TEXT NOT NULL,
	agent_name    TEXT NOT NULL,
	content       TEXT NOT NULL,
	round_number  INTEGER NOT NULL,
	message_type  TEXT NOT NULL,
	timestamp     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_messages_debate ON debate_messages(debate_id, round_number, timestamp);

CREATE TABLE IF NOT EXISTS interventions (
	intervention_id    TEXT PRIMARY KEY,
	debate_id          TEXT NOT NULL,
	intervention_type  TEXT NOT NULL,
	reason             TEXT NOT NULL,
	message            TEXT NOT NULL,
	timestamp          TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_interventions_debate ON interventions(debate_id, timestamp);

CREATE TABLE IF NOT EXISTS consensus (
	debate_id           TEXT PRIMARY KEY,
	consensus_score     REAL NOT NULL,
	semantic_alignment  REAL NOT NULL,
	agreement_ratio     REAL NOT NULL,
	convergence_score   REAL NOT NULL,
	resolution_rate     REAL NOT NULL,
	sentiment           TEXT NOT NULL,
	calculated_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS summaries (
	debate_id       TEXT PRIMARY KEY,
	key_alignments  TEXT NOT NULL,
	key_insights    TEXT NOT NULL,
	pro_arguments   TEXT NOT NULL,
	con_arguments   TEXT NOT NULL,
	generated_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

type Submission struct {
	ID        string
	ProjectID string
	UserID    string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

type Debate struct {
	DebateID       string
	ProjectID      string
	Status         string
	ConsensusScore *float64
	ErrorText      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Agent struct {
	AgentID        string
	AgentName      string
	ClusterID      int
	PersonaSummary string
}

type Message struct {
	MessageID   string
	DebateID    string
	AgentID     string
	AgentName   string
	Content     string
	RoundNumber int
	MessageType string
	Timestamp   time.Time
}

type Intervention struct {
	InterventionID string
	DebateID       string
	Type           string
	Reason         string
	Message        string
	Timestamp      time.Time
}

type Consensus struct {
	DebateID          string
	ConsensusScore    float64
	SemanticAlignment float64
	AgreementRatio    float64
	ConvergenceScore  float64
	ResolutionRate    float64
	Sentiment         string
	CalculatedAt      time.Time
}

type Summary struct {
	DebateID      string
	KeyAlignments []string
	KeyInsights   []string
	ProArguments  []string
	ConArguments  []string
	GeneratedAt   time.Time
}

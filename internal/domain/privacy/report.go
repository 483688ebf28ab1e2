// Package privacy builds the self-report served by the privacy-check endpoint:
// proof that the process holds no database connection and stores no user data,
// plus anonymous activity counters.
package privacy

import (
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
)

// databaseEnv lists, per backend, the environment variables whose presence
// would indicate a configured database.
var databaseEnv = []struct {
	name string
	keys []string
}{
	{"mongodb", []string{"MONGODB_URI", "MONGO_URL"}},
	{"postgresql", []string{"DATABASE_URL", "POSTGRES_URL"}},
	{"mysql", []string{"MYSQL_URL", "DB_HOST"}},
	{"redis", []string{"REDIS_URL", "UPSTASH_REDIS_REST_URL"}},
	{"supabase", []string{"SUPABASE_URL"}},
	{"planetscale", []string{"PLANETSCALE_URL"}},
	{"neon", []string{"NEON_URL"}},
}

// Report is the JSON body of the privacy check.
type Report struct {
	Timestamp           string            `json:"timestamp"`
	RequestID           string            `json:"requestId"`
	MemoryUsage         MemoryUsage       `json:"memoryUsage"`
	Uptime              float64           `json:"uptime"`
	NoDatabaseConnected bool              `json:"noDatabaseConnected"`
	DatabaseConnections map[string]bool   `json:"databaseConnections"`
	SystemInfo          SystemInfo        `json:"systemInfo"`
	PrivacyCompliance   PrivacyCompliance `json:"privacyCompliance"`
	Activity            Activity          `json:"activity"`
}

// MemoryUsage is heap usage in MiB.
type MemoryUsage struct {
	Used  uint64 `json:"used"`
	Total uint64 `json:"total"`
}

type SystemInfo struct {
	GoVersion    string `json:"goVersion"`
	Platform     string `json:"platform"`
	Architecture string `json:"architecture"`
}

type PrivacyCompliance struct {
	NoUserDataStored         bool `json:"noUserDataStored"`
	NoChatLogsStored         bool `json:"noChatLogsStored"`
	NoPersonalDataCollection bool `json:"noPersonalDataCollection"`
	NoCookiesUsed            bool `json:"noCookiesUsed"`
	NoThirdPartyTracking     bool `json:"noThirdPartyTracking"`
}

// Activity reports anonymous load: how many client buckets the limiter holds
// and how requests ended.
type Activity struct {
	TrackedClients int `json:"trackedClients"`
	ActivitySnapshot
}

// ClientCounter reports how many client keys are currently tracked.
type ClientCounter interface {
	Len() int
}

// Reporter builds Reports. The zero value is not usable; use NewReporter.
type Reporter struct {
	started time.Time
	now     func() time.Time
	getenv  func(string) string
	clients ClientCounter
	stats   *Stats
}

// ReporterOption customizes a Reporter.
type ReporterOption func(*Reporter)

// WithEnv replaces os.Getenv for database detection.
func WithEnv(getenv func(string) string) ReporterOption {
	return func(r *Reporter) { r.getenv = getenv }
}

// WithReporterClock replaces time.Now.
func WithReporterClock(now func() time.Time) ReporterOption {
	return func(r *Reporter) { r.now = now }
}

// NewReporter creates a Reporter whose uptime counts from now. clients and
// stats may be nil.
func NewReporter(clients ClientCounter, stats *Stats, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		now:     time.Now,
		getenv:  os.Getenv,
		clients: clients,
		stats:   stats,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.started = r.now()
	return r
}

// Build assembles a fresh Report with a new request id.
func (r *Reporter) Build() Report {
	now := r.now()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	conns := make(map[string]bool, len(databaseEnv))
	hasDatabase := false
	for _, db := range databaseEnv {
		present := false
		for _, key := range db.keys {
			present = present || r.getenv(key) != ""
		}
		conns[db.name] = present
		hasDatabase = hasDatabase || present
	}

	activity := Activity{ActivitySnapshot: ActivitySnapshot{Outcomes: map[string]int64{}}}
	if r.clients != nil {
		activity.TrackedClients = r.clients.Len()
	}
	if r.stats != nil {
		activity.ActivitySnapshot = r.stats.Snapshot()
	}

	return Report{
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		RequestID: uuid.NewString(),
		MemoryUsage: MemoryUsage{
			Used:  mem.HeapAlloc / 1024 / 1024,
			Total: mem.HeapSys / 1024 / 1024,
		},
		Uptime:              now.Sub(r.started).Seconds(),
		NoDatabaseConnected: !hasDatabase,
		DatabaseConnections: conns,
		SystemInfo: SystemInfo{
			GoVersion:    runtime.Version(),
			Platform:     runtime.GOOS,
			Architecture: runtime.GOARCH,
		},
		PrivacyCompliance: PrivacyCompliance{
			NoUserDataStored:         true,
			NoChatLogsStored:         true,
			NoPersonalDataCollection: true,
			NoCookiesUsed:            true,
			NoThirdPartyTracking:     true,
		},
		Activity: activity,
	}
}

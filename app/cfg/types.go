package cfg

type Cfg struct {
	// Storage configuration
	DBPath       string
	WorkflowsDir string

	// Calendar cache
	RedisAddr        string
	CalendarCacheTTL int

	// Application configuration
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Content processing
	WebhookRate      float64
	OutlineLookahead int
	RenderCacheSize  int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

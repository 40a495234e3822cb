package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	Port         int         `yaml:"port" json:"port"`
	Destination  Destination `yaml:"destination" json:"destination"`
	StatusURL    string      `yaml:"statusUrl,omitempty" json:"statusUrl,omitempty"`
	PollInterval int         `yaml:"pollInterval" json:"pollInterval"` // seconds
	StopOnDone   bool        `yaml:"stopOnDone" json:"stopOnDone"`
	HTTPTimeout  int         `yaml:"httpTimeout" json:"httpTimeout"` // seconds, 0 means no client timeout
	NotifySocket string      `yaml:"notifySocket,omitempty" json:"notifySocket,omitempty"`
	UseNotify    bool        `yaml:"useNotify" json:"useNotify"`
	BatchTTL     int         `yaml:"batchTtl" json:"batchTtl"` // minutes a finished batch stays queryable
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log             string
	UseConfigPath   string
	UsePort         int
	UseDestination  string // overrides destination.url
	UseKind         string // presign|direct
	UseCSRFToken    string
	UseStatusURL    string
	UsePollInterval int
	SkipNotify      bool
	UseNotifySocket string
}

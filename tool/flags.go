package tool

import (
	"flag"

	"github.com/moyoez/filemigrate/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	var cfg types.Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override local API port")
	flag.StringVar(&cfg.UseDestination, "useDestination", "", "override upload destination url (initiate url for presign)")
	flag.StringVar(&cfg.UseKind, "useKind", "", "upload protocol: presign|direct")
	flag.StringVar(&cfg.UseCSRFToken, "useCsrfToken", "", "CSRF token sent with initiate/direct requests")
	flag.StringVar(&cfg.UseStatusURL, "useStatusUrl", "", "job status url to poll")
	flag.IntVar(&cfg.UsePollInterval, "usePollInterval", 0, "status poll interval in seconds")
	flag.BoolVar(&cfg.SkipNotify, "skipNotify", false, "if true, do not forward notifications to the unix socket")
	flag.StringVar(&cfg.UseNotifySocket, "useNotifySocket", "", "unix socket path for notifications (enables notify)")
	flag.Parse()
	return cfg
}

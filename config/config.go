package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rookgm/shopreport/internal/filter"
	"github.com/rookgm/shopreport/internal/models"
	"github.com/rookgm/shopreport/internal/service"
)

const (
	defaultAPIVersion       = "2026-01"
	defaultTimezone         = "Europe/Berlin"
	defaultWindowDays       = 30
	defaultAcceptedStatuses = "paid,partially_paid"
	defaultAnchorField      = filter.AnchorProcessedAt
	defaultRefundMode       = service.RefundModeOrderDay
	defaultPageSize         = 250
	defaultStatus           = "any"
	defaultCursorStrategy   = "link"
	defaultDailyCSV         = "daily_summary.csv"
	defaultSummaryCSV       = "summary.csv"
	defaultExclusionsCSV    = "excluded_orders.csv"
	defaultRefreshInterval  = time.Hour
	defaultLogLevel         = "info"
)

type Config struct {
	StoreName  string
	APIToken   string
	APIVersion string

	Timezone         string
	WindowDays       int
	StartDate        string
	EndDate          string
	AcceptedStatuses string
	AnchorField      string
	RefundMode       string
	Status           string
	RecordCap        int
	PageSize         int
	RequestDelay     time.Duration
	PreFill          bool
	FetchRefunds     bool
	CursorStrategy   string
	AdSpend          string

	DailyCSVPath      string
	SummaryCSVPath    string
	ExclusionsCSVPath string

	DatabaseDSN     string
	ServeAddr       string
	RefreshInterval time.Duration
	TokenKey        string
	MintToken       bool

	LogLevel string
}

var (
	once      sync.Once
	singleton *Config
	loadErr   error
)

// New returns new Config. It parses command line and environment variables
// only once. Environment variables win over flags, a malformed environment
// value is an error rather than a silent fallback to the default.
func New() (*Config, error) {
	once.Do(func() {
		// .env is optional
		_ = godotenv.Load()

		cfg := Config{}

		flag.StringVar(&cfg.StoreName, "store", "", "store name")
		flag.StringVar(&cfg.APIToken, "token", "", "admin api access token")
		flag.StringVar(&cfg.APIVersion, "api-version", defaultAPIVersion, "admin api version")
		flag.StringVar(&cfg.Timezone, "tz", defaultTimezone, "store timezone")
		flag.IntVar(&cfg.WindowDays, "days", defaultWindowDays, "reporting window length in days")
		flag.StringVar(&cfg.StartDate, "start", "", "window start date (2006-01-02), overrides -days")
		flag.StringVar(&cfg.EndDate, "end", "", "window end date (2006-01-02), overrides -days")
		flag.StringVar(&cfg.AcceptedStatuses, "statuses", defaultAcceptedStatuses, "accepted financial statuses, comma separated")
		flag.StringVar(&cfg.AnchorField, "anchor", defaultAnchorField, "anchor timestamp field: created_at or processed_at")
		flag.StringVar(&cfg.RefundMode, "refund-mode", defaultRefundMode, "refund attribution: order_day or refund_day")
		flag.StringVar(&cfg.Status, "status", defaultStatus, "upstream order status filter")
		flag.IntVar(&cfg.RecordCap, "cap", 0, "record cap, 0 is unlimited")
		flag.IntVar(&cfg.PageSize, "page-size", defaultPageSize, "records per page")
		flag.DurationVar(&cfg.RequestDelay, "delay", 0, "fixed delay between page requests")
		flag.BoolVar(&cfg.PreFill, "pre-fill", false, "emit zero rows for empty window days")
		flag.BoolVar(&cfg.FetchRefunds, "fetch-refunds", false, "fetch the refunds sub-resource when not embedded")
		flag.StringVar(&cfg.CursorStrategy, "cursor", defaultCursorStrategy, "pagination cursor strategy: link or page_token")
		flag.StringVar(&cfg.AdSpend, "ad-spend", "0", "ad spend for the summary artifact")
		flag.StringVar(&cfg.DailyCSVPath, "daily-out", defaultDailyCSV, "daily report path")
		flag.StringVar(&cfg.SummaryCSVPath, "summary-out", defaultSummaryCSV, "summary report path")
		flag.StringVar(&cfg.ExclusionsCSVPath, "exclusions-out", defaultExclusionsCSV, "exclusion audit path")
		flag.StringVar(&cfg.DatabaseDSN, "d", "", "database DSN for snapshot persistence")
		flag.StringVar(&cfg.ServeAddr, "serve", "", "report api address, empty disables serving")
		flag.DurationVar(&cfg.RefreshInterval, "refresh", defaultRefreshInterval, "report refresh interval in serve mode")
		flag.StringVar(&cfg.TokenKey, "token-key", "", "hex key for report api tokens")
		flag.BoolVar(&cfg.MintToken, "mint-token", false, "print a report api token and exit")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

		flag.Parse()

		// if environment variable is set, then using it
		envString(&cfg.StoreName, "SHOPIFY_STORE")
		envString(&cfg.APIToken, "SHOPIFY_API_TOKEN")
		envString(&cfg.APIVersion, "SHOPIFY_API_VERSION")
		envString(&cfg.Timezone, "STORE_TIMEZONE")
		envString(&cfg.StartDate, "REPORT_START_DATE")
		envString(&cfg.EndDate, "REPORT_END_DATE")
		envString(&cfg.AcceptedStatuses, "ACCEPTED_STATUSES")
		envString(&cfg.AnchorField, "ANCHOR_FIELD")
		envString(&cfg.RefundMode, "REFUND_MODE")
		envString(&cfg.Status, "ORDER_STATUS_FILTER")
		envString(&cfg.CursorStrategy, "CURSOR_STRATEGY")
		envString(&cfg.AdSpend, "AD_SPEND")
		envString(&cfg.DailyCSVPath, "DAILY_CSV_PATH")
		envString(&cfg.SummaryCSVPath, "SUMMARY_CSV_PATH")
		envString(&cfg.ExclusionsCSVPath, "EXCLUSIONS_CSV_PATH")
		envString(&cfg.DatabaseDSN, "DATABASE_URI")
		envString(&cfg.ServeAddr, "SERVE_ADDRESS")
		envString(&cfg.TokenKey, "REPORT_TOKEN_KEY")
		envString(&cfg.LogLevel, "LOG_LEVEL")

		loadErr = errors.Join(
			envInt(&cfg.WindowDays, "REPORT_WINDOW_DAYS"),
			envInt(&cfg.RecordCap, "RECORD_CAP"),
			envInt(&cfg.PageSize, "PAGE_SIZE"),
			envDuration(&cfg.RequestDelay, "REQUEST_DELAY"),
			envDuration(&cfg.RefreshInterval, "REFRESH_INTERVAL"),
			envBool(&cfg.PreFill, "PRE_FILL"),
			envBool(&cfg.FetchRefunds, "FETCH_REFUNDS"),
		)

		singleton = &cfg
	})

	return singleton, loadErr
}

// Validate checks the configuration before any I/O happens
func (c *Config) Validate() error {
	if c.StoreName == "" || c.APIToken == "" {
		return models.ErrMissingCredentials
	}
	if c.AnchorField != filter.AnchorCreatedAt && c.AnchorField != filter.AnchorProcessedAt {
		return fmt.Errorf("unknown anchor field %q", c.AnchorField)
	}
	if c.RefundMode != service.RefundModeOrderDay && c.RefundMode != service.RefundModeRefundDay {
		return fmt.Errorf("unknown refund mode %q", c.RefundMode)
	}
	if c.CursorStrategy != "link" && c.CursorStrategy != "page_token" {
		return fmt.Errorf("unknown cursor strategy %q", c.CursorStrategy)
	}
	if len(c.Statuses()) == 0 {
		return errors.New("accepted statuses must not be empty")
	}
	if (c.StartDate == "") != (c.EndDate == "") {
		return errors.New("start and end dates must be set together")
	}
	return nil
}

// Statuses returns the accepted financial statuses as a set
func (c *Config) Statuses() map[string]bool {
	set := map[string]bool{}
	for _, s := range strings.Split(c.AcceptedStatuses, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			set[s] = true
		}
	}
	return set
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func envBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	*dst = b
	return nil
}

func envDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

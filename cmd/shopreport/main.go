package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/shopreport/config"
	"github.com/rookgm/shopreport/internal/auth"
	"github.com/rookgm/shopreport/internal/bucket"
	"github.com/rookgm/shopreport/internal/filter"
	handler "github.com/rookgm/shopreport/internal/handler/http"
	"github.com/rookgm/shopreport/internal/logger"
	"github.com/rookgm/shopreport/internal/middleware"
	"github.com/rookgm/shopreport/internal/models"
	"github.com/rookgm/shopreport/internal/report"
	"github.com/rookgm/shopreport/internal/repository"
	"github.com/rookgm/shopreport/internal/repository/postgres"
	"github.com/rookgm/shopreport/internal/service"
	"github.com/rookgm/shopreport/internal/shopify"
	"github.com/rookgm/shopreport/internal/worker"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const mintTokenTTL = 30 * 24 * time.Hour

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	if cfg.MintToken {
		if err := mintToken(cfg); err != nil {
			logger.Log.Fatal("Error minting token", zap.Error(err))
		}
		return
	}

	// validate configuration before any I/O
	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}

	policy, err := buildPolicy(cfg)
	if err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}

	var strategy shopify.CursorStrategy = shopify.LinkHeaderStrategy{}
	if cfg.CursorStrategy == "page_token" {
		strategy = shopify.PageTokenStrategy{}
	}

	client := shopify.NewClient(
		shopify.StoreBaseURL(cfg.StoreName, cfg.APIVersion),
		cfg.APIToken,
		strategy,
		cfg.RequestDelay,
	)
	svc := service.NewReportService(client, *policy)

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := svc.BuildReport(ctx)
	if err != nil {
		logger.Log.Fatal("Error building report", zap.Error(err))
	}

	// artifacts are written only after the full pipeline completed
	if err := report.WriteDaily(cfg.DailyCSVPath, result.Report.Rows); err != nil {
		logger.Log.Fatal("Error writing daily report", zap.Error(err))
	}
	if err := report.WriteSummary(cfg.SummaryCSVPath, result.Summary); err != nil {
		logger.Log.Fatal("Error writing summary report", zap.Error(err))
	}
	if err := report.WriteExclusions(cfg.ExclusionsCSVPath, result.Exclusions); err != nil {
		logger.Log.Fatal("Error writing exclusion audit", zap.Error(err))
	}

	if cfg.DatabaseDSN != "" {
		if err := persistSnapshot(ctx, cfg.DatabaseDSN, result); err != nil {
			logger.Log.Fatal("Error persisting snapshot", zap.Error(err))
		}
	}

	if cfg.ServeAddr == "" {
		logger.Log.Info("Report complete",
			zap.String("daily", cfg.DailyCSVPath),
			zap.String("summary", cfg.SummaryCSVPath),
			zap.String("exclusions", cfg.ExclusionsCSVPath))
		return
	}

	// serve mode: keep refreshing the report and expose it over HTTP
	go worker.NewReportScheduler(svc, cfg.RefreshInterval).Run(ctx)

	reportHandler := handler.NewReportHandler(svc)

	router := chi.NewRouter()
	router.Use(middleware.Logging(logger.Log))

	router.Group(func(group chi.Router) {
		if cfg.TokenKey != "" {
			tokenKey, err := hex.DecodeString(cfg.TokenKey)
			if err != nil {
				logger.Log.Fatal("Error extracting token key", zap.Error(err))
			}
			group.Use(middleware.Auth(auth.NewAuthToken(tokenKey)))
		}
		group.Get("/api/report/daily", reportHandler.GetDailyReport())
		group.Get("/api/report/summary", reportHandler.GetSummary())
		group.Get("/api/report/exclusions", reportHandler.GetExclusions())
	})

	logger.Log.Info("Running report server", zap.String("addr", cfg.ServeAddr))

	if err := http.ListenAndServe(cfg.ServeAddr, router); err != nil {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}

// buildPolicy translates the configuration into the pipeline policy
func buildPolicy(cfg *config.Config) (*service.ReportPolicy, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	var window bucket.Window
	if cfg.StartDate != "" {
		start, err := bucket.ParseDate(cfg.StartDate, loc)
		if err != nil {
			return nil, err
		}
		end, err := bucket.ParseDate(cfg.EndDate, loc)
		if err != nil {
			return nil, err
		}
		window, err = bucket.NewWindow(start, end, loc)
		if err != nil {
			return nil, err
		}
	} else {
		window, err = bucket.LastDays(cfg.WindowDays, time.Now(), loc)
		if err != nil {
			return nil, err
		}
	}

	adSpend, err := decimal.NewFromString(cfg.AdSpend)
	if err != nil {
		return nil, fmt.Errorf("invalid ad spend: %w", err)
	}

	return &service.ReportPolicy{
		Filter: filter.Policy{
			AcceptedStatuses: cfg.Statuses(),
			AnchorField:      cfg.AnchorField,
		},
		Location:     loc,
		Window:       window,
		RefundMode:   cfg.RefundMode,
		PreFill:      cfg.PreFill,
		FetchRefunds: cfg.FetchRefunds,
		AdSpend:      adSpend,
		Status:       cfg.Status,
		PageSize:     cfg.PageSize,
		Cap:          cfg.RecordCap,
	}, nil
}

func persistSnapshot(ctx context.Context, dsn string, result *models.ReportResult) error {
	db, err := postgres.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}

	return repository.NewMetricsRepository(db).SaveSnapshot(ctx, &result.Report)
}

func mintToken(cfg *config.Config) error {
	tokenKey, err := hex.DecodeString(cfg.TokenKey)
	if err != nil {
		return err
	}
	if len(tokenKey) == 0 {
		return fmt.Errorf("token key is not set")
	}

	token, err := auth.NewAuthToken(tokenKey).CreateToken("report-api", mintTokenTTL)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

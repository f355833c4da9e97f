package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go-autoapply/internal/ai"
	"go-autoapply/internal/browser"
	"go-autoapply/internal/config"
	"go-autoapply/internal/errs"
	"go-autoapply/internal/ledger"
	"go-autoapply/internal/page"
	"go-autoapply/internal/run"
	"go-autoapply/internal/schedule"
	"go-autoapply/internal/store"
	"go-autoapply/internal/telegram"

	"github.com/playwright-community/playwright-go"
)

func main() {
	//load config
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	log.Printf("🔧 Config loaded. Campaigns: %d", len(cfg.Campaigns))

	profile, err := cfg.Profile()
	if err != nil {
		log.Fatalf("❌ Failed to load applicant profile: %v", err)
	}

	//init telegram bot
	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatalf("❌ Failed to init Telegram Bot: %v", err)
	}
	log.Println("🤖 Telegram Bot initialized.")

	//init durable state
	fileStore, err := store.NewFileStore(cfg.StorePath)
	if err != nil {
		log.Fatalf("❌ Failed to open state store: %v", err)
	}
	prefs := store.LoadPreferences(fileStore)
	fileStore.Watch(store.KeyPreferences, func() {
		log.Println("🔧 Preferences changed; new values apply on the next run.")
	})

	appliedLedger, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		log.Fatalf("❌ Failed to open applied ledger: %v", err)
	}
	defer appliedLedger.Close()

	//init playwright manager
	pwManager, err := browser.NewManager(cfg.Headless)
	if err != nil {
		log.Fatalf("❌ Failed to init Playwright: %v", err)
	}
	defer pwManager.Close()

	//load session cookies
	var cookies []playwright.OptionalCookie
	cookieFile := filepath.Join(cfg.CookiesPath, "cookies-linkedin.json")
	if loaded, err := browser.LoadCookies(cookieFile); err != nil {
		log.Printf("⚠️ Could not load cookies: %v. Continuing unauthenticated.", err)
	} else {
		log.Printf("🍪 Loaded %d cookies", len(loaded))
		cookies = loaded
	}

	browserCtx, err := pwManager.NewContext(cookies)
	if err != nil {
		log.Fatalf("❌ Failed to create browser context: %v", err)
	}

	pwPage, err := browserCtx.NewPage()
	if err != nil {
		log.Fatalf("❌ Failed to create new page: %v", err)
	}
	log.Println("✅ Browser initialized successfully!")

	//warm up before automation kicks in
	browser.RandomDelay(1000, 3000)
	_ = browser.MouseJiggle(pwPage)

	//wire the run context
	signals := run.NewSignals()
	rc := &run.RunContext{
		Store:    fileStore,
		Adapter:  page.NewPlaywrightAdapter(pwPage),
		AI:       ai.NewGroqClient(cfg.GroqAPIKey),
		Ledger:   appliedLedger,
		Prefs:    prefs,
		Notifier: bot,
		Signals:  signals,
		Profile:  profile,
	}

	scheduler := schedule.NewScheduler(fileStore, prefs.LoopMode)

	//resume a persisted run, else start fresh
	resumed, err := scheduler.Load()
	if err != nil {
		log.Printf("⚠️ Could not load persisted cursor: %v", err)
	}
	if !resumed {
		if err := scheduler.StartNew(cfg.Campaigns); err != nil {
			var cfgErr *errs.ConfigurationError
			if errors.As(err, &cfgErr) {
				_ = bot.ReportError(cfgErr)
				log.Fatalf("❌ %v. Fix the campaign configuration and restart.", cfgErr)
			}
			log.Fatalf("❌ Failed to start: %v", err)
		}
		log.Println("🚀 Starting a fresh run.")
	}

	//SIGINT/SIGTERM stop the run, SIGUSR1 toggles pause
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(signals, cancel)

	orchestrator := run.NewOrchestrator(rc, scheduler)
	if err := orchestrator.Run(ctx); err != nil {
		if errors.Is(err, errs.ErrQuotaExceeded) {
			log.Println("🏁 Stopped: daily quota reached.")
			logApplied(appliedLedger)
			return
		}
		_ = bot.ReportError(err)
		log.Fatalf("❌ Run failed: %v", err)
	}

	logApplied(appliedLedger)
	log.Println("🏁 Execution finished.")
}

func logApplied(l *ledger.Ledger) {
	records, err := l.RecordsForDay(time.Now())
	if err != nil || len(records) == 0 {
		return
	}
	log.Printf("📋 Applied today: %d", len(records))
	for _, rec := range records {
		log.Printf("   • %s @ %s", rec.Title, rec.Company)
	}
}

func handleSignals(signals *run.Signals, cancel context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	for sig := range ch {
		switch sig {
		case syscall.SIGUSR1:
			if signals.TogglePause() {
				log.Println("⏸️ Paused. Send SIGUSR1 again to resume.")
			} else {
				log.Println("▶️ Resumed.")
			}
		default:
			log.Println("🛑 Stop requested, finishing the current step...")
			signals.Stop()
			cancel()
			return
		}
	}
}

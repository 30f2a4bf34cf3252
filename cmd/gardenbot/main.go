package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/marina/gardenbot/config"
	"github.com/marina/gardenbot/internal/advice"
	"github.com/marina/gardenbot/internal/job"
	"github.com/marina/gardenbot/internal/scheduler"
	"github.com/marina/gardenbot/internal/service"
	"github.com/marina/gardenbot/internal/store"
	"github.com/marina/gardenbot/internal/telegram"
	"github.com/marina/gardenbot/internal/weather"
)

const usage = `usage: gardenbot <command>

commands:
  send        build today's care plan and post it to the chat
  poll        fetch chat replies/button taps and record acknowledgements
  daemon      run send (on SEND_CRON) and poll (on POLL_INTERVAL) in one process
  history [n] show the last n recorded care events (default 20)
  check-ai    probe the configured advice provider and report to the chat
  install     add send/poll entries to the user's crontab
  uninstall   remove the crontab entries and the installed binary
  status      show the installed crontab entries
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	ctx := context.Background()

	switch os.Args[1] {
	case "send":
		deps, cleanup := buildDeps(cfg)
		defer cleanup()
		if err := job.Send(ctx, deps); err != nil {
			log.Fatalf("send: %v", err)
		}
	case "poll":
		deps, cleanup := buildDeps(cfg)
		defer cleanup()
		if err := job.Poll(ctx, deps); err != nil {
			log.Fatalf("poll: %v", err)
		}
	case "daemon":
		runDaemon(cfg)
	case "history":
		limit := 20
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil {
				limit = n
			}
		}
		if err := showHistory(cfg, limit); err != nil {
			log.Fatalf("history: %v", err)
		}
	case "check-ai":
		checkAI(ctx, cfg)
	case "install":
		pollMin := int(cfg.PollInterval.Minutes())
		if pollMin < 1 {
			pollMin = 5
		}
		if err := service.Install(cfg.SendCron, pollMin); err != nil {
			log.Fatalf("install: %v", err)
		}
	case "uninstall":
		if err := service.Uninstall(); err != nil {
			log.Fatalf("uninstall: %v", err)
		}
	case "status":
		if err := service.Status(); err != nil {
			log.Fatalf("status: %v", err)
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func buildDeps(cfg *config.Config) (job.Deps, func()) {
	st, err := store.Open(cfg.StoreBackend, cfg.StateDir, cfg.DatabasePath, cfg.DedupWindow)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}

	adv, err := advice.New(advice.Config{
		Provider:     cfg.AdviceProvider,
		GeminiKey:    cfg.GeminiKey,
		OpenAIKey:    cfg.OpenAIKey,
		AnthropicKey: cfg.AnthropicKey,
		Model:        cfg.LLMModel,
	})
	if err != nil {
		log.Fatalf("configuring advice provider: %v", err)
	}

	deps := job.Deps{
		Cfg:     cfg,
		Gateway: telegram.NewClient(cfg.TelegramToken),
		Weather: weather.NewClient(cfg.OpenWeatherKey),
		Advice:  adv,
		Store:   st,
	}
	return deps, func() { st.Close() }
}

func runDaemon(cfg *config.Config) {
	deps, cleanup := buildDeps(cfg)
	defer cleanup()

	sched := scheduler.New(deps, cfg.PollInterval)
	if err := sched.Start(cfg.SendCron); err != nil {
		log.Fatalf("daemon: %v", err)
	}
	defer sched.Stop()

	log.Println("daemon is running. Press Ctrl+C to exit.")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down.")
}

func showHistory(cfg *config.Config, limit int) error {
	st, err := store.Open(cfg.StoreBackend, cfg.StateDir, cfg.DatabasePath, cfg.DedupWindow)
	if err != nil {
		return err
	}
	defer st.Close()

	events, err := st.ListEvents(limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("no care events recorded yet")
		return nil
	}
	for _, e := range events {
		fmt.Printf("%-12s %-8s %-25s %s\n",
			humanize.Time(e.Timestamp), e.Action, e.PlantName, e.Source)
	}
	return nil
}

// checkAI probes the configured provider and posts the verdict to the
// chat, so the probe doubles as an end-to-end delivery check.
func checkAI(ctx context.Context, cfg *config.Config) {
	adv, err := advice.New(advice.Config{
		Provider:     cfg.AdviceProvider,
		GeminiKey:    cfg.GeminiKey,
		OpenAIKey:    cfg.OpenAIKey,
		AnthropicKey: cfg.AnthropicKey,
		Model:        cfg.LLMModel,
	})
	if err != nil {
		log.Fatalf("check-ai: %v", err)
	}
	if adv == nil {
		fmt.Println("no advice provider configured (ADVICE_PROVIDER is empty)")
		return
	}

	var result string
	reply, err := adv.Advise(ctx, "Тестовый запрос. Ответь одним словом: ПРИВЕТ")
	if err != nil {
		result = fmt.Sprintf("❌ Провайдер %s недоступен: %v", cfg.AdviceProvider, err)
	} else {
		result = fmt.Sprintf("✅ Провайдер %s на связи! Ответ: %s", cfg.AdviceProvider, reply)
	}
	fmt.Println(result)

	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		gw := telegram.NewClient(cfg.TelegramToken)
		if err := gw.SendMessage(ctx, cfg.TelegramChatID, result, nil); err != nil {
			log.Printf("check-ai: posting result: %v", err)
		}
	}
}

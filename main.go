package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sprintrace/pkg/apps"
	"sprintrace/pkg/highscore"
	"sprintrace/pkg/hud"
	"sprintrace/pkg/livemap"
	"sprintrace/pkg/notification"
	"sprintrace/pkg/pubsub"
	"sprintrace/pkg/resources"
	"sprintrace/pkg/session"
	"sprintrace/pkg/track"
	"sprintrace/pkg/webserver"
)

const trackName = "sprint"

func main() {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		log.Panic(err)
	}

	// Create a new cancellable background context. Calling `cancel()` leads to the cancellation of the context
	ctx, cancel := context.WithCancel(context.Background())
	exitChan := make(chan bool)

	trackCfg := track.DefaultConfig()
	t, err := track.Build(trackCfg)
	if err != nil {
		log.Panic(err)
	}
	// generated maps are keyed on the layout so a changed route is redrawn
	trackID := trackName + "_" + trackCfg.ID()

	store, err := highscore.NewSQLStore(cfg.dbPath)
	if err != nil {
		log.Panic(err)
	}
	defer store.Close()
	ledger := highscore.NewLedger(store)

	seed := time.Now().UnixNano()
	if cfg.seed != nil {
		seed = *cfg.seed
	}
	rng := rand.New(rand.NewSource(seed))

	results := pubsub.NewPubSub[session.Result]()
	checkpoints := pubsub.NewPubSub[int]()
	defer results.Close()
	defer checkpoints.Close()

	input := session.NewInput()
	runner := session.NewRunner(func() *session.Session {
		return session.New(t, ledger, session.Options{
			Rand: rng,
			OnCheckpoint: func(_ string, next int) {
				checkpoints.Publish(pubsub.TopicCheckpoint, next)
			},
			OnResult: func(r session.Result) {
				results.Publish(pubsub.TopicRaceEnd, r)
			},
		})
	}, input)

	go logEvents(ctx, len(t.CheckpointDistances()), checkpoints.Subscribe(pubsub.TopicCheckpoint), results.Subscribe(pubsub.TopicRaceEnd))

	svgTrack, err := resources.BuildTrackSvg(cfg.resourcesDir, trackID, t)
	if err != nil {
		log.Panic(err)
	}
	thumbnail, err := resources.BuildTrackThumbnail(cfg.resourcesDir, trackID, t)
	if err != nil {
		log.Printf("Error building track thumbnail: %s\n", err)
	}

	wm := webserver.NewManager(cfg.resourcesDir)
	if _, err := livemap.NewLiveMap(wm.Router(), runner, input, ledger, svgTrack); err != nil {
		log.Panic(err)
	}
	wm.Debug()
	go func() {
		if err := wm.Serve(ctx); err != nil {
			log.Printf("webserver stopped: %s\n", err)
		}
	}()

	ticker := time.NewTicker(time.Second / 60)
	go drive(ctx, ticker, runner)

	if cfg.console {
		rp := hud.NewRaceProgress(os.Stdout, t.TotalLength())
		go rp.Render()
		go watch(ctx, rp, runner)
		defer rp.Stop()
	}

	if cfg.token != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.token)
		if err != nil {
			// Abort if something is wrong
			log.Panic(err)
		}
		bot.Debug = false

		if len(cfg.chatIDs) > 0 {
			nm := notification.NewTelegramManager(ctx, bot, cfg.chatIDs...)
			go nm.Start(results.Subscribe(pubsub.TopicRaceEnd), exitChan)
		}

		raceApp := apps.NewRaceApp(bot, apps.RaceMenu(), runner, ledger, t, thumbnail, cfg.liveURL(wm.Addr()))
		b := apps.NewBot(bot, apps.NewMainApp(bot, raceApp))

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		go b.Run(ctx, bot.GetUpdatesChan(u))
		log.Println("Start listening for updates")
	} else {
		log.Println("TELEGRAM_TOKEN not set, bot disabled")
	}

	log.Printf("Drive at %s. Press Ctrl-C to stop it\n", cfg.liveURL(wm.Addr()))
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	// lock the main thread until we receive a signal
	<-sigs

	ticker.Stop()
	close(exitChan)
	cancel()
	// let the webserver drain
	time.Sleep(100 * time.Millisecond)
}

// drive feeds real elapsed time into the runner.
func drive(ctx context.Context, ticker *time.Ticker, runner *session.Runner) {
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			runner.Advance(now.Sub(last).Seconds())
			last = now
		}
	}
}

// watch mirrors the running race on the console bars.
func watch(ctx context.Context, rp *hud.RaceProgress, runner *session.Runner) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if frame, err := runner.Frame(); err == nil {
				rp.Update(frame)
			}
		}
	}
}

func logEvents(ctx context.Context, total int, checkpoints <-chan int, results <-chan session.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-checkpoints:
			if !ok {
				return
			}
			log.Printf("Checkpoint %d/%d\n", next, total)
		case r, ok := <-results:
			if !ok {
				return
			}
			log.Printf("\n%s", hud.RenderResult(r))
		}
	}
}

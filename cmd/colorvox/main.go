// ColorVox - spoken color detection from a live camera.
//
// Captures a frame every few seconds, asks Gemini for the dominant
// color of the framed object, and announces changes out loud. A web
// dashboard exposes the session state and a live camera preview.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/colorvox/colorvox/internal/config"
	"github.com/colorvox/colorvox/internal/log"
	"github.com/colorvox/colorvox/pkg/announce"
	"github.com/colorvox/colorvox/pkg/audio"
	"github.com/colorvox/colorvox/pkg/capture"
	"github.com/colorvox/colorvox/pkg/classify"
	"github.com/colorvox/colorvox/pkg/session"
	"github.com/colorvox/colorvox/pkg/web"
)

func main() {
	autostart := flag.Bool("autostart", false, "Start detecting immediately instead of waiting for the dashboard")
	facing := flag.String("facing", "front", "Initial camera facing mode (front or rear)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Init("info")
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	initialFacing, err := session.ParseFacing(*facing)
	if err != nil {
		log.Error("invalid -facing flag", "error", err)
		os.Exit(1)
	}

	classifier, err := classify.NewGemini(
		classify.WithAPIKey(cfg.GeminiAPIKey),
		classify.WithLogger(log.L()),
	)
	if err != nil {
		log.Error("classifier setup failed", "error", err)
		os.Exit(1)
	}
	defer classifier.Close()

	var synthOpts []announce.Option
	if cfg.TTSBaseURL != "" {
		synthOpts = append(synthOpts, announce.WithBaseURL(cfg.TTSBaseURL))
	}
	if cfg.TTSVoice != "" {
		synthOpts = append(synthOpts, announce.WithVoice(cfg.TTSVoice))
	}
	synthOpts = append(synthOpts, announce.WithLogger(log.L()))
	synth := announce.NewClient(synthOpts...)
	defer synth.Close()

	// Playback is best-effort: without a player binary the color is
	// still detected and shown, just not spoken.
	var player session.ClipPlayer
	if p, err := audio.NewPlayer(log.L()); err != nil {
		log.Warn("announcements will be silent", "error", err)
	} else {
		player = p
	}

	opener := func(f session.Facing) (capture.Source, error) {
		device := cfg.FrontDevice
		if f == session.FacingRear {
			device = cfg.RearDevice
		}
		return capture.OpenWebcam(device)
	}

	// The server broadcasts controller events; it is created right
	// after the controller, before any session can start.
	var srv *web.Server

	ctrl := session.NewController(session.Config{
		Opener:      opener,
		Classifier:  classifier,
		Synthesizer: synth,
		Player:      player,
		Interval:    cfg.Interval,
		Logger:      log.L(),
		OnState: func(st session.State) {
			if srv != nil {
				srv.BroadcastState(st)
			}
		},
		OnFrame: func(jpeg []byte) {
			if srv != nil {
				srv.BroadcastFrame(jpeg)
			}
		},
	})

	if initialFacing != session.FacingFront {
		if err := ctrl.SetFacing(initialFacing); err != nil {
			log.Error("facing setup failed", "error", err)
			os.Exit(1)
		}
	}

	srv = web.NewServer(cfg.Port, ctrl)

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		ctrl.Stop()
		srv.Shutdown()
	}()

	if *autostart {
		if err := ctrl.Start(); err != nil {
			log.Error("session start failed", "error", err)
			// Keep serving: the dashboard can retry activation.
		}
	}

	if err := srv.Start(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	botTickRate    = 60
	botMinTurn     = 0.5 // seconds between input changes
	botMaxTurn     = 2.0
	botIdleChance  = 0.25
	botJoinSpacing = 200 * time.Millisecond
)

// logCue stands in for the countdown sound in headless mode
type logCue struct {
	log zerolog.Logger
}

func (c logCue) Play() { c.log.Info().Msg("countdown cue: play") }
func (c logCue) Stop() { c.log.Info().Msg("countdown cue: stop") }

// Bot drives one lobby over a relay connection with wandering input
type Bot struct {
	Name      string
	transport *WSTransport
	lobby     *Lobby
	rng       *rand.Rand
	turnIn    float64
	log       zerolog.Logger
}

// NewBot joins room code (or creates a room when code is empty)
func NewBot(ctx context.Context, url, code, name string) (*Bot, WelcomeMsg, error) {
	tr, err := DialTransport(ctx, url)
	if err != nil {
		return nil, WelcomeMsg{}, err
	}
	var w WelcomeMsg
	if code == "" {
		w, err = tr.Create(ctx, name, "")
	} else {
		w, err = tr.Join(ctx, code, name, "")
	}
	if err != nil {
		tr.Close()
		return nil, WelcomeMsg{}, err
	}

	b := &Bot{
		Name:      name,
		transport: tr,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:       log.With().Str("bot", name).Str("room", w.Code).Logger(),
	}
	b.lobby = NewLobby(LobbyConfig{
		Transport: tr,
		Cue:       logCue{log: b.log},
		OnStart:   b.start,
	})
	b.lobby.Show(ShowOptions{
		IsHost:   w.Host,
		RoomCode: w.Code,
		SelfID:   w.ID,
		SelfName: name,
		Players:  w.Players,
		Settings: &w.Settings,
	})
	b.lobby.SetHostToken(w.Token)
	return b, w, nil
}

func (b *Bot) start(code string) {
	if err := b.transport.SendStart(b.lobby.HostToken()); err != nil {
		b.log.Warn().Err(err).Msg("send start")
		return
	}
	b.log.Info().Msg("start sent")
}

// wander picks a new random key state every so often
func (b *Bot) wander(dt float64) {
	b.turnIn -= dt
	if b.turnIn > 0 {
		return
	}
	b.turnIn = botMinTurn + b.rng.Float64()*(botMaxTurn-botMinTurn)
	var in MoveInput
	if b.rng.Float64() >= botIdleChance {
		in = MoveInput{
			Up:    b.rng.IntN(3) == 0,
			Down:  b.rng.IntN(3) == 0,
			Left:  b.rng.IntN(3) == 0,
			Right: b.rng.IntN(3) == 0,
		}
	}
	b.lobby.SetInput(in)
}

// Run ticks the lobby until ctx ends, the connection drops or the game starts
func (b *Bot) Run(ctx context.Context) error {
	defer b.transport.Close()
	defer b.lobby.Hide()

	const dt = 1.0 / botTickRate
	ticker := time.NewTicker(time.Second / botTickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.transport.Done():
			return ErrTransportClosed
		case <-b.transport.Started():
			b.log.Info().Msg("game started, leaving lobby")
			return nil
		case <-ticker.C:
			b.wander(dt)
			b.lobby.Update(dt)
			snap := b.lobby.Snapshot()
			if snap.Host && snap.Countdown == CountdownIdle {
				err := b.lobby.BeginCountdown()
				if err != nil && !errors.Is(err, ErrNotEnoughPlayers) {
					b.log.Debug().Err(err).Msg("begin countdown")
				}
			}
		}
	}
}

// RunBots starts cfg.BotCount bots in one room and waits for all of them
func RunBots(ctx context.Context, cfg Config) error {
	code := cfg.BotRoom
	var bots []*Bot
	for i := 0; i < cfg.BotCount; i++ {
		name := fmt.Sprintf("%s%d", cfg.BotName, i+1)
		b, w, err := NewBot(ctx, cfg.BotURL, code, name)
		if err != nil {
			for _, started := range bots {
				started.transport.Close()
			}
			return fmt.Errorf("bot %s: %w", name, err)
		}
		code = w.Code
		bots = append(bots, b)
		log.Info().Str("bot", name).Str("room", code).Bool("host", w.Host).Msg("bot joined")
		time.Sleep(botJoinSpacing)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(bots))
	for i, b := range bots {
		wg.Add(1)
		go func(i int, b *Bot) {
			defer wg.Done()
			errs[i] = b.Run(ctx)
		}(i, b)
	}
	wg.Wait()
	return errors.Join(errs...)
}

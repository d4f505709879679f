// Command autoplay plays a rolling block session through the REST API.
//
// It creates (or resumes) a session, then rolls the block with one of three
// strategies until it stands on the goal or the attempt budget runs out:
//   - solver: plans the shortest path locally from the board layout
//   - hint: asks the server for the next roll each turn
//   - explore: wanders over unvisited safe positions, resetting after each fall
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/generator"
)

var log = logrus.WithField("component", "autoplay")

// PlayOptions bounds a run.
type PlayOptions struct {
	MaxMoves    int           // per attempt
	MaxAttempts int           // resets allowed, plus one
	BatchSize   int           // rolls sent per request
	Delay       time.Duration // pause between requests
}

// Outcome summarises a run.
type Outcome struct {
	Victory  bool
	Attempts int
	Moves    int // in the winning attempt, or the last one
}

var errGaveUp = errors.New("no victory within the attempt budget")

// play drives state to victory with strategy, resetting after falls.
func play(ctx context.Context, client *Client, strategy Strategy, state *engine.GameState, opts PlayOptions) (*Outcome, error) {
	out := &Outcome{}

	for out.Attempts < opts.MaxAttempts {
		out.Attempts++
		if out.Attempts > 1 || state.GameOver {
			var err error
			if state, err = client.Reset(ctx); err != nil {
				return out, err
			}
		}
		strategy.Reset()
		out.Moves = 0

		log.WithFields(logrus.Fields{"attempt": out.Attempts, "strategy": strategy.Name()}).Info("starting attempt")

		for !state.GameOver && out.Moves < opts.MaxMoves {
			plan, err := strategy.NextMoves(ctx, state)
			if err != nil {
				return out, err
			}
			if len(plan) == 0 {
				log.WithField("block", state.Block.String()).Warn("strategy has no plan from here")
				break
			}
			if remaining := opts.MaxMoves - out.Moves; len(plan) > remaining {
				plan = plan[:remaining]
			}

			for len(plan) > 0 && !state.GameOver {
				n := min(len(plan), opts.BatchSize)
				res, err := client.BulkMove(ctx, plan[:n])
				if err != nil {
					return out, err
				}
				state = res.GameState
				out.Moves += res.MovesExecuted

				log.WithFields(logrus.Fields{
					"executed": res.MovesExecuted,
					"block":    res.EndBlock.String(),
					"stop":     res.StopReasonCode,
				}).Debug("rolled")

				if res.MovesExecuted == 0 && !state.GameOver {
					return out, fmt.Errorf("server refused %s: %s", plan[0], res.Message)
				}
				plan = plan[res.MovesExecuted:]
				if res.MovesExecuted < n {
					break
				}
				if opts.Delay > 0 {
					time.Sleep(opts.Delay)
				}
			}
		}

		log.WithFields(logrus.Fields{
			"attempt": out.Attempts,
			"moves":   out.Moves,
			"victory": state.Victory,
			"fell":    state.Fell,
		}).Info("attempt finished")

		if state.Victory {
			out.Victory = true
			return out, nil
		}
	}

	return out, errGaveUp
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configName := flag.String("config", "", "Preset to play (default preset when empty)")
	generate := flag.Bool("generate", false, "Play a freshly generated level instead of a preset")
	width := flag.Int("width", generator.DefaultWidth, "Generated board width")
	depth := flag.Int("depth", generator.DefaultDepth, "Generated board depth")
	seed := flag.Int64("seed", 0, "Generator seed, also seeds the explore strategy (0 = random)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	strategyName := flag.String("strategy", "solver", "Strategy: solver, hint or explore")
	maxMoves := flag.Int("max-moves", 500, "Maximum moves per attempt")
	maxAttempts := flag.Int("max-attempts", 100, "Maximum attempts before giving up")
	batch := flag.Int("batch", engine.MaxBulkMoves, "Rolls per bulk request")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between requests in milliseconds (0 = no delay)")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.WithField("url", *serverURL).Info("connecting to game server")
	client := NewClient(*serverURL)

	const sessionFile = ".session"
	savedSessionID := *continueSession
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	var (
		state *engine.GameState
		err   error
	)
	if savedSessionID != "" {
		state, err = client.Resume(ctx, savedSessionID)
		if err != nil {
			log.WithError(err).Warn("failed to resume session (may be expired), creating a new one")
		} else {
			log.WithField("session", savedSessionID).Info("resumed session")
		}
	}

	if state == nil {
		var opts *generator.Options
		if *generate {
			opts = generator.DefaultOptions()
			opts.Width, opts.Depth, opts.Seed = *width, *depth, *seed
		}
		state, err = client.CreateSession(ctx, *configName, opts)
		if err != nil {
			log.WithError(err).Fatal("failed to create session")
		}
		log.WithFields(logrus.Fields{
			"session": client.SessionID(),
			"level":   state.ConfigName,
			"size":    [2]int{state.Width, state.Depth},
		}).Info("session created")

		if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
			log.WithError(err).Warn("failed to save session ID")
		}
	}

	rngSeed := uint64(*seed)
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}
	strategy, err := newStrategy(*strategyName, client, rngSeed)
	if err != nil {
		log.WithError(err).Fatal("invalid strategy")
	}

	// always start from the level start
	if state, err = client.Reset(ctx); err != nil {
		log.WithError(err).Fatal("failed to reset game")
	}

	out, err := play(ctx, client, strategy, state, PlayOptions{
		MaxMoves:    *maxMoves,
		MaxAttempts: *maxAttempts,
		BatchSize:   max(1, min(*batch, engine.MaxBulkMoves)),
		Delay:       time.Duration(*delayMs) * time.Millisecond,
	})
	fields := logrus.Fields{"session": client.SessionID(), "attempts": out.Attempts, "moves": out.Moves}
	if err != nil {
		log.WithFields(fields).WithError(err).Error("failed to win")
		os.Exit(1)
	}
	log.WithFields(fields).Info("VICTORY")
}

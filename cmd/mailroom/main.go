// Command mailroom runs concurrent producers against a single consumer
// that serves urgent messages first by receiving them selectively and
// falls back to arrival order for everything else.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/pkorotkov/mailbox"
	"github.com/pkorotkov/mailbox/internal/config"
	"github.com/pkorotkov/mailbox/unit"
)

type job struct {
	producer int
	seq      int
	urgent   bool
}

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a JSON config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("mailroom failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	registry := mailbox.NewRegistry[job]()
	defer registry.Close()

	consumer, err := unit.New(registry, cfg.Capacity, mailbox.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("opening consumer mailbox: %w", err)
	}
	logger.Info().
		Uint64("mailbox", uint64(consumer.ID())).
		Int("capacity", cfg.Capacity).
		Int("producers", cfg.Producers).
		Msg("mailroom started")

	producers, pctx := errgroup.WithContext(ctx)
	for p := 0; p < cfg.Producers; p++ {
		p := p
		producers.Go(func() error {
			for seq := 0; seq < cfg.Messages; seq++ {
				j := job{producer: p, seq: seq, urgent: seq%cfg.UrgentEvery == 0}
				if err := consumer.Send(pctx, j); err != nil {
					return fmt.Errorf("producer %d: %w", p, err)
				}
			}
			return nil
		})
	}
	done := make(chan error, 1)
	go func() {
		err := producers.Wait()
		consumer.Stop()
		done <- err
	}()

	var urgent, regular int
	isUrgent := func(j job) bool { return j.urgent }
	for {
		j, ok, err := consumer.RecvSelectively(ctx, isUrgent)
		if err == nil && !ok {
			// Buffer is full of regular jobs; make room in arrival order.
			j, err = consumer.Recv(ctx)
		}
		if errors.Is(err, mailbox.ErrRecvClosed) {
			break
		}
		if err != nil {
			return err
		}
		if j.urgent {
			urgent++
		} else {
			regular++
		}
		logger.Debug().Int("producer", j.producer).Int("seq", j.seq).Bool("urgent", j.urgent).Msg("handled")
	}
	// The mailbox is closed and drained; whatever is still buffered is regular.
	for {
		j, err := consumer.Recv(ctx)
		if err != nil {
			break
		}
		if j.urgent {
			urgent++
		} else {
			regular++
		}
	}

	if err := <-done; err != nil {
		return err
	}
	logger.Info().Int("urgent", urgent).Int("regular", regular).Msg("mailroom finished")
	return nil
}

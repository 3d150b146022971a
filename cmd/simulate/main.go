package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/EHB-MCT/wdm-KylianAlgoet/internal/simulate"
	"github.com/EHB-MCT/wdm-KylianAlgoet/pkg/logger"
)

func main() {
	addr := flag.String("addr", "http://localhost:9080", "base URL of a running instance")
	sessions := flag.Int("sessions", 10, "number of sessions to play")
	moves := flag.Int("moves", 12, "human moves per session")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := simulate.NewRunner(simulate.NewClient(*addr),
		simulate.WithSessions(*sessions),
		simulate.WithMovesPerSession(*moves),
		simulate.WithSeed(*seed),
		simulate.WithLogger(log.Named("simulate")),
	)

	log.Info(ctx, "starting simulation",
		logger.String("addr", *addr),
		logger.Int("sessions", *sessions),
		logger.Int("moves", *moves),
		logger.Int64("seed", *seed),
	)

	start := time.Now()
	summary, err := runner.Run(ctx)
	if err != nil {
		log.Error(ctx, "simulation failed", logger.Error(err))
		os.Exit(1)
	}

	fmt.Printf("\nplayed %d sessions, %d moves (%d blunders, %d nudges) in %s\n",
		summary.Sessions, summary.Moves, summary.Blunders, summary.NudgesFired,
		time.Since(start).Round(time.Millisecond))

	fmt.Println("segment distribution:")
	labels := make([]string, 0, len(summary.Segments))
	for label := range summary.Segments {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Printf("  %-12s %d\n", label, summary.Segments[label])
	}
}

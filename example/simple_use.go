package main

import (
	"context"
	"fmt"
	"time"

	"github.com/leandrodaf/gazeuke/internal/logger"
	"github.com/leandrodaf/gazeuke/internal/surface"
	"github.com/leandrodaf/gazeuke/sdk/contracts"
	"github.com/leandrodaf/gazeuke/sdk/trainer"
)

type printStatus struct{}

func (printStatus) SetStatus(msg string)    { fmt.Println(msg) }
func (printStatus) SetProgress(percent int) { fmt.Printf("progress %d%%\n", percent) }

func main() {
	log := logger.NewZapLogger()

	grid := surface.NewGrid(surface.DefaultGridLayout(1920), nil)
	session, err := trainer.NewSession(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithSurface(grid),
		contracts.WithStatusReporter(printStatus{}),
	)
	if err != nil {
		log.Error("Failed to create session", log.Field().Error("error", err))
		return
	}
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go session.Run(ctx)

	// Record a short phrase: open G, C string fret 2, A string fret 7.
	phrase := []contracts.Selection{{Row: 0, Col: 0}, {Row: 1, Col: 2}, {Row: 3, Col: 7}}
	_ = session.Exec(func(s *trainer.Session) { s.StartRecording() })
	for _, sel := range phrase {
		p := grid.CellCenter(sel)
		_ = session.Exec(func(s *trainer.Session) { s.HandlePoint(p) })
		time.Sleep(300 * time.Millisecond)
	}
	_ = session.Exec(func(s *trainer.Session) {
		s.StopRecording()
		if err := s.StartPlayback(); err != nil {
			log.Error("Failed to start playback", log.Field().Error("error", err))
		}
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(50 * time.Millisecond):
			if st := session.Snapshot(); !st.Playing && st.Progress == 100 {
				fmt.Println("Replayed", st.Events, "selections")
				return
			}
		}
	}
}

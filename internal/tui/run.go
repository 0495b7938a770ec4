package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/plotbook/internal/bridge"
	"github.com/jask/plotbook/internal/plots"
)

// Run starts the program. The bridge's back listener lives exactly as long as
// the program; failing to register it only disables external back presses.
func Run(ctx context.Context, app *App, br *bridge.Server) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if br != nil {
		br.SetLocationPort(bridge.LocationFunc(func(ll plots.LatLng) {
			p.Send(LocationMsg{Position: ll})
		}))
		unsubscribe, err := br.Subscribe(func() { p.Send(BackMsg{}) })
		if err != nil {
			app.log.Warn("back listener not registered", zap.Error(err))
		}
		defer unsubscribe()

		if err := br.Start(); err != nil {
			app.log.Warn("bridge not started", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := br.Close(shutdownCtx); err != nil {
				app.log.Warn("bridge shutdown", zap.Error(err))
			}
		}()
	}

	_, err := p.Run()
	return err
}

package gui

import (
	"io/fs"
	"log/slog"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/example/sharesheet/internal/share"
)

// Run starts the webview window and blocks until it is closed. assets may
// hold the frontend at its root or under "frontend/".
func Run(assets fs.FS, cfg *share.Config, logger *slog.Logger) error {
	if sub, err := fs.Sub(assets, "frontend"); err == nil {
		assets = sub
	}
	app := NewApp(cfg, logger)

	return wails.Run(&options.App{
		Title:  "Sharesheet",
		Width:  960,
		Height: 640,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.Startup,
		OnShutdown: app.Shutdown,
		Bind: []interface{}{
			app,
		},
	})
}

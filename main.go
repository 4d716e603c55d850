// main.go
package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"salesledger/config"
	"salesledger/engine"
	"salesledger/report"
	"salesledger/routes"
)

// reportRefresher regenerates a salesman's report whenever their
// figures change. Failures are logged, never surfaced: the triggering
// command has already committed.
type reportRefresher struct {
	engine   *engine.Engine
	renderer *report.Renderer
	logger   *log.Logger
}

func (r *reportRefresher) SalesmanChanged(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := r.engine.Snapshot(ctx, name)
	if err != nil {
		r.logger.Printf("report refresh for %s: %v", name, err)
		return
	}
	path, err := r.renderer.Render(snap)
	if err != nil {
		r.logger.Printf("report refresh for %s: %v", name, err)
		return
	}
	r.logger.Printf("report for %s saved at %s", name, path)
}

func main() {
	cfg := config.Load()

	db, err := config.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	eng := engine.New(db)
	renderer := report.NewRenderer(cfg.ReportDir)
	eng.SetNotifier(&reportRefresher{
		engine:   eng,
		renderer: renderer,
		logger:   log.Default(),
	})

	// Create a new Gin router.
	router := gin.Default()
	routes.RegisterRoutes(router, eng, renderer)

	log.Printf("Starting server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

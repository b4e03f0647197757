package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mcdev12/livedraft/go/internal/dbconfig"
	"github.com/mcdev12/livedraft/go/internal/leagues"
)

func main() {
	path := flag.String("file", "leagues.yaml", "league YAML file to seed")
	flag.Parse()
	ctx := context.Background()

	// 1) Load and validate the league file
	src, err := leagues.LoadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load leagues: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	pool, err := dbconfig.NewConfigFromEnv().OpenPool(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Create tables and upsert
	pg := leagues.NewPostgresSource(pool)
	if err := pg.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	res, err := pg.Seed(ctx, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d players, %d leagues, %d teams, %d drafts from %s\n",
		res.Players, res.Leagues, res.Teams, res.Drafts, *path)
}

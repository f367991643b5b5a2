package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/brickfolio/brickfolio"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name: "brickfolio",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db_dir", Value: "./data/bolt", Usage: "bolt db dir path", EnvVars: []string{"DB_DIR"}},
			&cli.StringFlag{Name: "mysql", Value: "root@tcp(127.0.0.1:3306)/brickfolio?charset=utf8mb4&parseTime=True&loc=Local", Usage: "mysql dsn", EnvVars: []string{"MYSQL"}},
			&cli.StringFlag{Name: "sqlite_dir", Value: "./data/sqlite", Usage: "sqlite db dir path", EnvVars: []string{"SQLITE_DIR"}},
			&cli.BoolFlag{Name: "use_sqlite", Value: false, Usage: "run with sqlite instead of mysql", EnvVars: []string{"USE_SQLITE"}},
			&cli.StringFlag{Name: "chain", Value: "./data/chain.json", Usage: "chain settings file (rpc url, contract addresses, key path)", EnvVars: []string{"CHAIN"}},
			&cli.BoolFlag{Name: "dev", Value: false, Usage: "run against a seeded in-memory ledger", EnvVars: []string{"DEV"}},
			&cli.StringFlag{Name: "port", Value: ":8080", EnvVars: []string{"PORT"}},
		},
		Action: run,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	s := brickfolio.New(
		c.String("db_dir"), c.String("mysql"), c.String("sqlite_dir"), c.Bool("use_sqlite"),
		c.String("chain"), c.Bool("dev"),
	)
	s.Run(c.String("port"))

	<-signals
	s.Close()

	return nil
}

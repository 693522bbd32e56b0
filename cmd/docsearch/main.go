package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newFileFlag() *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Document to load (repeatable; .txt, .md, .pdf, .html)",
		Required: true,
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docsearch",
		Usage: "Literal search over local documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Configuration environment (selects config/config.<env>.yaml)",
				EnvVars: []string{"ENV"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Search loaded documents for a literal query",
				Action: searchCommand,
				Flags: []cli.Flag{
					newFileFlag(),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Text to search for, matched literally",
						Required: true,
					},
					&cli.BoolFlag{
						Name:    "case-sensitive",
						Aliases: []string{"c"},
						Usage:   "Match letter case exactly",
					},
					&cli.BoolFlag{
						Name:    "whole-word",
						Aliases: []string{"w"},
						Usage:   "Only match whole words",
					},
					&cli.IntFlag{
						Name:  "context",
						Usage: "Characters of context on each side of a match (0 hides context; default from config)",
					},
					&cli.StringFlag{
						Name:    "export",
						Aliases: []string{"o"},
						Usage:   "Write a plain-text report to this path",
					},
					&cli.BoolFlag{
						Name:  "no-color",
						Usage: "Disable highlighted output",
					},
				},
			},
			{
				Name:   "analyze",
				Usage:  "Print corpus totals, top words and document sizes",
				Action: analyzeCommand,
				Flags:  []cli.Flag{newFileFlag()},
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
			},
		},
	}
}

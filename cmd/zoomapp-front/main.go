package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/dgellow/zoomapp-front/internal"
	"github.com/dgellow/zoomapp-front/internal/appcontext"
	"github.com/dgellow/zoomapp-front/internal/config"
	"github.com/dgellow/zoomapp-front/internal/log"
	"github.com/urfave/cli/v2"

	_ "github.com/joho/godotenv/autoload"
)

var version = versioninfo.Short()

func main() {
	if err := run(os.Args); err != nil {
		log.LogErrorWithFields("main", "fatal", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}

func run(args []string) error {
	return newApp().Run(args)
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "zoomapp-front",
		Usage:   "authentication gateway for an embedded Zoom App",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the gateway",
				Flags:  config.Flags(),
				Action: serve,
			},
			{
				Name:   "validate",
				Usage:  "check the configuration and exit",
				Flags:  config.Flags(),
				Action: validate,
			},
			{
				Name:  "mint-context",
				Usage: "print an app context header for local testing",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "uid",
						Usage:    "user id claim",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "mid",
						Usage:    "meeting id claim",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "typ",
						Usage: "context type claim",
						Value: "panel",
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "validity of the context",
						Value: time.Hour,
					},
					&cli.StringFlag{
						Name:  "aad",
						Usage: "additional authenticated data",
					},
				}, config.SecretFlags()...),
				Action: mintContext,
			},
			{
				Name:  "version",
				Usage: "print version",
				Action: func(cctx *cli.Context) error {
					fmt.Println(version)
					return nil
				},
			},
		},
	}
}

func serve(cctx *cli.Context) error {
	cfg := config.FromCLI(cctx)
	if err := log.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}

	log.LogInfoWithFields("main", "Starting zoomapp-front", map[string]any{
		"version": version,
	})

	app, err := internal.NewZoomAppFront(cfg)
	if err != nil {
		return err
	}
	return app.Run(context.Background())
}

func validate(cctx *cli.Context) error {
	cfg := config.FromCLI(cctx)
	result := config.Validate(&cfg)
	printValidation(cctx.App.Writer, result)
	if !result.IsValid() {
		return fmt.Errorf("validation failed: %d error(s)", len(result.Errors))
	}
	return nil
}

func printValidation(w io.Writer, result *config.ValidationResult) {
	section := func(title string, issues []config.ValidationError) {
		if len(issues) == 0 {
			return
		}
		fmt.Fprintf(w, "%s (%d):\n", title, len(issues))
		for _, issue := range issues {
			fmt.Fprintf(w, "  - %s\n", issue.Error())
		}
	}
	section("Errors", result.Errors)
	section("Warnings", result.Warnings)

	if result.IsValid() {
		fmt.Fprintln(w, "Result: PASS")
	} else {
		fmt.Fprintln(w, "Result: FAIL")
	}
}

func mintContext(cctx *cli.Context) error {
	cfg := config.FromCLI(cctx)
	secret := cfg.EffectiveContextSecret()
	if secret == "" {
		return errors.New("a context secret or client secret is required")
	}
	encoding, err := appcontext.ParseEncoding(string(cfg.ContextEncoding))
	if err != nil {
		return err
	}

	now := time.Now()
	claims := &appcontext.Claims{
		Typ: cctx.String("typ"),
		UID: cctx.String("uid"),
		MID: cctx.String("mid"),
		TS:  now.UnixMilli(),
		Exp: now.Add(cctx.Duration("ttl")).UnixMilli(),
	}

	var aad []byte
	if v := cctx.String("aad"); v != "" {
		aad = []byte(v)
	}

	header, err := appcontext.NewEncryptor(secret, encoding).Encrypt(claims, aad)
	if err != nil {
		return err
	}
	fmt.Fprintln(cctx.App.Writer, header)
	return nil
}

// Command freedact redacts personally identifying information from
// plain-text documents, replacing every detected value with a
// deterministic, format-matched surrogate.
//
// One-shot mode reads a document, writes the redacted text to a file or
// stdout, and optionally emits a report bundle:
//
//	freedact --in letter.txt --out letter.redacted.txt --report report/
//
// Serve mode runs the HTTP API instead of a single document:
//
//	freedact --serve --addr :8080
//
// The seed secret is read from the environment (FREEDACT_SEED_SECRET
// unless the config names another variable). Without a secret the
// derivation runs unkeyed, which keeps output deterministic but lets
// anyone holding a document reproduce its surrogates; pass
// --require-secret to refuse such runs.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sdrasco/freedact/internal/config"
	"github.com/sdrasco/freedact/internal/engine"
	"github.com/sdrasco/freedact/internal/ioext"
	"github.com/sdrasco/freedact/internal/logger"
	"github.com/sdrasco/freedact/internal/metrics"
	"github.com/sdrasco/freedact/internal/server"
	"github.com/sdrasco/freedact/internal/store"
	"github.com/sdrasco/freedact/internal/verify"
)

// Exit codes.
const (
	exitOK       = 0
	exitIO       = 3 // unreadable input, unsupported format, write or listen failure
	exitConfig   = 4 // flag or configuration error, missing required secret
	exitPipeline = 5 // redaction pipeline failure
	exitResidual = 6 // --strict and verification found residuals
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("freedact", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		in            = fs.String("in", "", "input document (.txt or .md)")
		out           = fs.String("out", "", "output path; empty writes to stdout")
		configPath    = fs.String("config", "", "JSON configuration file")
		reportDir     = fs.String("report", "", "directory for the report bundle")
		strict        = fs.Bool("strict", false, "exit non-zero when residual findings remain")
		requireSecret = fs.Bool("require-secret", false, "refuse to run without a seed secret")
		serve         = fs.Bool("serve", false, "run the HTTP API instead of one document")
		addr          = fs.String("addr", ":8080", "serve-mode listen address")
		storePath     = fs.String("store", "", "pseudonym ledger database; empty keeps it in memory")
		logLevel      = fs.String("log-level", "", "debug, info, warn, or error")
		ner           = fs.Bool("ner", false, "consult the statistical NER sidecar")
		nerEndpoint   = fs.String("ner-endpoint", "", "NER sidecar base URL")
		coref         = fs.Bool("coref", true, "run the heuristic coreference pass")
	)
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	// A .env file in the working directory is optional.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *storePath != "" {
		cfg.StorePath = *storePath
	}
	// Detector toggles override the file only when passed explicitly.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ner":
			cfg.Detectors.NER = *ner
		case "ner-endpoint":
			cfg.Detectors.NEREndpoint = *nerEndpoint
		case "coref":
			cfg.Detectors.Coref = *coref
		}
	})

	log := logger.New("freedact", cfg.LogLevel)
	log.SetOutput(stderr)

	if *requireSecret && len(cfg.Secret()) == 0 {
		log.Errorf("init", "seed secret required: set %s", cfg.Pseudonyms.SecretEnv)
		return exitConfig
	}

	ledger := store.Open(cfg.StorePath, 0, log.Named("store"))
	defer ledger.Close() //nolint:errcheck // closed on exit

	m := metrics.New()
	eng := engine.New(cfg, ledger, m, log.Named("engine"))

	if *serve {
		srv := server.New(cfg, eng, m, os.Getenv("FREEDACT_API_TOKEN"), log.Named("server"))
		printBanner(stdout, cfg, *addr)
		if err := srv.Serve(*addr); err != nil {
			log.Errorf("serve", "%v", err)
			return exitIO
		}
		return exitOK
	}

	if *in == "" {
		fmt.Fprintln(stderr, "freedact: --in is required (or --serve)")
		fs.Usage()
		return exitConfig
	}

	text, err := ioext.ReadText(*in)
	if err != nil {
		log.Errorf("read", "%v", err)
		return exitIO
	}

	res, err := eng.Redact(filepath.Base(*in), text)
	if err != nil {
		log.Errorf("redact", "%v", err)
		return exitPipeline
	}

	if *out == "" {
		fmt.Fprint(stdout, res.Redacted)
	} else if err := ioext.WriteText(*out, res.Redacted); err != nil {
		log.Errorf("write", "%v", err)
		return exitIO
	}

	if *reportDir != "" {
		b := verify.Bundle{
			Original:     res.Original,
			Redacted:     res.Redacted,
			Plan:         res.Plan,
			Verification: res.Verification,
			Audit:        res.Audit,
		}
		if err := verify.WriteBundle(*reportDir, b); err != nil {
			log.Errorf("report", "%v", err)
			return exitIO
		}
		log.Infof("report", "bundle written to %s", *reportDir)
	}

	log.Infof("done", "doc %s: %d replacement(s), clean=%t",
		res.DocID, res.Audit.Replacements, res.Clean())

	if *strict && !res.Clean() {
		log.Errorf("verify", "%d residual finding(s) at or above confidence %.2f",
			res.Verification.ResidualCount, cfg.Verification.MinConfidence)
		return exitResidual
	}
	return exitOK
}

func printBanner(w io.Writer, cfg *config.Config, addr string) {
	storeDesc := cfg.StorePath
	if storeDesc == "" {
		storeDesc = "(in-memory)"
	}
	auth := "disabled"
	if os.Getenv("FREEDACT_API_TOKEN") != "" {
		auth = "bearer token"
	}

	fmt.Fprintf(w, `
╔══════════════════════════════════════╗
║            freedact serve            ║
╚══════════════════════════════════════╝
  Listen address : %s
  Ledger store   : %s
  Authentication : %s
  Seed secret    : %v
  Person names   : %v
  Generic dates  : %v
  Role aliases   : %s
  Cross-document : %v

  Redact a document:
    curl -s localhost%s/v1/redact -d '{"text":"..."}'
`, addr, storeDesc, auth,
		len(cfg.Secret()) > 0,
		cfg.Redact.PersonNames, cfg.Redact.GenericDates, cfg.Redact.RoleAliases,
		cfg.Pseudonyms.CrossDocConsistency, addr)
}

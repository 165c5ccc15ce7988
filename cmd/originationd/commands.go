package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/optic/loan-origination/internal/infrastructure/config"
	pgRepo "github.com/optic/loan-origination/internal/infrastructure/persistence/postgres"
	"github.com/optic/loan-origination/pkg/auth"
	pkgpostgres "github.com/optic/loan-origination/pkg/postgres"
	"github.com/optic/loan-origination/pkg/tlsutil"
)

// JWT key files written next to the dev certificate.
const (
	devJWTPrivateKey = "jwt-private.pem"
	devJWTPublicKey  = "jwt-public.pem"
)

type options struct {
	migrateDown bool
	genDevCerts string
	hosts       string
	certTTL     time.Duration
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("originationd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.migrateDown, "migrate-down", false, "Roll back every migration and exit")
	fs.StringVar(&opts.genDevCerts, "gen-dev-certs", "", "Write a self-signed TLS certificate and a JWT RSA key pair into `dir` and exit")
	fs.StringVar(&opts.hosts, "hosts", strings.Join(tlsutil.DefaultDevHosts, ","), "Comma separated hosts for -gen-dev-certs")
	fs.DurationVar(&opts.certTTL, "cert-ttl", 365*24*time.Hour, "Validity of the certificate written by -gen-dev-certs")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.migrateDown && opts.genDevCerts != "" {
		return options{}, fmt.Errorf("-migrate-down and -gen-dev-certs are exclusive")
	}
	return opts, nil
}

// genDevCerts writes the files HTTP_TLS_*/GRPC_TLS_* and JWT_PRIVATE_KEY_FILE
// point at in local setups.
func genDevCerts(dir, hosts string, ttl time.Duration, stdout io.Writer) error {
	var hostList []string
	for _, h := range strings.Split(hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hostList = append(hostList, h)
		}
	}

	certFile, keyFile, err := tlsutil.WriteDevCertificate(dir, hostList, ttl)
	if err != nil {
		return err
	}

	privPEM, pubPEM, err := auth.GenerateKeyPair()
	if err != nil {
		return err
	}
	privFile := filepath.Join(dir, devJWTPrivateKey)
	if err := os.WriteFile(privFile, privPEM, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", privFile, err)
	}
	pubFile := filepath.Join(dir, devJWTPublicKey)
	if err := os.WriteFile(pubFile, pubPEM, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", pubFile, err)
	}

	_, _ = fmt.Fprintf(stdout, "HTTP_TLS_CERT_FILE=%[1]s\nHTTP_TLS_KEY_FILE=%[2]s\nGRPC_TLS_CERT_FILE=%[1]s\nGRPC_TLS_KEY_FILE=%[2]s\nJWT_PRIVATE_KEY_FILE=%[3]s\n",
		certFile, keyFile, privFile)
	return nil
}

func migrateDown(cfg config.Config) error {
	if cfg.DB.Password == "" {
		return fmt.Errorf("DB_PASSWORD environment variable is required")
	}
	return pkgpostgres.RunMigrationsDown(dbConfig(cfg).DSN(), pgRepo.Migrations, pgRepo.MigrationsDir)
}

func dbConfig(cfg config.Config) pkgpostgres.Config {
	return pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
		MaxConns: cfg.DB.MaxConns,
	}
}

package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"carshare-escrow/internal/config"
	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/logger"
	"carshare-escrow/internal/security"
)

// tokengen issues an access token for a principal so a developer can call
// the gRPC service, e.g. with grpcurl or the cronjob client.
func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	principal := flag.String("principal", "", "Caller principal (hex address or opaque id)")
	roles := flag.String("roles", "", "Comma separated role hints carried in the token")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	p, err := domain.ParsePrincipal(*principal)
	if err != nil {
		log.Fatalf("Invalid principal %q: %v", *principal, err)
	}

	var hints []domain.Role
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			hints = append(hints, domain.Role(strings.ToUpper(r)))
		}
	}

	tm := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	token, err := tm.GenerateAccessToken(p, hints)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	logger.Debug("Issued access token", "principal", p, "expiry_minutes", cfg.JWT.AccessTokenExpiry)
	fmt.Println(token)
}

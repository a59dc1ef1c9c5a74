package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"gateway-shim/internal/config"
	"gateway-shim/internal/middleware"
)

// Mints a development token accepted by the auth and admin handlers
func main() {
	var (
		userID   = flag.String("user", "dev-user", "User ID (token subject)")
		username = flag.String("username", "developer", "Username claim")
		email    = flag.String("email", "", "Email claim")
		roles    = flag.String("roles", "viewer", "Comma-separated roles, e.g. admin,operator")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}

	authService := middleware.NewAuthService(&middleware.AuthConfig{
		JWTSecret:     cfg.JWT.Secret,
		TokenDuration: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		Issuer:        cfg.JWT.Issuer,
	})

	token, err := authService.GenerateToken(*userID, *username, *email, splitRoles(*roles))
	if err != nil {
		logger.WithError(err).Fatal("Failed to generate token")
	}

	logger.WithFields(logrus.Fields{
		"user_id":      *userID,
		"roles":        *roles,
		"expiry_hours": cfg.JWT.ExpiryHours,
	}).Debug("Token generated")

	fmt.Println(token)
}

func splitRoles(roles string) []string {
	var out []string
	for _, role := range strings.Split(roles, ",") {
		if role = strings.TrimSpace(role); role != "" {
			out = append(out, role)
		}
	}
	return out
}

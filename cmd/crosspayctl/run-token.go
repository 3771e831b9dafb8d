package main

import (
	"fmt"
	"time"

	"crosspay/internal/service"

	"github.com/urfave/cli"
)

func runToken(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	identity := c.String("identity")
	if identity == "" {
		return fmt.Errorf("identity is required")
	}
	if m.cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is not configured")
	}

	tokenSvc := service.NewJWTTokenService(m.cfg.JWT.Secret, m.cfg.JWT.Expiry, m.cfg.JWT.Issuer)
	token, expiresAt, err := tokenSvc.Generate(identity)
	if err != nil {
		return err
	}

	return printJSON(m.w, struct {
		Identity  string `json:"identity"`
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}{
		Identity:  identity,
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

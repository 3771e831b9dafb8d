package main

import (
	"context"
	"fmt"

	"crosspay/internal/adapter/storage"

	"github.com/urfave/cli"
)

func runCredit(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	identity := c.String("identity")
	asset := c.String("asset")
	amount := c.Uint64("amount")
	switch {
	case identity == "":
		return fmt.Errorf("identity is required")
	case asset == "":
		return fmt.Errorf("asset is required")
	case amount == 0:
		return fmt.Errorf("amount must be greater than 0")
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, m.cfg, m.log)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := backend.Custody.Credit(ctx, identity, asset, amount); err != nil {
		return err
	}

	tx, err := backend.Transactor.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	balance, err := backend.Custody.BalanceOf(ctx, tx, identity, asset)
	if err != nil {
		return err
	}

	m.log.Info().Str("identity", identity).Str("asset", asset).Uint64("amount", amount).Msg("custody credited")

	return printJSON(m.w, struct {
		Identity string `json:"identity"`
		Asset    string `json:"asset"`
		Credited uint64 `json:"credited"`
		Balance  uint64 `json:"balance"`
	}{
		Identity: identity,
		Asset:    asset,
		Credited: amount,
		Balance:  balance,
	})
}

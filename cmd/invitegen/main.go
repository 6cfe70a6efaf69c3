// Command invitegen issues invitations from the command line: it creates the
// ledger row and prints the encrypted token to embed in a QR code.
//
// Flags:
//
//	--name     guest name (required unless --reissue)
//	--phone    guest phone (optional)
//	--group    party size (default 1)
//	--reissue  existing invitation id to re-encode instead of creating
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/btpass/backend/internal/adapter/ledger"
	"github.com/btpass/backend/internal/adapter/postgres"
	"github.com/btpass/backend/internal/config"
	"github.com/btpass/backend/internal/service/invite"
	"github.com/btpass/backend/internal/token"
)

func main() {
	nameFlag := flag.String("name", "", "guest name")
	phoneFlag := flag.String("phone", "", "guest phone")
	groupFlag := flag.Int("group", 1, "party size")
	reissueFlag := flag.String("reissue", "", "existing invitation id to re-encode")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.Load()
	if err != nil {
		fatal(logger, "load config", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Issuing needs the ledger, so fail fast if it is unreachable.
	pool, err := postgres.NewPool(ctx, cfg.Ledger)
	if err != nil {
		fatal(logger, "connect to ledger", err)
	}
	defer pool.Close()

	svc := invite.NewService(logger, ledger.New(pool, cfg.Ledger), token.New(cfg.Token.Key))

	var result *invite.CreateResult
	if *reissueFlag != "" {
		invitationID, err := uuid.Parse(*reissueFlag)
		if err != nil {
			fatal(logger, "parse invitation id", err)
		}
		result, err = svc.Reissue(ctx, invitationID)
		if err != nil {
			fatal(logger, "reissue invitation", err)
		}
	} else {
		var phone *string
		if *phoneFlag != "" {
			phone = phoneFlag
		}
		result, err = svc.Create(ctx, invite.CreateInput{
			GuestName:  *nameFlag,
			GuestPhone: phone,
			GroupSize:  *groupFlag,
		})
		if err != nil {
			fatal(logger, "create invitation", err)
		}
	}

	fmt.Printf("invitation: %s\n", result.Invitation.ID)
	fmt.Printf("guest:      %s (party of %d)\n", result.Invitation.GuestName, result.Invitation.GroupSize)
	fmt.Printf("token:      %s\n", result.Token)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}

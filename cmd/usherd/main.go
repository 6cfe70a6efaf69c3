// Command usherd runs the offline-first check-in terminal daemon. It serves
// the local web shell's API, records admissions in the embedded store, and
// mirrors them to the remote ledger when connectivity allows.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"

	"github.com/btpass/backend/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("usherd: %v", err)
	}
}

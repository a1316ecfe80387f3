package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/meryacine/towerd/pkg/network"
)

var (
	towerAddr = flag.String("tower", "", "Full tower multiaddr, e.g. /ip4/1.2.3.4/tcp/9735/p2p/12D3Koo... (required)")
	slots     = flag.Uint("slots", 10, "Appointment slots to request")
	period    = flag.Uint("period", 144, "Subscription period to request")
	timeout   = flag.Duration("timeout", 30*time.Second, "Registration timeout")
)

func main() {
	flag.Parse()

	if *towerAddr == "" {
		log.Fatal("Error: -tower flag is required")
	}
	if *slots > 0xFFFFFFFF || *period > 0xFFFFFFFF {
		log.Fatal("Error: -slots and -period must fit in 32 bits")
	}

	info, err := network.ParseTowerAddr(*towerAddr)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	client, err := network.NewClient()
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Close()

	log.Printf("Registering with tower %s (key %s)", info.ID, client.UserKey())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	details, err := client.Register(ctx, *info, uint32(*slots), uint32(*period))
	if err != nil {
		var warn *network.WarningError
		if errors.As(err, &warn) {
			log.Fatalf("Tower refused: %s", warn.Warning)
		}
		log.Fatalf("Registration failed: %v", err)
	}

	fmt.Println("Subscription offer received:")
	fmt.Printf("  appointment max size: %d bytes\n", details.AppointmentMaxSize)
	fmt.Printf("  subscription fee:     %d msat\n", details.AmountMsat)
}

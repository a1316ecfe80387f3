package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	p2pcrypto "github.com/libp2p/go-libp2p/core/crypto"

	"github.com/meryacine/towerd/pkg/api"
	"github.com/meryacine/towerd/pkg/network"
)

const (
	defaultPort    = 9735
	defaultAPIPort = 8080
	defaultKeyPath = "./keys/tower.key"
)

var (
	port      = flag.Int("port", defaultPort, "Port to listen on for tower messages")
	apiPort   = flag.Int("api-port", defaultAPIPort, "Port for the HTTP status API (0 disables it)")
	keyPath   = flag.String("key", defaultKeyPath, "Path to node identity key file")
	flushMs   = flag.Int("flush", 100, "Outbound queue flush interval in milliseconds")
	printAddr = flag.Bool("print-addr", true, "Print the full dialable tower address on startup")
)

func main() {
	flag.Parse()

	printBanner()

	privKey, err := loadOrGenerateKey(*keyPath)
	if err != nil {
		log.Fatalf("Failed to load/generate key: %v", err)
	}
	log.Printf("✓ Identity key loaded from %s", *keyPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	node, err := network.NewTowerNode(ctx, &network.NodeConfig{
		ListenAddr:    fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", *port),
		PrivateKey:    privKey,
		FlushInterval: time.Duration(*flushMs) * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("Failed to start tower node: %v", err)
	}

	if *printAddr {
		for _, addr := range node.Host().Addrs() {
			fmt.Printf("Tower address: %s/p2p/%s\n", addr, node.Host().ID())
		}
	}

	var apiServer *api.Server
	if *apiPort > 0 {
		config := api.DefaultConfig()
		config.Port = *apiPort
		apiServer = api.NewServer(node, config)

		go func() {
			log.Printf("Status API listening on :%d", *apiPort)
			if err := apiServer.Start(); err != nil {
				log.Printf("API server stopped: %v", err)
			}
		}()
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received %v, shutting down...", sig)

	if apiServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("API shutdown: %v", err)
		}
		shutdownCancel()
	}

	if err := node.Close(); err != nil {
		log.Printf("Node shutdown: %v", err)
	}
}

// loadOrGenerateKey reads the node identity key, creating one on first run
func loadOrGenerateKey(path string) (p2pcrypto.PrivKey, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return p2pcrypto.UnmarshalPrivateKey(data)
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	priv, _, err := p2pcrypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	data, err = p2pcrypto.MarshalPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, err
	}

	log.Printf("Generated new identity key at %s", path)
	return priv, nil
}

func printBanner() {
	fmt.Println("╔══════════════════════════════════╗")
	fmt.Println("║      towerd — watchtower node    ║")
	fmt.Println("╚══════════════════════════════════╝")
}

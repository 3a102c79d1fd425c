// Command wowcore-probe dials a world server, installs a session key
// supplied out-of-band, subscribes to a small fixed opcode set, and logs
// decoded records — a smoke-test harness for the core (SPEC_FULL §6.1).
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mangosgo/wowcore/client"
	"github.com/mangosgo/wowcore/components/characterinit"
	"github.com/mangosgo/wowcore/components/friend"
	"github.com/mangosgo/wowcore/internal/config"
	"github.com/mangosgo/wowcore/internal/debugtap"
	"github.com/mangosgo/wowcore/internal/headercipher"
	"github.com/mangosgo/wowcore/internal/telemetry"
)

func main() {
	var cfgPath string
	var sessionKeyHex string
	flag.StringVar(&cfgPath, "c", "config.yaml", "config path")
	flag.StringVar(&sessionKeyHex, "session-key", "", "40-byte session key, hex-encoded (output of the external auth handshake)")
	flag.Parse()

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := fmt.Sprintf("%s:%d", cfg.Realm.Host, cfg.Realm.Port)
	wc, err := client.Connect(ctx, addr, client.Options{
		RouterBacklogLimit: cfg.Router.BacklogLimit,
		SendQueueSize:      cfg.SendQueue.Size,
	})
	if err != nil {
		log.Fatalf("connect %s: %v", addr, err)
	}
	log.Printf("connected to %s", addr)

	if sessionKeyHex != "" {
		key, err := decodeSessionKey(sessionKeyHex)
		if err != nil {
			log.Fatalf("session key: %v", err)
		}
		wc.InstallSessionKey(key)
		log.Printf("session key installed")
	}

	if cfg.Telemetry.Enable {
		go func() {
			if err := telemetry.StartServer(ctx, cfg.Telemetry.Listen); err != nil {
				log.Printf("telemetry server stopped: %v", err)
			}
		}()
		log.Printf("telemetry listening on %s", cfg.Telemetry.Listen)
	}

	if cfg.DebugTap.Enable {
		tap := debugtap.New()
		tap.Attach(wc.Router())
		go func() {
			if err := tap.StartServer(ctx, cfg.DebugTap.Listen); err != nil {
				log.Printf("debug tap server stopped: %v", err)
			}
		}()
		log.Printf("debug tap listening on %s", cfg.DebugTap.Listen)
	}

	charInit := characterinit.New(wc)
	defer charInit.Dispose()
	friends := friend.New(wc)
	defer friends.Dispose()

	bindCh, bindCancel := charInit.BindPointUpdates()
	defer bindCancel()
	go func() {
		for bp := range bindCh {
			log.Printf("bind point: %+v", bp)
		}
	}()

	friendCh, friendCancel := friends.StatusUpdates()
	defer friendCancel()
	go func() {
		for e := range friendCh {
			log.Printf("friend status: %+v", e)
		}
	}()

	disconnected, disconnectedCancel := wc.OnDisconnected()
	defer disconnectedCancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigc:
		log.Printf("shutting down...")
		_ = wc.Disconnect()
	case err := <-disconnected:
		log.Printf("disconnected: %v", err)
	}
}

func decodeSessionKey(s string) ([headercipher.KeySize]byte, error) {
	var key [headercipher.KeySize]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return key, err
	}
	if len(b) != headercipher.KeySize {
		return key, fmt.Errorf("session key must be %d bytes, got %d", headercipher.KeySize, len(b))
	}
	copy(key[:], b)
	return key, nil
}

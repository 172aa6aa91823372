package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/laboratorys/miniapp/internal/anim"
	"github.com/laboratorys/miniapp/internal/app"
	"github.com/laboratorys/miniapp/internal/bridge"
	"github.com/laboratorys/miniapp/internal/cache"
	"github.com/laboratorys/miniapp/internal/config"
	"github.com/laboratorys/miniapp/internal/view"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	cfg, err := config.Load(getenv("APP_CONFIG", ""))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer store.Close()

	locate := func() bridge.Host {
		h, err := bridge.DialHost(cfg.HostURL)
		if err != nil {
			return nil
		}
		return h
	}

	a := app.New(cfg, store, locate, anim.NoopRenderer{}, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go a.Run(ctx)

	repl(ctx, cancel, a)
}

// repl drives the client from stdin; each command becomes an op on the
// app loop, standing in for the UI event source.
func repl(ctx context.Context, cancel context.CancelFunc, a *app.App) {
	fmt.Println("commands: open <page> | back | tap | shake <x> <y> <z> | claim | invite | wallet | lootbox <id> | replay <id> | buy-spins | rewards-list | chat | stickers | memes | state | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit":
			cancel()
			return
		case "open":
			if len(args) != 1 {
				fmt.Println("usage: open <page>")
				continue
			}
			page := args[0]
			a.Loop.Do(func() { a.Router.Navigate(ctx, page, false) })
		case "back":
			a.Loop.Do(func() { a.Router.Back(ctx) })
		case "tap":
			a.Loop.Do(func() { a.Earn.Tap(ctx) })
		case "shake":
			if len(args) != 3 {
				fmt.Println("usage: shake <x> <y> <z>")
				continue
			}
			var sample bridge.AccelSample
			sample.X, _ = strconv.ParseFloat(args[0], 64)
			sample.Y, _ = strconv.ParseFloat(args[1], 64)
			sample.Z, _ = strconv.ParseFloat(args[2], 64)
			a.Loop.Do(func() { a.Earn.HandleSample(ctx, sample) })
		case "claim":
			a.Loop.Do(func() { a.Claim.Do(ctx) })
		case "invite":
			a.Loop.Do(func() { a.Invite.Share(ctx) })
		case "wallet":
			a.Loop.Do(func() { a.Wallet.Connect() })
		case "lootbox":
			if len(args) != 1 {
				fmt.Println("usage: lootbox <id>")
				continue
			}
			id := args[0]
			a.Loop.Do(func() { a.Catalog.Open(ctx, id) })
		case "replay":
			if len(args) != 1 {
				fmt.Println("usage: replay <id>")
				continue
			}
			id := args[0]
			a.Loop.Do(func() { a.Catalog.ReplayReward(id) })
		case "buy-spins":
			a.Loop.Do(func() { a.Catalog.BuySpins() })
		case "rewards-list":
			a.Loop.Do(func() { a.Catalog.RewardsList() })
		case "chat":
			a.Loop.Do(a.OpenCommunityChat)
		case "stickers":
			a.Loop.Do(a.OpenStickerStore)
		case "memes":
			a.Loop.Do(a.OpenMemesTournament)
		case "state":
			a.Loop.Do(func() { printState(a) })
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

func printState(a *app.App) {
	fmt.Printf("page=%s tickets=%s hearts=%s energy=%s claim=%q\n",
		a.Router.Current(),
		a.Doc.Text(view.ElemTickets),
		a.Doc.Text(view.ElemHearts),
		a.Doc.Text(view.ElemEnergyCount),
		a.Doc.Text(view.ElemCheckInTimer),
	)
}

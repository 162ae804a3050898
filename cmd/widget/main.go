package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"whisp.dev/chat-widget/internal/config"
	"whisp.dev/chat-widget/internal/localstore"
	"whisp.dev/chat-widget/internal/utils"
	"whisp.dev/chat-widget/internal/widget"
)

func main() {
	cfg := config.LoadWidgetConfig()

	backendURL := flag.String("backend", cfg.BackendURL, "Base URL of the lead server")
	storeType := flag.String("store", cfg.Store, "Local store driver: memory, bolt or redis")
	storePath := flag.String("store-path", cfg.StorePath, "BoltDB file for the bolt store")
	origin := flag.String("origin", cfg.Origin, "Origin whose saved session to use")
	flag.Parse()

	utils.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	opts := []localstore.StoreOption{
		localstore.WithNamespace(*origin),
		localstore.WithBoltPath(*storePath),
	}
	if localstore.StoreType(*storeType) == localstore.StoreTypeRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		opts = append(opts,
			localstore.WithRedisClient(client),
			localstore.WithRedisTTL(time.Duration(cfg.RedisTTLHours)*time.Hour))
	}

	store, err := localstore.NewStore(localstore.StoreType(*storeType), opts...)
	if err != nil {
		logrus.Warnf("Local store %q unavailable (%v), history will not be kept", *storeType, err)
		store, _ = localstore.NewStore(localstore.StoreTypeMemory, localstore.WithNamespace(*origin))
	}
	defer store.Close()

	backend, err := widget.NewHTTPBackend(*backendURL, &http.Client{Timeout: 15 * time.Second})
	if err != nil {
		logrus.Fatalf("Invalid backend URL: %v", err)
	}

	view := newTerminalView(os.Stdout)
	w := widget.New(view, backend, widget.NewTranscriptStore(store))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go readInput(ctx, stop, view, w)

	fmt.Println("Whisp chat. Type /open to start, /help for commands.")
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		logrus.Errorf("Widget stopped: %v", err)
	}
}

const helpText = `Commands:
  /open /close /toggle /min   window
  /back                       previous form step
  /submit                     submit the form
  /quick N                    send quick reply N
  /quit                       exit
Anything else fills the current form step or sends a chat message.`

func readInput(ctx context.Context, stop context.CancelFunc, view *terminalView, w *widget.Widget) {
	defer stop()
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		step, conversation := view.mode()

		if strings.HasPrefix(line, "/") {
			cmd, arg, _ := strings.Cut(line, " ")
			switch cmd {
			case "/open":
				w.Dispatch(widget.OpenChat{})
			case "/close":
				w.Dispatch(widget.CloseChat{})
			case "/toggle":
				w.Dispatch(widget.ToggleChat{})
			case "/min":
				w.Dispatch(widget.MinimizeChat{})
			case "/back":
				w.Dispatch(widget.BackStep{Target: step - 1})
			case "/submit":
				w.Dispatch(widget.SubmitForm{})
			case "/quick":
				n, err := strconv.Atoi(strings.TrimSpace(arg))
				if err != nil || n < 1 || n > len(widget.QuickReplies) {
					fmt.Println(helpText)
					continue
				}
				w.Dispatch(widget.QuickReply{Text: widget.QuickReplies[n-1]})
			case "/quit":
				return
			default:
				fmt.Println(helpText)
			}
			continue
		}

		if conversation {
			w.Dispatch(widget.InputChanged{Text: line})
			w.Dispatch(widget.SendMessage{})
			continue
		}
		if step == 0 {
			// between steps; the next prompt is on its way
			continue
		}

		field := widget.Field(step)
		if field == widget.FieldCountry {
			if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(widget.Countries) {
				line = widget.Countries[n-1]
			}
		}
		w.Dispatch(widget.SetField{Field: field, Value: line})
		w.Dispatch(widget.NextStep{Target: step + 1})
	}
}

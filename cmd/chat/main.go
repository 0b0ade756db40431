package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wangchienwei/pushchat/internal/auth"
	"github.com/wangchienwei/pushchat/internal/config"
	"github.com/wangchienwei/pushchat/internal/core"
	"github.com/wangchienwei/pushchat/internal/log"
	"github.com/wangchienwei/pushchat/internal/notify"
	"github.com/wangchienwei/pushchat/internal/store"
	"github.com/wangchienwei/pushchat/internal/store/hosted"
	"github.com/wangchienwei/pushchat/internal/store/sqlite"
)

// signOutTimeout bounds the provider logout call on /quit.
const signOutTimeout = 5 * time.Second

var (
	flagConfig   string
	flagToken    string
	flagProvider string
	flagName     string
	flagNoNotify bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chat",
		Short: "Terminal client for the shared chat room",
		Long: "Signs in against the identity provider, reconciles message history\n" +
			"with the live insert stream, and posts messages typed on stdin.",
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.Flags().StringVar(&flagToken, "token", "", "provider access token (or PUSHCHAT_ACCESS_TOKEN)")
	rootCmd.Flags().StringVar(&flagProvider, "provider", "google", "OAuth provider name")
	rootCmd.Flags().StringVar(&flagName, "name", "", "display name for the local backend")
	rootCmd.Flags().BoolVar(&flagNoNotify, "no-notify", false, "skip the notification relay after sends")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(_ *cobra.Command, _ []string) error {
	bootLogger := log.New("info", "console")
	cfg, path, err := config.Load(bootLogger, flagConfig)
	if err != nil {
		return fmt.Errorf("load config at %s: %w", path, err)
	}
	logger := log.New(cfg.LogLevel, "console")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	session, authClient, err := buildSession(cfg)
	if err != nil {
		return err
	}

	var notifier core.Notifier
	if !flagNoNotify && cfg.RelayURL != "" {
		notifier = notify.NewRelay(cfg.RelayURL, cfg.SendTimeout)
	}

	authEvents := make(chan auth.Event, 4)
	pipeline := core.NewPipeline(st, notifier, authEvents, logger)

	go renderLoop(pipeline.Events)
	go func() {
		if err := pipeline.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("pipeline stopped")
		}
		stop()
	}()

	authEvents <- auth.Event{Kind: auth.EventSignedIn, Session: session}

	signOut := func() {
		authEvents <- auth.Event{Kind: auth.EventSignedOut}
		if authClient == nil {
			return
		}
		signOutCtx, cancel := context.WithTimeout(context.Background(), signOutTimeout)
		defer cancel()
		if err := authClient.SignOut(signOutCtx, session); err != nil {
			logger.Warn().Err(err).Msg("provider sign-out failed")
		}
	}

	fmt.Println("Type a message and press Enter to send. /quit signs out and exits.")
	inputLoop(ctx, pipeline, signOut)
	return nil
}

func buildStore(cfg config.Config, logger *zerolog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendHosted:
		if cfg.StoreURL == "" || cfg.StoreAnonKey == "" {
			return nil, errors.New("hosted backend needs PUSHCHAT_STORE_URL and PUSHCHAT_STORE_ANON_KEY")
		}
		return hosted.New(cfg.StoreURL, cfg.StoreAnonKey, logger), nil
	case config.StoreBackendLocal:
		s, err := sqlite.New(cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// buildSession establishes the user's identity. The local backend needs no
// provider, so the returned client is nil there.
func buildSession(cfg config.Config) (*auth.Session, *auth.Client, error) {
	if cfg.StoreBackend == config.StoreBackendLocal {
		name := flagName
		if name == "" {
			name = os.Getenv("USER")
		}
		return &auth.Session{UserID: uuid.NewString(), DisplayName: name}, nil, nil
	}

	authClient := auth.NewClient(cfg.StoreURL, cfg.StoreAnonKey, nil)

	token := flagToken
	if token == "" {
		token = os.Getenv("PUSHCHAT_ACCESS_TOKEN")
	}
	if token == "" {
		fmt.Println("Open the following URL in a browser and sign in:")
		fmt.Println("  " + authClient.AuthorizeURL(flagProvider, ""))
		fmt.Print("Paste the access token here: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, nil, fmt.Errorf("read token: %w", err)
		}
		token = strings.TrimSpace(line)
	}

	session, err := authClient.SessionFromToken(token)
	if err != nil {
		return nil, nil, fmt.Errorf("sign in: %w", err)
	}
	return session, authClient, nil
}

func renderLoop(events <-chan core.Event) {
	for ev := range events {
		switch ev.Kind {
		case core.EventSignedIn:
			name := ev.Identity.DisplayName
			if name == "" {
				name = core.AnonymousName
			}
			fmt.Printf("-- signed in as %s --\n", name)
		case core.EventSignedOut:
			fmt.Println("-- signed out --")
		case core.EventHistory:
			for _, msg := range ev.Messages {
				printMessage(msg)
			}
		case core.EventMessage:
			printMessage(ev.Message)
		case core.EventFeedDown:
			fmt.Println("-- live feed disconnected, reconnecting --")
		case core.EventError:
			fmt.Printf("-- error: %v --\n", ev.Err)
		}
	}
}

func printMessage(msg core.Message) {
	fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Local().Format("3:04 PM"), msg.From, msg.Text)
}

func inputLoop(ctx context.Context, pipeline *core.Pipeline, signOut func()) {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if strings.TrimSpace(line) == "/quit" {
				signOut()
				return
			}
			pipeline.Submit(line)
		}
	}
}

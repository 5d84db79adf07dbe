package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"miniquest/internal/chat"
	"miniquest/internal/config"
	"miniquest/internal/conversation"
	"miniquest/internal/location"
	"miniquest/internal/logging"
	"miniquest/internal/orchestrator"
	"miniquest/internal/quest"
	"miniquest/internal/saved"
	"miniquest/internal/terminal"
	"miniquest/internal/ui"
)

func main() {
	// Set the GetEnv function for config
	config.GetEnv = os.Getenv

	// .env is optional
	_ = godotenv.Load()

	cfg, logLevel, manualLoc := parseFlags()
	logging.Configure(logLevel, cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	prefs := config.LoadPreferences(cfg.PreferencesPath)
	display := ui.NewDisplay(prefs.ShowProgress)

	// Initialize components
	resolver := location.NewResolver(location.RegionBoston)
	questClient := quest.NewClient(cfg.APIURL, cfg.GenerateTimeout)
	store := conversation.NewStore(cfg.ConversationURL, cfg.RequestTimeout)
	savedClient := saved.NewClient(cfg.APIURL, cfg.RequestTimeout)

	// Both backends are checked in parallel; only the generation API is
	// required to start.
	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error { return questClient.HealthCheck(gctx) })
	var storeErr error
	g.Go(func() error {
		storeErr = store.HealthCheck(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		display.PrintError(err)
		display.PrintInfo("Make sure the MiniQuest backend is running")
		os.Exit(1)
	}
	if storeErr != nil {
		display.PrintWarning(fmt.Sprintf("Conversation API check failed: %v", storeErr))
		display.PrintInfo("Transcripts will not be saved until it comes back")
	}

	// Location precedence: -location flag (session only), then the
	// persisted override, then a best-effort device location lookup.
	if manualLoc != "" {
		if _, err := resolver.SetManualAddress(manualLoc); err != nil {
			display.PrintWarning(err.Error())
			os.Exit(1)
		}
	} else if prefs.ManualLocation != "" {
		if _, err := resolver.SetManualAddress(prefs.ManualLocation); err != nil {
			logging.Logger.Warn("saved location override is invalid", "err", err)
			prefs.ManualLocation = ""
			writePreferences(cfg, prefs, display)
		}
	} else {
		detectStartupLocation(cfg, resolver, display)
	}

	autosaver := conversation.NewAutosaver(store, cfg.AutosaveDelay, func(err error) {
		display.PrintWarning(fmt.Sprintf("Autosave failed: %v", err))
	})

	orch := orchestrator.New(resolver, questClient, autosaver, orchestrator.Sinks{
		OnUserMessage:      display.PrintUserMessage,
		OnAssistantMessage: func(msg chat.Message, _ quest.Outcome) { display.PrintAssistantMessage(msg) },
		OnProgress:         display.PrintProgress,
	}, cfg.MaxProgressLines, cfg.StreamProgress)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		autosaver.Flush(flushCtx)
		flushCancel()
		display.PrintGoodbye()
		os.Exit(0)
	}()

	display.PrintWelcome(resolver.State().DisplayLocation)

	runLoop(ctx, cfg, &prefs, display, orch, store, savedClient, autosaver)

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	autosaver.Flush(flushCtx)
	flushCancel()
	display.PrintGoodbye()
}

// runLoop is the main conversation loop.
func runLoop(
	ctx context.Context,
	cfg *config.Config,
	prefs *config.Preferences,
	display *ui.Display,
	orch *orchestrator.Orchestrator,
	store *conversation.Store,
	savedClient *saved.Client,
	autosaver *conversation.Autosaver,
) {
	// Listing shown by the last /history call, for /load and /delete.
	var listing []chat.ConversationMetadata
	// Adventures of the last success outcome, for /save.
	var lastAdventures []chat.Adventure

	for {
		display.PrintSuggestions(orch.Suggestions())
		display.PrintPrompt()

		input, err := terminal.ReadUserInput()
		if err != nil {
			return
		}

		// A bare number picks a suggestion
		if n, err := strconv.Atoi(input); err == nil {
			suggestions := orch.Suggestions()
			if n >= 1 && n <= len(suggestions) {
				input = suggestions[n-1]
			}
		}

		switch {
		case input == "/exit" || input == "/quit" || input == "exit" || input == "quit":
			return

		case input == "/clear":
			display.PrintWelcome(orch.Location().DisplayLocation)
			continue

		case input == "/new":
			orch.NewChat(ctx)
			display.PrintWelcome(orch.Location().DisplayLocation)
			continue

		case input == "/history":
			list, err := store.List(ctx, 10)
			if err != nil {
				display.PrintWarning(fmt.Sprintf("Failed to list conversations: %v", err))
				continue
			}
			listing = list
			display.PrintConversationList(listing)
			continue

		case strings.HasPrefix(input, "/load "):
			meta, ok := pickFromListing(ctx, display, store, &listing, strings.TrimPrefix(input, "/load "))
			if !ok {
				continue
			}
			conv, err := store.Get(ctx, meta.ID)
			if err != nil {
				display.PrintWarning(fmt.Sprintf("Failed to load conversation: %v", err))
				continue
			}
			orch.LoadConversation(conv)
			display.PrintWelcome(orch.Location().DisplayLocation)
			for _, msg := range conv.Messages {
				if msg.Role == chat.RoleUser {
					display.PrintUserMessage(msg)
				} else {
					display.PrintAssistantMessage(msg)
				}
			}
			display.PrintSuccess(fmt.Sprintf("Resumed %q", orchestrator.Preview(conv.Messages)))
			continue

		case strings.HasPrefix(input, "/delete "):
			meta, ok := pickFromListing(ctx, display, store, &listing, strings.TrimPrefix(input, "/delete "))
			if !ok {
				continue
			}
			wasActive := meta.ID == autosaver.ActiveID()
			if err := store.Remove(ctx, meta.ID); err != nil {
				display.PrintWarning(fmt.Sprintf("Failed to delete conversation: %v", err))
				continue
			}
			listing = nil
			if wasActive {
				orch.DropActiveConversation()
				display.PrintWelcome(orch.Location().DisplayLocation)
			}
			display.PrintSuccess("Conversation deleted")
			continue

		case strings.HasPrefix(input, "/location "):
			address := strings.TrimSpace(strings.TrimPrefix(input, "/location "))
			state, err := orch.SetManualLocation(address)
			if err != nil {
				display.PrintWarning(err.Error())
				continue
			}
			prefs.ManualLocation = state.DisplayLocation
			writePreferences(cfg, *prefs, display)
			display.PrintSuccess(fmt.Sprintf("Location set to %s", state.DisplayLocation))
			continue

		case input == "/auto":
			state := orch.ResetLocation()
			prefs.ManualLocation = ""
			writePreferences(cfg, *prefs, display)
			display.PrintSuccess(fmt.Sprintf("Back to auto-detect (%s)", state.DisplayLocation))
			continue

		case strings.HasPrefix(input, "/save "):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(input, "/save ")))
			if err != nil || n < 1 || n > len(lastAdventures) {
				display.PrintWarning("Nothing to save with that number")
				continue
			}
			id, err := savedClient.Save(ctx, lastAdventures[n-1])
			if err != nil {
				display.PrintWarning(fmt.Sprintf("Failed to save adventure: %v", err))
				continue
			}
			display.PrintSuccess(fmt.Sprintf("Saved %q (%s)", lastAdventures[n-1].Title, id))
			continue

		case input == "/saved":
			adventures, err := savedClient.List(ctx)
			if err != nil {
				display.PrintWarning(fmt.Sprintf("Failed to list saved adventures: %v", err))
				continue
			}
			display.PrintSavedList(adventures)
			continue

		case strings.HasPrefix(input, "/"):
			display.PrintWarning(fmt.Sprintf("Unknown command: %s", input))
			continue
		}

		if err := orch.Submit(ctx, input); err != nil {
			switch err {
			case orchestrator.ErrEmptyQuery:
				display.PrintInfo("Type what you'd like to do, e.g. \"coffee shops in Boston\"")
			case orchestrator.ErrBusy:
				display.PrintWarning("Still working on the last one")
			default:
				display.PrintError(err)
			}
			continue
		}

		lastAdventures = orch.LastAdventures()
		if len(lastAdventures) > 0 {
			display.PrintInfo("Use /save <n> to keep an adventure")
		}
	}
}

// detectStartupLocation applies the device location if it falls inside a
// supported region. Every failure is best-effort only.
func detectStartupLocation(cfg *config.Config, resolver *location.Resolver, display *ui.Display) {
	geo := location.NewGeolocator(cfg.GeocodeURL, cfg.GeocodeTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GeocodeTimeout)
	defer cancel()

	place, err := geo.Locate(ctx)
	if err != nil {
		logging.Logger.Info("startup geolocation unavailable", "err", err)
		return
	}

	if region, ok := resolver.MatchRegion(place.City + " " + place.Region); ok {
		resolver.ApplyRegion(region)
		return
	}
	display.PrintInfo(fmt.Sprintf("%s is outside the supported regions; using %s",
		place.City, resolver.State().DisplayLocation))
}

// pickFromListing resolves a 1-based index against the last /history
// listing, fetching one when needed.
func pickFromListing(
	ctx context.Context,
	display *ui.Display,
	store *conversation.Store,
	listing *[]chat.ConversationMetadata,
	arg string,
) (chat.ConversationMetadata, bool) {
	if len(*listing) == 0 {
		list, err := store.List(ctx, 10)
		if err != nil {
			display.PrintWarning(fmt.Sprintf("Failed to list conversations: %v", err))
			return chat.ConversationMetadata{}, false
		}
		*listing = list
	}

	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 || n > len(*listing) {
		display.PrintWarning(fmt.Sprintf("Pick a number between 1 and %d (see /history)", len(*listing)))
		return chat.ConversationMetadata{}, false
	}
	return (*listing)[n-1], true
}

func writePreferences(cfg *config.Config, prefs config.Preferences, display *ui.Display) {
	if err := config.SavePreferences(cfg.PreferencesPath, prefs); err != nil {
		logging.Logger.Warn("failed to save preferences", "err", err)
		display.PrintWarning("Could not save preferences")
	}
}

// parseFlags parses command-line flags.
func parseFlags() (*config.Config, string, string) {
	cfg := config.NewConfig()

	flag.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "MiniQuest API URL")
	flag.StringVar(&cfg.ConversationURL, "conversation-url", cfg.ConversationURL, "Conversation API URL")
	flag.StringVar(&cfg.GeocodeURL, "geocode-url", cfg.GeocodeURL, "Geolocation service URL (empty disables the startup lookup)")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable verbose logging")

	manualLoc := flag.String("location", "", "Manual location for this session (not persisted)")
	timeoutSeconds := flag.Int("timeout", 120, "Generation request timeout in seconds")
	noProgress := flag.Bool("no-progress", false, "Disable live progress streaming")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")

	flag.Parse()

	cfg.GenerateTimeout = time.Duration(*timeoutSeconds) * time.Second
	if *noProgress {
		cfg.StreamProgress = false
	}

	return cfg, *logLevel, *manualLoc
}

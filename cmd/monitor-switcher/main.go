package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/Discobrick/monitor-switcher/internal/config"
	"github.com/Discobrick/monitor-switcher/internal/device"
	"github.com/Discobrick/monitor-switcher/internal/dispatch"
	"github.com/Discobrick/monitor-switcher/internal/event"
	"github.com/Discobrick/monitor-switcher/internal/notify"
	"github.com/Discobrick/monitor-switcher/internal/status"
	"github.com/Discobrick/monitor-switcher/internal/ui"
	"github.com/Discobrick/monitor-switcher/internal/watcher"
)

var version = "dev"

func main() {
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(versionFlag, "v", false, "Print version and exit (shorthand)")

	configPath := flag.String("config", "", "Path to config file")
	initConfig := flag.Bool("init", false, "Generate example config file")
	noTUI := flag.Bool("no-tui", false, "Headless mode, log to stdout")
	quiet := flag.Bool("q", false, "Quiet all normal output in headless mode")
	listDevs := flag.Bool("list", false, "List connected HID devices and exit")
	showStatus := flag.Bool("status", false, "Print the running watcher's status and exit")

	flag.Parse()

	log.SetFlags(0)
	log.SetOutput(os.Stdout)
	if *quiet {
		log.SetOutput(io.Discard)
	}

	if *versionFlag {
		fmt.Printf("monitor-switcher %s\n", version)
		os.Exit(0)
	}

	if *initConfig {
		path, err := config.GenerateExampleConfig(*configPath)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Created config at %s\n", path)
		os.Exit(0)
	}

	if *listDevs {
		if err := runList(); err != nil {
			fatal(err)
		}
		return
	}

	if *showStatus {
		if err := runStatus(*configPath); err != nil {
			fatal(err)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}

	// Relative tool names and paths in the config are relative to it
	if err := os.Chdir(cfg.Dir()); err != nil {
		fatal(fmt.Errorf("cannot enter config directory: %w", err))
	}

	// Without a terminal (service, redirected output) there is nothing to draw on
	headless := *noTUI || !term.IsTerminal(int(os.Stdout.Fd()))

	if err := run(cfg, headless); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// runList prints every attached HID device as a config token.
func runList() error {
	inv := device.NewHIDInventory()
	defer inv.Close()

	infos, err := device.List(inv)
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Printf("%s  %-24s %-32s %s\n", info.Identifier(), info.Manufacturer, info.Product, info.Path)
	}
	return nil
}

// runStatus prints a summary of the snapshot written by a running watcher,
// followed by the raw JSON.
func runStatus(configPath string) error {
	path := status.DefaultPath()
	if cfg, err := config.Load(configPath); err == nil && cfg.Status.File != "" {
		path = cfg.Status.File
	}

	snap, err := status.Read(path)
	if err != nil {
		return err
	}
	fmt.Print(status.Summary(snap))
	fmt.Println()

	data, err := status.Pretty(path)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func run(cfg *config.Config, headless bool) error {
	set, errs := device.ParseSet(cfg.MonitoredDevices)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if len(set) == 0 {
		return errors.New("no valid entries in monitored_devices")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var feed *ui.Feed
	var observers []watcher.Option
	var reportError func(error)
	if headless {
		reportError = func(err error) { log.Printf("[error] %v", err) }
		observers = append(observers, watcher.WithObserver(func(e watcher.Event) {
			log.Printf("%s %s", e.At.Format("15:04:05"), e)
		}))
	} else {
		feed = ui.NewFeed(256)
		reportError = feed.Error
		observers = append(observers, watcher.WithObserver(feed.Observe))
	}

	inv := device.NewHIDInventory()
	defer inv.Close()

	statusPath := cfg.Status.File
	if statusPath == "" {
		statusPath = status.DefaultPath()
	}
	recorder := status.NewRecorder(statusPath, cfg.MonitoredDevices, reportError)
	defer recorder.Remove()
	observers = append(observers, watcher.WithObserver(recorder.Observe))

	notifier, err := notify.Open(cfg.Notify.Enabled)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: desktop notifications disabled: %v\n", err)
	}
	defer notifier.Close()
	observers = append(observers, watcher.WithObserver(notify.Observer(notifier, reportError)))

	disp := dispatch.New(cfg.Tool.Name, cfg.Dir(), cfg.Tool.CommandTimeout())
	w := watcher.New(watcher.Config{
		Cooldown:       time.Duration(cfg.Watcher.Cooldown),
		SettleDelay:    time.Duration(cfg.Watcher.SettleDelay),
		DisconnectCmds: cfg.DisconnectCmds,
		ConnectCmds:    cfg.ConnectCmds,
	}, device.NewProber(inv, set, reportError), disp, observers...)

	pollInterval := time.Duration(cfg.Watcher.PollInterval)
	src := event.New(event.Options{
		PollInterval: pollInterval,
		Fingerprint: func() (string, error) {
			return device.Fingerprint(inv)
		},
		OnError: reportError,
	})

	if headless {
		log.Printf("monitor-switcher %s - watching %d device(s), tool %s", version, len(set), disp.Tool())
		w.Start()
		if err := w.Run(ctx, src); err != nil && ctx.Err() == nil {
			return fmt.Errorf("event source: %w", err)
		}
		log.Printf("Stopped with USB devices %s", presenceWord(w.Present()))
		return nil
	}

	w.Start()
	model := ui.NewModel(feed, ui.Options{
		Set:     set,
		Tool:    disp.Tool(),
		Version: version,
		Polling: pollInterval > 0,
		Devices: func() ([]device.Info, error) {
			return device.List(inv)
		},
		Cancel: cancel,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := w.Run(ctx, src); err != nil && ctx.Err() == nil {
			feed.Fail(fmt.Errorf("event source: %w", err))
		}
	}()
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err = p.Run()

	// The inventory is closed on return; the watcher must be done with it
	cancel()
	feed.Close()
	<-runDone

	if err != nil {
		return err
	}
	if err := model.Err(); err != nil {
		return err
	}
	fmt.Printf("Stopped with USB devices %s\n", presenceWord(w.Present()))
	return nil
}

func presenceWord(present bool) string {
	if present {
		return "connected"
	}
	return "disconnected"
}

// Command abpcore loads Adblock Plus-style filter lists and answers
// network-matching and element-hiding queries against them.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/quailmark/abpcore/internal/config"
	"github.com/quailmark/abpcore/internal/engine"
	"github.com/quailmark/abpcore/internal/fetcher"
	"github.com/quailmark/abpcore/internal/filter"
	"github.com/quailmark/abpcore/internal/loader"
)

var (
	cfgFile string
	fs      = afero.NewOsFs()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "abpcore",
	Short: "Adblock Plus-style filter matching core",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	RunE:  runInit,
}

var loadCmd = &cobra.Command{
	Use:   "load <file|url>...",
	Short: "Load one or more filter lists and print parse statistics",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLoad,
}

var matchCmd = &cobra.Command{
	Use:   "match <url> <content-type> <doc-domain> <third-party>",
	Short: "Load the configured lists and match one request",
	Args:  cobra.ExactArgs(4),
	RunE:  runMatch,
}

var selectorsCmd = &cobra.Command{
	Use:   "selectors <domain>",
	Short: "Load the configured lists and print element-hiding selectors for a domain",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelectors,
}

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a filter file and rebuild the engine on every change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./configs/abpcore.toml)")
	selectorsCmd.Flags().Bool("specific", false, "only include domain-specific selectors")
	rootCmd.AddCommand(initCmd, loadCmd, matchCmd, selectorsCmd, watchCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "./configs/abpcore.toml"
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	if err := config.WriteDefault(fs, path); err != nil {
		return err
	}
	fmt.Printf("Created config file: %s\n", path)
	return nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	eng := engine.New(0, 0)
	f := fetcher.New(config.HTTPConfig{})

	total := loader.Stats{SkipReasons: make(map[string]int)}
	for _, source := range args {
		fmt.Printf("Loading %s...\n", source)
		data, err := readSource(cmd.Context(), f, source)
		if err != nil {
			return fmt.Errorf("loading %s: %w", source, err)
		}
		stats, err := loader.Load(strings.NewReader(string(data)), eng)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", source, err)
		}
		mergeStats(&total, stats)
	}

	printStats(total)
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	location, ctName, docDomain, thirdPartyStr := args[0], args[1], args[2], args[3]

	contentType, ok := filter.TypeByQueryName(ctName)
	if !ok {
		return fmt.Errorf("unknown content type: %s", ctName)
	}
	isThirdParty, err := strconv.ParseBool(thirdPartyStr)
	if err != nil {
		return fmt.Errorf("third-party must be true or false: %w", err)
	}

	eng, _, err := buildEngineFromConfig(cmd.Context())
	if err != nil {
		return err
	}

	if hit := eng.MatchesAny(location, contentType, docDomain, isThirdParty); hit != nil {
		fmt.Printf("%s: %s\n", hit.Kind, hit.Text)
	} else {
		fmt.Println("no match")
	}
	return nil
}

func runSelectors(cmd *cobra.Command, args []string) error {
	domain := args[0]
	specific, _ := cmd.Flags().GetBool("specific")

	eng, _, err := buildEngineFromConfig(cmd.Context())
	if err != nil {
		return err
	}

	for _, sel := range eng.GetSelectors(domain, specific) {
		fmt.Println(sel)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	// current is the engine built from the most recent successful reload,
	// swapped atomically under mu so a concurrent reader never observes a
	// partially rebuilt engine.
	var mu sync.RWMutex
	var current *engine.Engine

	reload := func() error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		fresh := engine.New(0, 0)
		stats, err := loader.Load(f, fresh)
		if err != nil {
			return err
		}

		mu.Lock()
		current = fresh
		mu.Unlock()

		fmt.Printf("reloaded %s: %d blocking, %d whitelist, %d elemhide, %d invalid\n",
			path, stats.Blocking, stats.Whitelist, stats.ElemHide, stats.Invalid)
		return nil
	}

	if err := reload(); err != nil {
		return fmt.Errorf("initial load of %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("watching %s; type \"match <url> <content-type> <doc-domain> <third-party>\" or \"selectors <domain>\", Ctrl-C to stop\n", path)
	go runQueryLoop(ctx, &mu, &current)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := reload(); err != nil {
					fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

// runQueryLoop reads match/selectors commands from stdin and answers them
// against whatever engine current currently points to, taking mu for
// reading so it never observes a partially rebuilt engine mid-swap.
func runQueryLoop(ctx context.Context, mu *sync.RWMutex, current **engine.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		mu.RLock()
		eng := *current
		mu.RUnlock()

		switch fields[0] {
		case "match":
			if len(fields) != 5 {
				fmt.Println("usage: match <url> <content-type> <doc-domain> <third-party>")
				continue
			}
			contentType, ok := filter.TypeByQueryName(fields[2])
			if !ok {
				fmt.Printf("unknown content type: %s\n", fields[2])
				continue
			}
			isThirdParty, err := strconv.ParseBool(fields[4])
			if err != nil {
				fmt.Println("third-party must be true or false")
				continue
			}
			if hit := eng.MatchesAny(fields[1], contentType, fields[3], isThirdParty); hit != nil {
				fmt.Printf("%s: %s\n", hit.Kind, hit.Text)
			} else {
				fmt.Println("no match")
			}
		case "selectors":
			if len(fields) != 2 {
				fmt.Println("usage: selectors <domain>")
				continue
			}
			for _, sel := range eng.GetSelectors(fields[1], false) {
				fmt.Println(sel)
			}
		default:
			fmt.Printf("unknown command: %s\n", fields[0])
		}
	}
}

func buildEngineFromConfig(ctx context.Context) (*engine.Engine, loader.Stats, error) {
	cfg, err := config.Load(fs, configPath())
	if err != nil {
		return nil, loader.Stats{}, err
	}

	enabled := cfg.EnabledLists()
	if len(enabled) == 0 {
		return nil, loader.Stats{}, fmt.Errorf("no enabled filter lists found in config")
	}

	eng := engine.New(cfg.Engine.CacheSize, cfg.Engine.WarmPoolSize)
	f := fetcher.New(cfg.HTTP)

	total := loader.Stats{SkipReasons: make(map[string]int)}
	for _, list := range enabled {
		data, err := readList(ctx, f, list)
		if err != nil {
			return nil, loader.Stats{}, fmt.Errorf("loading %s: %w", list.Name, err)
		}
		stats, err := loader.Load(strings.NewReader(string(data)), eng)
		if err != nil {
			return nil, loader.Stats{}, fmt.Errorf("parsing %s: %w", list.Name, err)
		}
		mergeStats(&total, stats)
	}
	return eng, total, nil
}

// readList resolves a configured filter list, going through the fetcher's
// list-aware retrieval (name-scoped errors, empty-body rejection) for a
// remote URL, or reading straight from disk for a local path.
func readList(ctx context.Context, f *fetcher.Fetcher, list config.FilterList) ([]byte, error) {
	if strings.Contains(list.URL, "://") {
		return f.FetchList(ctx, list)
	}
	return afero.ReadFile(fs, list.URL)
}

func readSource(ctx context.Context, f *fetcher.Fetcher, source string) ([]byte, error) {
	if strings.Contains(source, "://") {
		return f.Fetch(ctx, source)
	}
	return afero.ReadFile(fs, source)
}

func mergeStats(total *loader.Stats, s loader.Stats) {
	total.Total += s.Total
	total.Comment += s.Comment
	total.Invalid += s.Invalid
	total.Blocking += s.Blocking
	total.Whitelist += s.Whitelist
	total.ElemHide += s.ElemHide
	total.Exception += s.Exception
	total.Blank += s.Blank
	for reason, count := range s.SkipReasons {
		total.SkipReasons[reason] += count
	}
}

func printStats(s loader.Stats) {
	fmt.Printf("Total: %d  Blocking: %d  Whitelist: %d  ElemHide: %d  Exception: %d  Comment: %d  Invalid: %d\n",
		s.Total, s.Blocking, s.Whitelist, s.ElemHide, s.Exception, s.Comment, s.Invalid)
	if len(s.SkipReasons) > 0 {
		fmt.Println("Skip reasons:")
		for reason, count := range s.SkipReasons {
			fmt.Printf("  %s: %d\n", reason, count)
		}
	}
}

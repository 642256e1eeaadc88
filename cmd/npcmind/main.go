package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"npcmind/internal/actor"
	"npcmind/internal/classify"
	"npcmind/internal/config"
	"npcmind/internal/engine"
	"npcmind/internal/fuzzy"
	"npcmind/internal/kernel"
	"npcmind/internal/lexicon"
	"npcmind/internal/logging"
	"npcmind/internal/tagger"
)

var (
	// Global flags
	verbose    bool
	configPath string
	actorPath  string
	explain    bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "npcmind",
	Short: "npcmind - deterministic NLU pipeline for conversational NPCs",
	Long: `npcmind turns a player's free-text utterance into ranked, slotted
intents an NPC can act on.

The pipeline is fully deterministic: a part-of-speech tagger feeds a
grammar layer that extracts noun phrases and an intent seed, fuzzy
n-gram matchers score the utterance against phrase lexicons and the
NPC's inventory, and a fixed set of forward-chaining rules promotes,
suppresses, and slots intent candidates.

Run without arguments to start an interactive chat with the demo
shopkeeper.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// classifyCmd runs one utterance through the full pipeline.
var classifyCmd = &cobra.Command{
	Use:   "classify [utterance]",
	Short: "Classify a single utterance against the demo or configured actor",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

// searchCmd exercises the fuzzy matcher directly.
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fuzzy-search the actor's inventory",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

// chatCmd keeps a recent-intent across turns.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive session with cross-turn intent decay",
	RunE:  runChat,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "npcmind.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&actorPath, "actor", "", "actor YAML file (defaults to the demo shopkeeper)")
	classifyCmd.Flags().BoolVar(&explain, "explain", false, "print the audit kernel's derived facts")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(chatCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func loadActor() (actor.Actor, error) {
	if actorPath == "" {
		return demoShopkeeper(), nil
	}
	data, err := os.ReadFile(actorPath)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("failed to read actor file: %w", err)
	}
	var a actor.Actor
	if err := yaml.Unmarshal(data, &a); err != nil {
		return actor.Actor{}, fmt.Errorf("failed to parse actor file: %w", err)
	}
	return a, nil
}

func demoShopkeeper() actor.Actor {
	return actor.Actor{
		Name: "Marla",
		Role: "shopkeeper",
		Inventory: []actor.Item{
			{Name: "Bread Loaf", Aliases: []string{"bread", "loaf"}, Cost: 3},
			{Name: "Healing Potion", Aliases: []string{"potion"}, Cost: 45},
			{Name: "Iron Sword", Aliases: []string{"sword"}, Cost: 120},
			{Name: "Silver Sword", Cost: 340},
		},
	}
}

func loadLexicons(cfg *config.Config) (positive, negative lexicon.Lexicon, err error) {
	if cfg.Lexicons.PositivePath != "" {
		positive, err = lexicon.Load(cfg.Lexicons.PositivePath)
		if err != nil {
			return nil, nil, fmt.Errorf("positive lexicon: %w", err)
		}
	}
	if cfg.Lexicons.NegativePath != "" {
		negative, err = lexicon.Load(cfg.Lexicons.NegativePath)
		if err != nil {
			return nil, nil, fmt.Errorf("negative lexicon: %w", err)
		}
	}
	return positive, negative, nil
}

func buildEngine(cfg *config.Config, audit *kernel.Kernel) (*engine.Engine, error) {
	positive, negative, err := loadLexicons(cfg)
	if err != nil {
		return nil, err
	}
	classifier, err := classify.New(cfg.ClassifierConfig(), positive, negative, logger.Named("classify"))
	if err != nil {
		return nil, err
	}
	return engine.New(cfg.EngineDecay(), tagger.NewStatic(), classifier, audit, logger.Named("engine"))
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	subject, err := loadActor()
	if err != nil {
		return err
	}

	var audit *kernel.Kernel
	if explain {
		audit, err = kernel.New(logger.Named("kernel"))
		if err != nil {
			return err
		}
	}

	eng, err := buildEngine(cfg, audit)
	if err != nil {
		return err
	}

	utterance := strings.Join(args, " ")
	result, err := eng.Process(cmd.Context(), utterance, subject, nil)
	if err != nil {
		return err
	}

	printResult(result)

	if explain && audit != nil {
		if err := printExplanation(audit); err != nil {
			return err
		}
	}
	return nil
}

func printResult(result engine.Result) {
	if len(result.Intents) == 0 {
		fmt.Println("No intents.")
		return
	}
	fmt.Printf("Intents (%d):\n", len(result.Intents))
	for _, in := range result.Intents {
		fmt.Printf("  %-28s %.3f", in.Name, in.Confidence)
		if len(in.Slots) > 0 {
			keys := make([]string, 0, len(in.Slots))
			for k := range in.Slots {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = fmt.Sprintf("%s=%s", k, in.Slots[k])
			}
			fmt.Printf("  [%s]", strings.Join(parts, " "))
		}
		fmt.Println()
	}
	if len(result.FiredRules) > 0 {
		fmt.Println("Fired rules:")
		for _, r := range result.FiredRules {
			fmt.Printf("  %s\n", r)
		}
	}
}

func printExplanation(audit *kernel.Kernel) error {
	explained, err := audit.Explanations()
	if err != nil {
		return err
	}
	overridden, err := audit.Overridden()
	if err != nil {
		return err
	}

	fmt.Println("Explanations:")
	keys := make([]string, 0, len(explained))
	for k := range explained {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s <- %s\n", k, strings.Join(explained[k], ", "))
	}
	for _, name := range overridden {
		fmt.Printf("  %s was overridden by negative evidence\n", name)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	subject, err := loadActor()
	if err != nil {
		return err
	}

	var candidates []string
	owner := make(map[string]string)
	for _, it := range subject.Inventory {
		for _, candidate := range it.Candidates() {
			candidates = append(candidates, candidate)
			if _, taken := owner[strings.ToLower(candidate)]; !taken {
				owner[strings.ToLower(candidate)] = it.Name
			}
		}
	}
	index, err := fuzzy.NewIndex(candidates, cfg.SearchOptions())
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	matches := index.Search(query)
	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, m := range matches {
		fmt.Printf("  %.3f  %s (%s)\n", m.Score, m.Text, owner[strings.ToLower(m.Text)])
	}
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	subject, err := loadActor()
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Talking to %s (%s). Type 'exit' to quit.\n", subject.Name, subject.Role)

	var recent *classify.RecentIntent
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}

		result, err := eng.Process(cmd.Context(), line, subject, recent)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			continue
		}
		recent = result.Recent

		printResult(result)
		if recent != nil {
			fmt.Printf("(carrying %s at %.3f)\n", recent.Name, recent.Confidence)
		}
	}
	return scanner.Err()
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"splay4d/internal/config"
	"splay4d/internal/convert"
	"splay4d/internal/gui"
	"splay4d/internal/log"
	"splay4d/internal/panel"
	"splay4d/internal/scene"
	"splay4d/internal/tui"
	"splay4d/internal/watch"
	"splay4d/pkg/types"
)

var (
	version    = "dev"
	configPath string
)

// Entry point for the application
func main() {
	rootCmd := &cobra.Command{
		Use:     "splay4d",
		Short:   "4D gaussian splat sequence player",
		Long:    `Splay4d converts videos into gaussian splat frame sequences and plays them back.`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			log.SetDebug(true)
		}
	}

	rootCmd.AddCommand(processCmd())
	rootCmd.AddCommand(playCmd())
	rootCmd.AddCommand(guiCmd())
	rootCmd.AddCommand(followCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig resolves the config file for a subcommand: explicit file,
// then the user config, then defaults
func loadConfig() *config.Config {
	if configPath != "" {
		cfg, err := config.LoadConfigFile(configPath)
		if err != nil {
			fmt.Printf("Warning: Could not load config %s: %v. Using default settings.\n", configPath, err)
			return config.New()
		}
		return cfg
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Warning: Could not load config: %v. Using default settings.\n", err)
		return config.New()
	}
	return cfg
}

// processCmd runs a conversion to completion without playback
func processCmd() *cobra.Command {
	var videoMode bool

	cmd := &cobra.Command{
		Use:   "process [input]",
		Short: "Convert a video into a splat frame sequence",
		Long:  `Convert a video file into a directory of gaussian splat frames, or validate an existing frame directory.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			input := cfg.Input.Path
			if len(args) > 0 {
				input = args[0]
			}
			if input == "" {
				return fmt.Errorf("no input given: pass a path or set input.path in the config")
			}
			if !cmd.Flags().Changed("video") {
				videoMode = cfg.Input.VideoMode
			}

			var processor convert.Processor
			if videoMode {
				processor = convert.NewCommandProcessor(cfg)
			}
			job := convert.NewJob(input, videoMode, cfg.Input.FrameGlob, processor)

			done := make(chan *types.ConversionResult, 1)
			if err := job.Start(func(result *types.ConversionResult) {
				done <- result
			}); err != nil {
				return err
			}

			fmt.Printf("Processing %s\n", input)
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			lastStatus := ""
			for {
				select {
				case result := <-done:
					if !result.Success {
						return fmt.Errorf("conversion failed: %s", result.Err)
					}
					fmt.Printf("Done: %d frames at %.1f fps\n", result.FrameCount(), result.FrameRate)
					if videoMode {
						fmt.Printf("Output: %s\n", convert.OutputDirFor(input))
					}
					return nil
				case <-ticker.C:
					if percent, status := job.Status(); status != lastStatus {
						fmt.Printf("  [%3.0f%%] %s\n", percent, status)
						lastStatus = status
					}
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&videoMode, "video", "V", false, "Treat the input as a video file")
	return cmd
}

// playCmd starts the terminal panel
func playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Start the terminal playback panel",
		Long:  `Start the terminal user interface for interactive sequence generation and playback.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			p := panel.New(cfg, scene.NewMemoryGraph())
			m := tui.New(cfg, p)
			// No alt screen for better compatibility in non-TTY environments
			prog := tea.NewProgram(m)
			if _, err := prog.Run(); err != nil {
				fmt.Printf("Error running TUI: %v\n", err)
				os.Exit(1)
			}
		},
	}
}

// guiCmd launches the desktop panel
func guiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Launch the graphical user interface",
		Long:  `Launch the desktop version of the playback panel.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Launching GUI interface...")
			if err := gui.StartGUI(loadConfig()); err != nil {
				fmt.Printf("Error launching GUI: %v\n", err)
				os.Exit(1)
			}
		},
	}
}

// followCmd watches a frame directory and reports new frames
func followCmd() *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "follow [directory]",
		Short: "Watch a directory for new splat frames",
		Long:  `Watch a frame directory and report splat frames as a converter writes them.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			dir := cfg.Input.Path
			if len(args) > 0 {
				dir = args[0]
			}
			if dir == "" {
				var err error
				if dir, err = os.Getwd(); err != nil {
					return err
				}
			}
			if pattern == "" {
				pattern = cfg.Input.FrameGlob
			}

			follower, err := watch.NewFollower(dir, pattern)
			if err != nil {
				return err
			}
			if err := follower.Start(); err != nil {
				return err
			}
			defer follower.Stop()

			fmt.Printf("Following %s (pattern %s). Press Ctrl+C to stop.\n", dir, pattern)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			for {
				select {
				case event := <-follower.FrameChannel():
					status := follower.Status()
					fmt.Printf("  %s (%d seen)\n", event.Path, status.FramesSeen)
				case <-sigCh:
					fmt.Println("\nStopping.")
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "Frame filename glob (defaults to config)")
	return cmd
}

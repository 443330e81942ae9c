package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"volnudge/internal/adapter/primary/web"
	"volnudge/internal/adapter/secondary/audio"
	"volnudge/internal/adapter/secondary/power"
	"volnudge/internal/adapter/secondary/repository"
	"volnudge/internal/domain"
	"volnudge/internal/logging"
	"volnudge/internal/usecase"
)

var (
	cfgPath   string
	verbosity int

	// newAudioSystem and newPowerController are replaced in tests.
	newAudioSystem     = audio.NewSystem
	newPowerController = power.NewExecController
)

// NewRootCmd creates the root CLI command.
// This is the primary adapter that translates CLI inputs to use case calls.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "volnudge",
		Short:         "Nudge the default audio output volume",
		Long:          "Raise or lower the volume of the default output device by a relative amount, unmuting it, from the CLI, an interactive shell or a remote client.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultCfg := repository.DefaultPath()
	cmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "config file path")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase logging (-v, -vv, ... up to 4)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.SetVerbosity(verbosity)
	}

	cmd.AddCommand(
		newAdjustCmd(),
		newStepCmd("up", "Raise the volume by one step", 1),
		newStepCmd("down", "Lower the volume by one step", -1),
		newRemoteCmd(),
		newConfigCmd(),
		newShellCmd(),
	)

	return cmd
}

// loadConfig reads the config file with environment overrides applied.
func loadConfig() (domain.Config, error) {
	repo, err := repository.NewFileRepository(cfgPath)
	if err != nil {
		return domain.Config{}, err
	}
	cfg, err := repository.WithEnv(repo).Load()
	if err != nil {
		return domain.Config{}, err
	}
	return domain.NewVolumeService().ValidateAndNormalize(cfg)
}

func newAdjuster() usecase.VolumeAdjuster {
	return usecase.NewVolumeAdjuster(newAudioSystem())
}

func newAdjustCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "adjust <delta>",
		Short: "Change the volume by delta (fraction of full scale, e.g. 0.1 or -0.05)",
		Example: `  volnudge adjust 0.1
  volnudge adjust -- -0.05
  volnudge adjust --strict 0.2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("delta must be a number: %q", args[0])
			}

			adj := newAdjuster()
			if strict {
				return adj.TryAdjust(delta)
			}
			adj.Adjust(delta)
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when the device could not be changed")
	return cmd
}

func newStepCmd(use, short string, sign float64) *cobra.Command {
	var step float64
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("step") {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				step = cfg.Step
			}
			if err := domain.ValidateStep(step); err != nil {
				return err
			}
			newAdjuster().Adjust(sign * step)
			return nil
		},
	}
	cmd.Flags().Float64Var(&step, "step", 0, "step size in (0, 1]; defaults to the configured step")
	return cmd
}

func newRemoteCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Accept volume changes from one remote client over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Remote.Addr = addr
			}

			rc, err := usecase.NewRemoteControl(newAdjuster(), newPowerController(), cfg.Remote)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			rc.Start(ctx)

			srv := web.NewServer(rc, cfg.Remote.Addr, cfg.Remote.RateLimit)
			fmt.Printf("volnudge remote listening on http://%s\n", cfg.Remote.Addr)
			logging.Infof("remote API: http://%s (heartbeat %s)", cfg.Remote.Addr, cfg.Remote.Heartbeat)
			if cfg.Remote.AllowPower {
				logging.Warnf("remote shutdown and restart are enabled")
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			if err := srv.Start(); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address host:port (overrides config)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}
	cmd.AddCommand(newConfigGetCmd(), newConfigSetCmd())
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the effective configuration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			password := ""
			if cfg.Remote.Password != "" {
				password = "********"
			}
			display := map[string]any{
				"step": cfg.Step,
				"remote": map[string]any{
					"addr":             cfg.Remote.Addr,
					"password":         password,
					"heartbeatSeconds": int(cfg.Remote.Heartbeat.Seconds()),
					"rateLimit":        cfg.Remote.RateLimit,
					"allowPower":       cfg.Remote.AllowPower,
				},
			}

			out, _ := json.MarshalIndent(display, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var (
		stepFlag      float64
		addrFlag      string
		passwordFlag  string
		heartbeatFlag time.Duration
		rateLimitFlag int
		powerFlag     bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Work on the file alone so environment overrides are not written back.
			repo, err := repository.NewFileRepository(cfgPath)
			if err != nil {
				return err
			}
			cfg, err := repo.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("step") {
				cfg.Step = stepFlag
			}
			if flags.Changed("addr") {
				cfg.Remote.Addr = addrFlag
			}
			if flags.Changed("password") {
				cfg.Remote.Password = passwordFlag
			}
			if flags.Changed("heartbeat") {
				cfg.Remote.Heartbeat = heartbeatFlag
			}
			if flags.Changed("rate-limit") {
				cfg.Remote.RateLimit = rateLimitFlag
			}
			if flags.Changed("allow-power") {
				cfg.Remote.AllowPower = powerFlag
			}

			cfg, err = domain.NewVolumeService().ValidateAndNormalize(cfg)
			if err != nil {
				return err
			}
			if err := repo.Save(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved: step=%g addr=%s heartbeat=%s rate-limit=%d allow-power=%t\n",
				cfg.Step, cfg.Remote.Addr, cfg.Remote.Heartbeat, cfg.Remote.RateLimit, cfg.Remote.AllowPower)
			return nil
		},
	}
	cmd.Flags().Float64Var(&stepFlag, "step", 0.05, "default step for up/down, in (0, 1]")
	cmd.Flags().StringVar(&addrFlag, "addr", "", "remote listen address host:port")
	cmd.Flags().StringVar(&passwordFlag, "password", "", "password remote clients must send")
	cmd.Flags().DurationVar(&heartbeatFlag, "heartbeat", 5*time.Second, "drop a silent remote client after this period, e.g. 5s")
	cmd.Flags().IntVar(&rateLimitFlag, "rate-limit", 10, "requests per second allowed from one remote address")
	cmd.Flags().BoolVar(&powerFlag, "allow-power", false, "let the remote client shut down or restart this machine")
	return cmd
}

func newShellCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveShell(prompt)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "volnudge> ", "shell prompt")
	return cmd
}

func runInteractiveShell(prompt string) error {
	historyFile := filepath.Join(os.TempDir(), "volnudge-shell.history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	sessionVerbosity := verbosity
	sessionCfg := cfgPath
	fmt.Println("Interactive shell. 'help' lists commands, 'exit' quits.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println()
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line {
		case "exit", "quit":
			return nil
		case "help":
			printShellHelp()
			continue
		case "+":
			line = "up"
		case "-":
			line = "down"
		}
		tokens, err := shlex.Split(line)
		if err != nil {
			fmt.Printf("Parse error: %v\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		if tokens[0] == "log" {
			if err := handleShellLog(tokens[1:], &sessionVerbosity); err != nil {
				fmt.Printf("log: %v\n", err)
			}
			continue
		}
		if tokens[0] == "shell" {
			fmt.Println("Already in the shell.")
			continue
		}

		// Each command gets a fresh root whose flag defaults would reset the session settings.
		tokens = append([]string{
			"--config=" + sessionCfg,
			fmt.Sprintf("--verbose=%d", sessionVerbosity),
		}, tokens...)
		if err := executeArgs(tokens); err != nil {
			fmt.Printf("command error: %v\n", err)
		}
		sessionVerbosity = verbosity
	}
}

func executeArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	root := NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func handleShellLog(args []string, sessionVerbosity *int) error {
	fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var vcount int
	var level string
	var show bool
	fs.CountVarP(&vcount, "verbose", "v", "Increase verbosity (-v... up to 4)")
	fs.StringVar(&level, "level", "", "level (error|warn|info|debug|trace)")
	fs.BoolVarP(&show, "show", "s", false, "print the current level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case show && vcount == 0 && level == "":
		fmt.Printf("log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	case level != "":
		_, count, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		*sessionVerbosity = count
	case vcount > 0:
		*sessionVerbosity = vcount
	default:
		fmt.Printf("log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	}

	logging.SetVerbosity(*sessionVerbosity)
	fmt.Printf("log level set to %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
	return nil
}

func printShellHelp() {
	fmt.Println(`Examples:
  adjust 0.1                  # raise by a tenth of full scale
  adjust -- -0.1              # lower by a tenth
  up / +                      # raise by the configured step
  down / -                    # lower by the configured step
  up --step 0.2               # raise by an explicit step
  remote --addr 0.0.0.0:40000 # accept a remote client
  config get                  # show settings
  config set --step 0.02      # change settings
  log -vv                     # more logging
  log --show                  # current log level
  exit / quit                 # leave the shell`)
}

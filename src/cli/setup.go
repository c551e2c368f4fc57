package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"virt-otg/src/config"
	"virt-otg/src/logging"
	"virt-otg/src/virtapi"
	"virt-otg/src/workflow"
)

// runnerEnv is everything a workflow command needs once flags are resolved:
// config, logger, and a wired Runner.
type runnerEnv struct {
	cfg     config.Config
	log     *slog.Logger
	logFile *os.File
	runner  *workflow.Runner
}

func (e *runnerEnv) close() {
	if e.logFile != nil {
		e.logFile.Close()
	}
}

// newRunnerEnv performs the startup steps shared by the workflow commands:
// privilege check, config load, log setup, and the virsh-backed client.
func newRunnerEnv(cmd *cobra.Command, console io.Writer, domain, drive string) (*runnerEnv, error) {
	if os.Geteuid() != 0 {
		return nil, errors.New("this command must be run as root")
	}

	flags := cmd.Root().PersistentFlags()
	cfgPath, _ := flags.GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if logFile, _ := flags.GetString("log-file"); logFile != "" {
		cfg.LogFile = logFile
	}
	if uri, _ := flags.GetString("connect"); uri != "" {
		cfg.ConnectURI = uri
	}

	log, file, err := logging.New(cfg.LogFile, console)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)

	client := virtapi.NewVirsh(cfg.VirshBin, cfg.ConnectURI, log)
	runner := workflow.New(client, domain, drive, log)
	runner.Commits.PollInterval = cfg.PollInterval()
	runner.Commits.Deadline = cfg.CommitTimeout()
	runner.StartPollInterval = cfg.PollInterval()
	runner.StartTimeout = cfg.StartTimeout()
	if term.IsTerminal(int(os.Stdout.Fd())) {
		runner.Engine.Progress = os.Stdout
	}

	return &runnerEnv{cfg: cfg, log: log, logFile: file, runner: runner}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

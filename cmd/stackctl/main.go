// Command stackctl realizes a topology descriptor against the local Docker
// daemon: it parses the descriptor, plans the stack, and brings the
// containers up or down.
//
// Usage:
//
//	stackctl [flags] up
//	stackctl [flags] down
//	stackctl [flags] status
//	stackctl [flags] logs <service>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/igorobed/hw3-api/internal/core/compose"
	"github.com/igorobed/hw3-api/internal/core/stack"
	"github.com/igorobed/hw3-api/internal/shell/docker"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess     = 0
	ExitUsageError  = 1
	ExitParseError  = 2
	ExitDockerError = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	descriptorPath := flag.String("f", "stack.yml", "Path to topology descriptor")
	stackName := flag.String("stack", "shortener", "Stack name, scopes all resource names")
	dockerHost := flag.String("docker-host", "", "Docker daemon address (default: environment)")
	removeVolumes := flag.Bool("volumes", false, "Remove named volumes on down")
	wait := flag.Duration("wait", 0, "After up, wait this long for containers to reach running")
	tail := flag.String("tail", "100", "Number of log lines for logs")
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	flag.Parse()

	logger := setupLogger(*logFormat)

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: stackctl [flags] up|down|status|logs <service>")
		return ExitUsageError
	}
	command := args[0]

	plan, err := loadPlan(*descriptorPath, *stackName)
	if err != nil {
		logger.Error("failed to load descriptor", "path", *descriptorPath, "error", err)
		return ExitParseError
	}

	client, err := docker.NewDockerClient(*dockerHost)
	if err != nil {
		logger.Error("failed to create docker client", "error", err)
		return ExitDockerError
	}
	defer client.Close()

	if err := client.Ping(); err != nil {
		logger.Error("docker daemon unreachable", "error", err)
		return ExitDockerError
	}

	orch := docker.NewOrchestrator(client, logger)
	ctx := context.Background()

	switch command {
	case "up":
		return runUp(ctx, orch, *plan, *wait, logger)
	case "down":
		if err := orch.Down(ctx, *plan, *removeVolumes); err != nil {
			logger.Error("down failed", "error", err)
			return ExitDockerError
		}
		return ExitSuccess
	case "status":
		return runStatus(ctx, orch, plan.StackName)
	case "logs":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: stackctl logs <service>")
			return ExitUsageError
		}
		return runLogs(ctx, orch, plan.StackName, args[1], *tail, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		return ExitUsageError
	}
}

// loadPlan reads and parses the descriptor and plans the stack.
// Environment variables are available for ${VAR} substitution in service
// environment values.
func loadPlan(path, stackName string) (*stack.Plan, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	spec, err := compose.Parse(string(content))
	if err != nil {
		return nil, err
	}

	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	plan := stack.BuildPlan(stack.BuildPlanParams{
		StackName: stackName,
		Spec:      spec,
		Variables: environMap(),
		BaseDir:   baseDir,
	})
	return &plan, nil
}

func runUp(ctx context.Context, orch *docker.Orchestrator, plan stack.Plan, wait time.Duration, logger *slog.Logger) int {
	containers, err := orch.Up(ctx, plan)
	if err != nil {
		logger.Error("up failed", "error", err)
		return ExitDockerError
	}

	if wait > 0 {
		ids := make([]string, 0, len(containers))
		for _, c := range containers {
			ids = append(ids, c.ID)
		}
		if err := orch.WaitRunning(ctx, ids, wait); err != nil {
			logger.Error("containers did not become ready", "error", err)
			return ExitDockerError
		}
	}

	for _, c := range containers {
		fmt.Printf("%-32s %s\n", c.Name, c.State)
	}
	return ExitSuccess
}

func runStatus(ctx context.Context, orch *docker.Orchestrator, stackName string) int {
	containers, err := orch.Status(ctx, stackName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "status failed: %v\n", err)
		return ExitDockerError
	}
	if len(containers) == 0 {
		fmt.Println("no containers")
		return ExitSuccess
	}
	for _, c := range containers {
		ports := make([]string, 0, len(c.Ports))
		for _, p := range c.Ports {
			if p.HostPort != 0 {
				ports = append(ports, fmt.Sprintf("%d->%d/%s", p.HostPort, p.ContainerPort, p.Protocol))
			}
		}
		fmt.Printf("%-32s %-10s %s\n", c.Name, c.State, strings.Join(ports, " "))
	}
	return ExitSuccess
}

func runLogs(ctx context.Context, orch *docker.Orchestrator, stackName, service, tail string, logger *slog.Logger) int {
	logs, err := orch.ServiceLogs(ctx, stackName, service, tail)
	if err != nil {
		logger.Error("logs failed", "service", service, "error", err)
		return ExitDockerError
	}
	fmt.Print(logs)
	return ExitSuccess
}

// environMap converts os.Environ into a substitution map.
func environMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

func setupLogger(format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

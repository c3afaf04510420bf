// Command callcenter is the operator CLI: manual broadcast triggers for
// debugging the realtime console, and the process launcher for a full
// local deployment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/bus"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/config"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/directory"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/supervisor"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/trigger"
	"github.com/tofabd/call-center-shajgoj-sub003/pkg/logger"
	"github.com/tofabd/call-center-shajgoj-sub003/pkg/utils"
)

const usage = `usage: callcenter <command> [flags]

commands:
  send-broadcast <user_id>   publish a customer notification to the user's private channel
  test-broadcast             publish synthetic call/extension events for console inspection
  start                      launch the five call-center processes and supervise them
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "send-broadcast":
		err = runSendBroadcast(rootCtx, os.Args[2:])
	case "test-broadcast":
		err = runTestBroadcast(rootCtx, os.Args[2:])
	case "start":
		err = runStart(rootCtx)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)
	return cfg, log, nil
}

func runSendBroadcast(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("send-broadcast", flag.ExitOnError)
	message := fs.String("message", "", "notification message (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("send-broadcast requires exactly one <user_id> argument")
	}
	userID := fs.Arg(0)

	cfg, log, err := setup()
	if err != nil {
		return err
	}

	db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		return err
	}
	defer rdb.Close()

	svc := trigger.NewService(directory.NewPostgresRepo(db), bus.NewPublisher(rdb, log), log)
	user, err := svc.SendCustomerNotification(ctx, userID, *message)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return fmt.Errorf("user %s not found", userID)
		}
		return err
	}

	fmt.Printf("Notification broadcast to user.%s (%s <%s>)\n", user.ID, user.Name, user.Email)
	fmt.Println("Delivery is fire-and-forget; check the frontend console.")
	return nil
}

func runTestBroadcast(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("test-broadcast", flag.ExitOnError)
	typ := fs.String("type", "all", "which fixture to publish: call, extension or all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *typ != "call" && *typ != "extension" && *typ != "all" {
		return fmt.Errorf("unknown --type %q (want call, extension or all)", *typ)
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}

	rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// Synthetic fixtures carry a fabricated originator so the private
	// routes exercise originator exclusion, matching a real agent
	// toggling their own status.
	svc := trigger.NewService(directory.NewMemoryRepo(), bus.NewPublisher(rdb, log), log)

	if *typ == "call" || *typ == "all" {
		ev, err := svc.SendTestCall(ctx, "cli-test-session")
		if err != nil {
			return err
		}
		fmt.Printf("Published %s (%s)\n", ev.Kind(), ev.ID())
	}
	if *typ == "extension" || *typ == "all" {
		ev, err := svc.SendTestExtension(ctx, "cli-test-session")
		if err != nil {
			return err
		}
		fmt.Printf("Published %s (%s)\n", ev.Kind(), ev.ID())
	}

	fmt.Println("Events published; check the frontend console.")
	return nil
}

func runStart(ctx context.Context) error {
	_, log, err := setup()
	if err != nil {
		return err
	}

	procs := supervisor.DefaultProcesses()
	for i, p := range procs {
		if override := processOverride(p.Name); len(override) > 0 {
			procs[i].Args = override
		}
	}

	sup, err := supervisor.New(procs, "", log)
	if err != nil {
		return err
	}

	fmt.Println("Starting call-center processes; Ctrl-C stops all of them.")
	if err := sup.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// processOverride reads CALLCENTER_CMD_<NAME> (e.g. CALLCENTER_CMD_QUEUE_WORKER)
// as a space-separated argv replacing the default command.
func processOverride(name string) []string {
	key := "CALLCENTER_CMD_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	return strings.Fields(raw)
}

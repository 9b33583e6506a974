// Command-line interface to a headless labelpaint server.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/server"
	"github.com/janelia-flyem/labelpaint/transport"
	"github.com/janelia-flyem/labelpaint/transport/recorder"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")

	// Path to TOML configuration file.  Leave unset for the default headless volume.
	configFile = flag.String("config", "", "")

	// Address for http communication, overriding the configuration.
	httpAddress = flag.String("http", "", "")

	// Profile CPU usage using standard gotest system.
	cpuprofile = flag.String("cpuprofile", "", "")
)

const helpMessage = `
labelpaint paints 3d labels and sends painted regions to a merge/split solver

Usage: labelpaint [options] <command>

      -config     =string   Path to TOML configuration file.
      -http       =string   Address for HTTP communication.
      -cpuprofile =string   Write CPU profile to this file.
      -verbose    (flag)    Log debug messages.
  -h, -help       (flag)    Show help message

Commands:

	about
	serve
	token  <user>          Print a JWT for the user signed with [auth] secret_key.
	replay <record file>   Resend recorded solver frames through the [solver] transport.
`

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = func() { fmt.Print(helpMessage) }
	flag.Parse()

	if flag.NArg() >= 1 && strings.ToLower(flag.Args()[0]) == "help" {
		*showHelp = true
	}
	if *runVerbose {
		labelpaint.SetLogMode(labelpaint.DebugMode)
	}
	if *showHelp || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := DoCommand(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func loadConfig() (*server.Config, error) {
	var cfg *server.Config
	if *configFile == "" {
		cfg = server.DefaultConfig()
	} else {
		var err error
		if cfg, err = server.LoadConfig(*configFile); err != nil {
			return nil, err
		}
	}
	if *httpAddress != "" {
		cfg.Server.HTTPAddress = *httpAddress
	}
	cfg.Logging.SetLogger()
	return cfg, nil
}

// DoCommand serves as a switchboard for commands.
func DoCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("blank command")
	}
	switch args[0] {
	case "about", "version":
		fmt.Printf("labelpaint %s, solver protocol %s\n", labelpaint.Version, labelpaint.ProtocolVersion)
		return nil
	case "serve":
		return DoServe()
	case "token":
		if len(args) != 2 {
			return fmt.Errorf("usage: labelpaint token <user>")
		}
		return DoToken(args[1])
	case "replay":
		if len(args) != 2 {
			return fmt.Errorf("usage: labelpaint replay <record file>")
		}
		return DoReplay(args[1])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// DoServe runs the web server until interrupted.
func DoServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer labelpaint.Shutdown()

	s, err := server.New(cfg)
	if err != nil {
		return err
	}

	// Capture ctrl+c and other interrupts.  Then handle graceful shutdown.
	stopSig := make(chan os.Signal, 1)
	go func() {
		sig := <-stopSig
		labelpaint.Infof("Stop signal captured: %q.  Shutting down...\n", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			labelpaint.Errorf("Error on shutdown: %v\n", err)
		}
	}()
	signal.Notify(stopSig, os.Interrupt, syscall.SIGTERM)

	return s.Serve()
}

// DoToken prints a JWT for the user.
func DoToken(user string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.SecretKey == "" {
		return fmt.Errorf("no [auth] secret_key configured")
	}
	token, err := server.GenerateJWT(user, cfg.Auth.SecretKey)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

// DoReplay resends a solver record file through the configured transport.
func DoReplay(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Solver.Record = "" // don't record the replay into itself
	sender, err := transport.New(cfg.Solver)
	if err != nil {
		return err
	}
	defer sender.Close()
	n, err := recorder.Replay(context.Background(), path, sender)
	fmt.Printf("Replayed %d frames from %s\n", n, path)
	return err
}

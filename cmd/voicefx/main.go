package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
)

var version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	LogLevel string           `help:"Log level (DEBUG, INFO, WARN, ERROR)" default:"WARN" enum:"DEBUG,INFO,WARN,ERROR,debug,info,warn,error"`
	LogFile  string           `type:"path" help:"Log file path (default: stderr)"`
	Version  kong.VersionFlag `short:"v" help:"Show version information"`

	ctx context.Context `kong:"-"`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Process  ProcessCmd  `cmd:"" help:"Run the effect pipeline over a WAV file"`
	Encode   EncodeCmd   `cmd:"" help:"Encode a WAV file to Ogg Opus"`
	Decode   DecodeCmd   `cmd:"" help:"Decode an Ogg Opus file to 48 kHz mono WAV"`
	Info     InfoCmd     `cmd:"" help:"Show size and duration of an Ogg Opus file"`
	Pipeline PipelineCmd `cmd:"" help:"Produce original, processed and Opus comparison files for a recording"`
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("voicefx"),
		kong.Description("Offline voice clean-up and Opus packaging"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	closeLog, err := configureLogging(cli.LogLevel, cli.LogFile)
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cli.ctx = ctx

	if err := kctx.Run(&cli.Globals); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"command":  kctx.Command(),
			"error":    err.Error(),
		}).Error("Command failed")
		printError(err.Error())
		closeLog()
		os.Exit(1)
	}
}

// configureLogging applies the level and optional log file to the standard
// logrus logger and returns a function that closes the file.
func configureLogging(level, file string) (func(), error) {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(parsed)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if file == "" {
		logrus.SetOutput(os.Stderr)
		return func() {}, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)

	var closed bool
	return func() {
		if !closed {
			closed = true
			f.Close()
		}
	}, nil
}

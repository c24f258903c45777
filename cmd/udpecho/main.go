package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/netip"
	"os"
	"os/signal"
	"time"

	"github.com/opd-ai/udpsock"
	"github.com/opd-ai/udpsock/address"
	"github.com/opd-ai/udpsock/limits"
	"github.com/sirupsen/logrus"
)

const defaultServerAddr = "127.0.0.1:7007"

// CLI configuration
type CLIConfig struct {
	mode        string
	listenAddr  string
	fd          int
	target      string
	message     string
	count       int
	timeout     time.Duration
	idleTimeout time.Duration
	maxLength   int
	logLevel    string
	logFile     string
	help        bool
}

// parseCLIFlags parses command-line flags and returns the configuration.
func parseCLIFlags(args []string) (*CLIConfig, error) {
	config := &CLIConfig{}
	fs := flag.NewFlagSet("udpecho", flag.ContinueOnError)

	// Mode and addressing
	fs.StringVar(&config.mode, "mode", "server", "Run as echo server or client (server, client)")
	fs.StringVar(&config.listenAddr, "listen", "", "Local address to bind (default: 127.0.0.1:7007 for servers, an ephemeral port for clients)")
	fs.IntVar(&config.fd, "fd", -1, "Inherited UDP descriptor to use instead of binding")
	fs.StringVar(&config.target, "target", defaultServerAddr, "Server address (client mode)")

	// Client payload
	fs.StringVar(&config.message, "message", "hello", "Payload to send (client mode)")
	fs.IntVar(&config.count, "count", 1, "Number of datagrams to send (client mode)")

	// Timeouts and sizes
	fs.DurationVar(&config.timeout, "timeout", 2*time.Second, "Deadline for each send and reply")
	fs.DurationVar(&config.idleTimeout, "idle-timeout", time.Second, "Server receive deadline between shutdown checks")
	fs.IntVar(&config.maxLength, "max-length", limits.DefaultReceiveSize, "Maximum datagram payload to accept")

	// Logging configuration
	fs.StringVar(&config.logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&config.logFile, "log-file", "", "Log file path (default: stderr)")

	fs.BoolVar(&config.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	applyEnvironmentOverrides(config, explicit)

	if config.listenAddr == "" {
		config.listenAddr = defaultServerAddr
		if config.mode == "client" {
			config.listenAddr = clientListenAddr(config.target)
		}
	}
	return config, nil
}

// printUsage prints the usage information.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "UDP echo server and client")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s [options]\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  %s -mode server -listen 0.0.0.0:7007\n", os.Args[0])
	fmt.Fprintf(w, "  %s -mode client -target 127.0.0.1:7007 -message ping -count 3\n", os.Args[0])
	fmt.Fprintf(w, "  %s -mode server -fd 3   # descriptor inherited from a supervisor\n", os.Args[0])
}

// validateCLIConfig validates the CLI configuration.
func validateCLIConfig(config *CLIConfig) error {
	if config.mode != "server" && config.mode != "client" {
		return fmt.Errorf("invalid mode %q: must be server or client", config.mode)
	}

	if config.fd < -1 {
		return fmt.Errorf("invalid descriptor %d", config.fd)
	}

	if config.fd == -1 && config.listenAddr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}

	if config.mode == "client" {
		if config.target == "" {
			return fmt.Errorf("target address cannot be empty")
		}
		if config.count <= 0 {
			return fmt.Errorf("count must be positive")
		}
	}

	if config.timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if config.idleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}

	if err := limits.ValidateReceiveLength(config.maxLength); err != nil {
		return fmt.Errorf("max length: %w", err)
	}

	if _, err := logrus.ParseLevel(config.logLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	return nil
}

// setupLogging builds the logger described by config. The returned function
// closes the log file, if any.
func setupLogging(config *CLIConfig) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(config.logLevel)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(level)

	if config.logFile == "" {
		logger.SetOutput(os.Stderr)
		return logger, func() {}, nil
	}

	f, err := os.OpenFile(config.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, func() { _ = f.Close() }, nil
}

// openSocket attaches the inherited descriptor when one is configured and
// binds the listen address otherwise.
func openSocket(config *CLIConfig, logger logrus.FieldLogger) (*udpsock.Socket, error) {
	opts := udpsock.NewOptions()
	opts.Logger = logger

	if config.fd >= 0 {
		return udpsock.FromDescriptorWithOptions(udpsock.Descriptor(config.fd), opts)
	}

	addr, err := address.Resolve(context.Background(), config.listenAddr)
	if err != nil {
		return nil, err
	}
	return udpsock.ListenWithOptions(addr, opts)
}

// runServer echoes every datagram back to its sender until ctx is done.
// Shutdown is noticed at the next receive deadline.
func runServer(ctx context.Context, sock *udpsock.Socket, config *CLIConfig, logger logrus.FieldLogger) error {
	logger.WithFields(logrus.Fields{
		"local_addr": sock.LocalAddr().String(),
		"component":  "udpecho",
	}).Info("Echo server started")

	for {
		if ctx.Err() != nil {
			return nil
		}

		payload, from, err := sock.Receive(config.maxLength, udpsock.After(config.idleTimeout))
		if err != nil {
			if retry := handleServerError(err, logger); retry {
				continue
			}
			return err
		}

		if err := sock.Send(payload, from, udpsock.After(config.timeout)); err != nil {
			logger.WithFields(logrus.Fields{
				"remote_addr": from.String(),
				"error":       err.Error(),
				"component":   "udpecho",
			}).Warn("Failed to echo datagram")
			continue
		}

		logger.WithFields(logrus.Fields{
			"remote_addr": from.String(),
			"bytes":       len(payload),
			"component":   "udpecho",
		}).Debug("Echoed datagram")
	}
}

// handleServerError reports whether the server loop should keep running.
func handleServerError(err error, logger logrus.FieldLogger) bool {
	switch udpsock.KindOf(err) {
	case udpsock.KindOperationTimedOut:
		return true
	case udpsock.KindConnectionResetByPeer, udpsock.KindNoBufferSpaceAvailable:
		logger.WithFields(logrus.Fields{
			"error":         err.Error(),
			"partial_bytes": len(udpsock.PartialData(err)),
			"component":     "udpecho",
		}).Warn("Transient receive failure")
		return true
	default:
		return false
	}
}

// runClient sends config.count datagrams to target and writes each reply to out.
func runClient(ctx context.Context, sock *udpsock.Socket, config *CLIConfig, out io.Writer) error {
	target, err := address.Resolve(ctx, config.target)
	if err != nil {
		return err
	}

	payload := []byte(config.message)
	if err := limits.ValidatePayload(payload, address.FamilyOf(target) == address.FamilyIPv6); err != nil {
		return err
	}

	for i := 0; i < config.count; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		start := time.Now()
		if err := sock.Send(payload, target, udpsock.After(config.timeout)); err != nil {
			return err
		}

		reply, from, err := sock.Receive(config.maxLength, udpsock.After(config.timeout))
		if err != nil {
			if udpsock.IsTimeout(err) {
				fmt.Fprintf(out, "seq=%d timeout after %v\n", i, config.timeout)
				continue
			}
			return err
		}
		fmt.Fprintf(out, "seq=%d %d bytes from %s in %v: %s\n",
			i, len(reply), from, time.Since(start).Round(time.Microsecond), reply)
	}
	return nil
}

// setupSignalHandling cancels ctx on interrupt.
func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		<-sigChan
		cancel()
	}()
}

func run(config *CLIConfig, out io.Writer) error {
	logger, closeLog, err := setupLogging(config)
	if err != nil {
		return err
	}
	defer closeLog()

	sock, err := openSocket(config, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sock.Close(); err != nil && !udpsock.IsClosed(err) {
			logger.WithError(err).Warn("Error closing socket")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	if config.mode == "client" {
		return runClient(ctx, sock, config, out)
	}
	return runServer(ctx, sock, config, logger)
}

// clientListenAddr picks an ephemeral local address of the target's family.
func clientListenAddr(target string) string {
	if ap, err := address.Parse(target); err == nil && address.FamilyOf(ap) == address.FamilyIPv6 {
		return netip.AddrPortFrom(netip.IPv6Unspecified(), 0).String()
	}
	return "0.0.0.0:0"
}

func main() {
	config, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if config.help {
		printUsage(os.Stdout)
		os.Exit(0)
	}

	if err := validateCLIConfig(config); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Use -help for usage information.\n")
		os.Exit(1)
	}

	if err := run(config, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "udpecho: %v\n", err)
		os.Exit(1)
	}
}

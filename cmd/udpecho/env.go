package main

import (
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// listenFDsStart is the first descriptor passed by socket-activating supervisors.
const listenFDsStart = 3

// applyEnvironmentOverrides updates configuration from UDPECHO_* variables and
// supervisor socket activation. Flags given explicitly on the command line win.
func applyEnvironmentOverrides(config *CLIConfig, explicit map[string]bool) {
	if !explicit["log-level"] {
		if level := os.Getenv("UDPECHO_LOG_LEVEL"); level != "" {
			config.logLevel = level
		}
	}
	if !explicit["timeout"] {
		parseDurationSetting("UDPECHO_TIMEOUT", &config.timeout)
	}
	if !explicit["idle-timeout"] {
		parseDurationSetting("UDPECHO_IDLE_TIMEOUT", &config.idleTimeout)
	}
	if config.mode == "server" && !explicit["fd"] && !explicit["listen"] {
		parseActivationSetting(config)
	}
}

// parseDurationSetting stores the duration in env var name into dst. Invalid
// values are logged and ignored.
func parseDurationSetting(name string, dst *time.Duration) {
	value := os.Getenv(name)
	if value == "" {
		return
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logrus.WithFields(logrus.Fields{
			"function":    "parseDurationSetting",
			"env_var":     name,
			"value":       value,
			"using_value": dst.String(),
		}).Warn("Invalid duration in environment variable, using default")
		return
	}
	*dst = d
}

// parseActivationSetting adopts the first descriptor passed through the
// LISTEN_PID/LISTEN_FDS protocol when it is addressed to this process.
func parseActivationSetting(config *CLIConfig) {
	fdsStr := os.Getenv("LISTEN_FDS")
	if fdsStr == "" {
		return
	}

	pid, err := strconv.Atoi(os.Getenv("LISTEN_PID"))
	if err != nil || pid != os.Getpid() {
		return
	}

	fds, err := strconv.Atoi(fdsStr)
	if err != nil || fds < 1 {
		logrus.WithFields(logrus.Fields{
			"function": "parseActivationSetting",
			"env_var":  "LISTEN_FDS",
			"value":    fdsStr,
		}).Warn("Ignoring invalid LISTEN_FDS")
		return
	}
	if fds > 1 {
		logrus.WithFields(logrus.Fields{
			"function": "parseActivationSetting",
			"count":    fds,
		}).Warn("Multiple descriptors passed, using the first")
	}
	config.fd = listenFDsStart
}

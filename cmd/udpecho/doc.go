// Package main provides udpecho, a UDP echo server and client built on udpsock.
//
// # Usage
//
// Run an echo server:
//
//	go run ./cmd/udpecho -mode server -listen 127.0.0.1:7007
//
// Send three datagrams and print the replies:
//
//	go run ./cmd/udpecho -mode client -target 127.0.0.1:7007 -message ping -count 3
//
// Serve on a descriptor inherited from a supervisor process:
//
//	udpecho -mode server -fd 3
//
// # Configuration Options
//
//   - -mode: server or client (default: server)
//   - -listen: local address to bind (default: 127.0.0.1:7007 for servers, ephemeral for clients)
//   - -fd: inherited UDP descriptor, used instead of -listen
//   - -target: server address in client mode
//   - -message, -count: client payload and number of datagrams
//   - -timeout: deadline for each send and reply (default: 2s)
//   - -idle-timeout: server receive deadline between shutdown checks (default: 1s)
//   - -max-length: largest payload accepted (default: 1500)
//   - -log-level, -log-file: logrus level and destination
//
// # Environment
//
// Flags not given on the command line can be set through UDPECHO_LOG_LEVEL,
// UDPECHO_TIMEOUT and UDPECHO_IDLE_TIMEOUT. When LISTEN_PID names this process
// and LISTEN_FDS is at least 1, descriptor 3 is adopted as if -fd 3 were given,
// unless -fd or -listen is set.
//
// The server stops on SIGINT at its next receive deadline. Receive timeouts,
// peer resets and buffer exhaustion keep the server running; any other
// failure ends it with exit code 1.
package main

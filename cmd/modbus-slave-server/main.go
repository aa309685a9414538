// Command modbus-slave-server runs a Modbus slave instance over TCP
// and/or a serial RTU link, with its data model fixed by a TOML
// configuration file.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"

	slave "github.com/hemlock-automation/modbus-slave"
	"github.com/hemlock-automation/modbus-slave/config"
	"github.com/hemlock-automation/modbus-slave/transport"
)

func main() {
	var configPath string
	var tcpPort int
	var maxClients uint
	var silent bool
	var serialDevice string
	var baudRate int
	var parity string
	var help bool

	flag.StringVar(&configPath, "config", "", "path to the instance's TOML descriptor configuration [required]")
	flag.IntVar(&tcpPort, "p", 502, "TCP port to listen on (0 disables the TCP listener)")
	flag.UintVar(&maxClients, "n", 32, "maximum number of concurrent TCP clients (0 means unlimited)")
	flag.BoolVar(&silent, "s", false, "silent: suppress info-level logging")
	flag.StringVar(&serialDevice, "serial", "", "serial device to serve RTU on (e.g. /dev/ttyUSB0); empty disables it")
	flag.IntVar(&baudRate, "baud", 19200, "serial bus speed in bps (rtu)")
	flag.StringVar(&parity, "parity", "even", "parity bit <none|even|odd> on the serial bus (rtu)")
	flag.BoolVar(&help, "h", false, "show usage")
	flag.Parse()

	if help || configPath == "" {
		flag.Usage()
		os.Exit(0)
	}

	var logger slave.LeveledLogger = slave.NewLogger("modbus-slave-server")
	if silent {
		logger = quietLogger{logger}
	}

	file, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	inst, _, err := config.Build(file, slave.Logger(logger))
	if err != nil {
		fmt.Printf("failed to build instance from config: %v\n", err)
		os.Exit(1)
	}

	if tcpPort > 0 {
		l, err := net.Listen("tcp", fmt.Sprintf(":%d", tcpPort))
		if err != nil {
			fmt.Printf("failed to listen on port %d: %v\n", tcpPort, err)
			os.Exit(1)
		}

		srv := transport.NewTCPServer(inst, logger, maxClients, 30*time.Second)
		if err := srv.Start(l); err != nil {
			fmt.Printf("failed to start tcp server: %v\n", err)
			os.Exit(1)
		}
		logger.Infof("serving modbus/tcp on port %d", tcpPort)
	}

	if serialDevice != "" {
		var p serial.Parity
		switch parity {
		case "none":
			p = serial.NoParity
		case "odd":
			p = serial.OddParity
		case "even":
			p = serial.EvenParity
		default:
			fmt.Printf("unknown parity setting %q (should be one of none, odd or even)\n", parity)
			os.Exit(1)
		}

		sp, err := transport.NewSerialPort(transport.SerialConfig{
			Device:   serialDevice,
			BaudRate: baudRate,
			DataBits: 8,
			Parity:   p,
			StopBits: serial.OneStopBit,
		}, inst, logger)
		if err != nil {
			fmt.Printf("failed to open serial device %s: %v\n", serialDevice, err)
			os.Exit(1)
		}
		defer sp.Close()

		go func() {
			if err := sp.Serve(); err != nil {
				logger.Warningf("serial server stopped: %v", err)
			}
		}()
		logger.Infof("serving modbus RTU on %s at %d bps", serialDevice, baudRate)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}

// quietLogger drops Info-level messages, leaving warnings, errors and
// fatals intact for the -s (silent) flag.
type quietLogger struct {
	slave.LeveledLogger
}

func (quietLogger) Info(msg string)                          {}
func (quietLogger) Infof(format string, args ...interface{}) {}

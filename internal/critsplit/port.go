package ic

import (
	"fmt"
	"net"
)

const (
	maxOffset       = 1024
	defaultFreePort = 10_000
)

func (c *Config) getFreePort(defaultPort int) (int, error) {
	if defaultPort == 0 {
		defaultPort = defaultFreePort
	}

	if port, err := checkPortAvailability(defaultPort); err == nil {
		return port, nil
	}

	for i := range maxOffset {
		port := defaultPort + i
		if port > 65535 {
			break
		}
		if port, err := checkPortAvailability(port); err == nil {
			c.log().Warningf("port %d unavailable: falling back to port %d", defaultPort, port)
			return port, nil
		}
	}

	port, err := getRandomFreePort()
	if err != nil {
		return defaultPort, err
	}
	return port, nil
}

func checkPortAvailability(port int) (int, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return 0, err
	}
	defer ln.Close()

	return port, nil
}

// Asks the kernel for a free open port that is ready to use.
func getRandomFreePort() (port int, err error) {
	var a *net.TCPAddr
	if a, err = net.ResolveTCPAddr("tcp", "localhost:0"); err == nil {
		var l *net.TCPListener
		if l, err = net.ListenTCP("tcp", a); err == nil {
			defer l.Close()
			return l.Addr().(*net.TCPAddr).Port, nil
		}
	}
	return
}

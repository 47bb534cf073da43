package main

import (
	"fmt"
	"net"

	"github.com/enbility/zeroconf/v3"
)

// mDNS service parameters.
const (
	ServiceType = "_tsmeter._tcp"
	Domain      = "local."
)

// Advertise registers the HTTP API under instance on every interface.
// The caller shuts the returned server down on exit.
func Advertise(instance string, addr net.Addr, version string) (*zeroconf.Server, error) {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return nil, fmt.Errorf("advertise: unsupported address %s", addr)
	}
	txt := []string{
		"version=" + version,
		"path=/api/v1",
	}
	server, err := zeroconf.Register(instance, ServiceType, Domain, tcp.Port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", ServiceType, err)
	}
	return server, nil
}

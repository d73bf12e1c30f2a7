/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package restapi

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/Juice-Labs/egs-sdk-go/pkg/errors"
)

// Endpoint is the parsed form of an EGS base URL.
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
	Prefix string
}

// ParseEndpoint splits serverURL into scheme, host, port and path prefix.
// A URL without "://" is treated as a plain http host.
func ParseEndpoint(serverURL string) (Endpoint, error) {
	endpoint := Endpoint{
		Scheme: "http",
	}

	rest := strings.TrimSpace(serverURL)
	if index := strings.Index(rest, "://"); index != -1 {
		endpoint.Scheme = strings.ToLower(rest[:index])
		rest = rest[index+3:]
	}

	switch endpoint.Scheme {
	case "http":
		endpoint.Port = 80
	case "https":
		endpoint.Port = 443
	default:
		return Endpoint{}, errors.ErrInvalidArgument.Wrapf("unsupported scheme %q in %q", endpoint.Scheme, serverURL)
	}

	hostPort := rest
	if index := strings.Index(rest, "/"); index != -1 {
		hostPort = rest[:index]
		endpoint.Prefix = strings.TrimRight(rest[index:], "/")
	}

	host, port, err := splitHostPort(hostPort)
	if err != nil {
		return Endpoint{}, errors.ErrInvalidArgument.Wrapf("invalid server address %q, %v", serverURL, err)
	}

	if host == "" {
		return Endpoint{}, errors.ErrInvalidArgument.Wrapf("server URL %q has no host", serverURL)
	}

	endpoint.Host = host
	if port != 0 {
		endpoint.Port = port
	}

	return endpoint, nil
}

func splitHostPort(hostPort string) (string, int, error) {
	// A colon after the closing bracket of an IPv6 literal, or any colon
	// without brackets, separates the port.
	colon := strings.LastIndex(hostPort, ":")
	if colon == -1 || colon < strings.LastIndex(hostPort, "]") {
		return strings.Trim(hostPort, "[]"), 0, nil
	}

	host := strings.Trim(hostPort[:colon], "[]")

	port, err := strconv.Atoi(hostPort[colon+1:])
	if err != nil {
		return "", 0, fmt.Errorf("port %q is not a number", hostPort[colon+1:])
	}

	if port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("port %d is out of range", port)
	}

	return host, port, nil
}

// Address returns host:port, bracketing IPv6 hosts.
func (endpoint Endpoint) Address() string {
	return net.JoinHostPort(endpoint.Host, strconv.Itoa(endpoint.Port))
}

func (endpoint Endpoint) String() string {
	return fmt.Sprintf("%s://%s%s", endpoint.Scheme, endpoint.Address(), endpoint.Prefix)
}

// URL joins the endpoint with an operation path, which may carry a query.
func (endpoint Endpoint) URL(path string) string {
	return endpoint.String() + path
}

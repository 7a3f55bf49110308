package utils

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// PortOf returns the port of addr. addr can be ":8000", "0.0.0.0:8000"
// or "[::]:8000".
func PortOf(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		if strings.HasPrefix(addr, ":") {
			p = addr[1:]
		} else {
			return 0, fmt.Errorf("invalid addr %q: %w", addr, err)
		}
	}
	v, err := strconv.Atoi(p)
	if err != nil || v < 0 || v > 65535 {
		return 0, fmt.Errorf("invalid port in %q", addr)
	}
	return v, nil
}

//go:build !unix && !windows

package utils

func isAddrInUse(err error) bool {
	return false
}

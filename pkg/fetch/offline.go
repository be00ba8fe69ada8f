package fetch

import "net"

// Offline reports whether the host currently lacks any usable network
// interface: every interface is either down, loopback-only, or has no
// address. It is the default connectivity probe and errs on the side of
// "online" when the interface list cannot be read.
func Offline() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := ifc.Addrs()
		if err != nil {
			continue
		}
		if len(addrs) > 0 {
			return false
		}
	}
	return true
}

package client

import (
	"crypto/md5" //nolint:gosec
	"fmt"
	"net"
	"strconv"

	"github.com/gofrs/uuid"
)

// DefaultPort is used when an address has none.
const DefaultPort = 25565

// splitAddr returns addr with a port, and the host and port the handshake
// announces.
func splitAddr(addr string) (hostport, host string, port uint16, err error) {
	if addr == "" {
		return "", "", 0, fmt.Errorf("empty address")
	}
	h, p, err := net.SplitHostPort(addr)
	if err != nil {
		// no port
		return net.JoinHostPort(addr, strconv.Itoa(DefaultPort)), addr, DefaultPort, nil
	}
	n, err := strconv.ParseUint(p, 10, 16)
	if err != nil || n == 0 {
		return "", "", 0, fmt.Errorf("invalid port in %q", addr)
	}
	return addr, h, uint16(n), nil
}

// OfflineUUID is the UUID an offline mode server assigns to name: an MD5
// name based UUID over "OfflinePlayer:"+name.
func OfflineUUID(name string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + name)) //nolint:gosec
	u := uuid.FromBytesOrNil(sum[:])
	u.SetVersion(uuid.V3)
	u.SetVariant(uuid.VariantRFC4122)
	return u
}

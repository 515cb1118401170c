package peers

import (
	"fmt"
	"net"
	"strconv"
)

// Address is the host:port of a node. It is a comparable value: two addresses
// are equal when their hosts and ports are equal.
type Address struct {
	Host string
	Port uint16
}

// NewAddress creates an Address from its fields.
func NewAddress(host string, port uint16) Address {
	return Address{
		Host: host,
		Port: port,
	}
}

// ParseAddress parses a host:port string.
func ParseAddress(s string) (Address, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return Address{}, err
	}

	if host == "" {
		return Address{}, fmt.Errorf("address %q has no host", s)
	}

	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return Address{}, fmt.Errorf("address %q has an invalid port: %v", s, err)
	}

	return NewAddress(host, uint16(p)), nil
}

// String returns the host:port form of the address.
func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

// ExcludeAddress is used to exclude a single address from a list of addresses.
// It returns the index of the last removed entry, or -1.
func ExcludeAddress(addrs []Address, addr Address) (int, []Address) {
	index := -1
	others := make([]Address, 0, len(addrs))
	for i, a := range addrs {
		if a != addr {
			others = append(others, a)
		} else {
			index = i
		}
	}
	return index, others
}

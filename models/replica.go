package models

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ErrInvalidReplica is returned for any replica URL that cannot be probed.
var ErrInvalidReplica = errors.New("invalid replica url")

// Scheme tags which protocol a Replica is probed with.
type Scheme int

const (
	SchemeICMP Scheme = iota + 1
	SchemeTCP
	SchemeHTTP
	SchemeHTTPS
)

func (s Scheme) String() string {
	switch s {
	case SchemeICMP:
		return "icmp"
	case SchemeTCP:
		return "tcp"
	case SchemeHTTP:
		return "http"
	case SchemeHTTPS:
		return "https"
	default:
		return "unknown"
	}
}

// Replica is one network target of a poll node. Scheme selects which of the
// remaining fields are meaningful:
//
//	icmp:        Host
//	tcp:         Host, Port
//	http, https: URL
//
// Raw always holds the URL exactly as configured; it is the identity sent in reports.
type Replica struct {
	Scheme Scheme
	Raw    string
	Host   string
	Port   uint16
	URL    string
}

// ParseReplica builds a Replica from a configured URL. Hosts are kept in bare
// form, so an IPv6 literal is stored as "::1" and never as "[::1]".
func ParseReplica(raw string) (Replica, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Replica{}, fmt.Errorf("%w: %q: %v", ErrInvalidReplica, raw, err)
	}

	switch u.Scheme {
	case "icmp":
		host := u.Hostname()
		if host == "" {
			return Replica{}, fmt.Errorf("%w: %q: missing host", ErrInvalidReplica, raw)
		}
		return Replica{Scheme: SchemeICMP, Raw: raw, Host: host}, nil

	case "tcp":
		host, port := u.Hostname(), u.Port()
		if host == "" || port == "" {
			return Replica{}, fmt.Errorf("%w: %q: tcp needs host and port", ErrInvalidReplica, raw)
		}
		p, err := strconv.ParseUint(port, 10, 16)
		if err != nil {
			return Replica{}, fmt.Errorf("%w: %q: bad port: %v", ErrInvalidReplica, raw, err)
		}
		return Replica{Scheme: SchemeTCP, Raw: raw, Host: host, Port: uint16(p)}, nil

	case "http", "https":
		if u.Host == "" {
			return Replica{}, fmt.Errorf("%w: %q: missing host", ErrInvalidReplica, raw)
		}
		scheme := SchemeHTTP
		if u.Scheme == "https" {
			scheme = SchemeHTTPS
		}
		return Replica{Scheme: scheme, Raw: raw, URL: u.String()}, nil
	}

	return Replica{}, fmt.Errorf("%w: %q: unsupported scheme %q", ErrInvalidReplica, raw, u.Scheme)
}

func (r Replica) String() string {
	return r.Raw
}

// UnmarshalYAML parses replica URLs while the config file is decoded, so a bad
// URL fails the whole load.
func (r *Replica) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}

	parsed, err := ParseReplica(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

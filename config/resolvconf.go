package config

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// ErrUnableToParseConfig is returned when /etc/resolv.conf cannot be read
// or yields zero nameservers (spec §6.4).
var ErrUnableToParseConfig = errors.New("config: unable to parse resolv.conf")

// ParseResolvConf reads nameserver lines ("nameserver <ip>") from the
// resolv.conf-formatted file at path, skipping blank lines and comments
// introduced by "#" or ";". It is the external collaborator the core
// library expects a caller to supply when no nameservers are given
// explicitly — the core itself never reads this file.
func ParseResolvConf(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrUnableToParseConfig
	}
	defer f.Close()

	servers, err := parseResolvConf(f)
	if err != nil {
		return nil, err
	}
	if len(servers) == 0 {
		return nil, ErrUnableToParseConfig
	}
	return servers, nil
}

func parseResolvConf(r io.Reader) ([]string, error) {
	var servers []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "nameserver" {
			servers = append(servers, fields[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, ErrUnableToParseConfig
	}
	return servers, nil
}

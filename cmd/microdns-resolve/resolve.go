package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quartzstack/microdns/config"
	"github.com/quartzstack/microdns/dns"
	"github.com/quartzstack/microdns/internal/security"
	"github.com/quartzstack/microdns/internal/transport"
	"github.com/quartzstack/microdns/internal/wire"
)

// maxTrackedSources bounds the rate limiter's per-source-IP table,
// independent of how many resolvers this process itself is configured with.
const maxTrackedSources = 64

// runResolve starts a query for every name at once on a single dns.Socket,
// driving its Dispatch/Process/PollAt cycle over one real UDPTransport.
func runResolve(out io.Writer, log *logrus.Logger, cfg *config.Config, names []string, aaaa bool) error {
	resolvers, err := cfg.ResolverIPs()
	if err != nil {
		return err
	}

	udp, err := transport.NewUDPTransport()
	if err != nil {
		return fmt.Errorf("opening transport: %w", err)
	}
	defer func() { _ = udp.Close() }()

	if err := udp.SetHopLimit(cfg.HopLimit); err != nil {
		return fmt.Errorf("setting hop limit: %w", err)
	}

	storage := dns.NewBorrowedStorage(cfg.Storage.Capacity)
	if cfg.Storage.Owned {
		storage = dns.NewOwnedStorage(cfg.Storage.Capacity)
	}

	sock, err := dns.New(resolvers, storage, dns.WithHopLimit(cfg.HopLimit))
	if err != nil {
		return fmt.Errorf("creating socket: %w", err)
	}

	limiter := security.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Cooldown, maxTrackedSources)

	cx := dns.NewSystemContext()

	handles := make(map[string]dns.QueryHandle, len(names))
	for _, name := range names {
		var h dns.QueryHandle
		if aaaa {
			h, err = sock.StartQueryAAAA(cx, name)
		} else {
			h, err = sock.StartQuery(cx, name)
		}
		if err != nil {
			return fmt.Errorf("starting query for %s: %w", name, err)
		}
		handles[name] = h
		log.WithField("name", name).Debug("query started")
	}

	emit := func(dst net.IP, srcPort uint16, payload []byte) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return udp.Send(ctx, payload, &net.UDPAddr{IP: dst, Port: wire.Port})
	}

	return drive(out, log, sock, cx, udp, limiter, emit, handles)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quartzstack/microdns/dns"
	"github.com/quartzstack/microdns/internal/transport"
)

// overallTimeout bounds the entire resolve run, independent of any single
// query's own resolver-failover timeout, so a caller never hangs forever on
// a socket that has gone quiet.
const overallTimeout = 30 * time.Second

// drive runs sock's Dispatch/Process/PollAt cycle against udp until every
// handle has reached a terminal state or overallTimeout elapses, printing
// each result to out as it resolves.
func drive(
	out io.Writer,
	log *logrus.Logger,
	sock *dns.Socket,
	cx dns.Context,
	udp *transport.UDPTransport,
	limiter interface{ Allow(string) bool },
	emit dns.Emitter,
	handles map[string]dns.QueryHandle,
) error {
	deadline := time.Now().Add(overallTimeout)
	pending := make(map[string]dns.QueryHandle, len(handles))
	for name, h := range handles {
		pending[name] = h
	}

	for len(pending) > 0 && time.Now().Before(deadline) {
		for {
			if err := sock.Dispatch(cx, emit); err != nil {
				break // ExhaustedError: nothing left to send right now
			}
		}

		poll := sock.PollAt(cx)
		waitFor := 200 * time.Millisecond
		if !poll.IsIngress() {
			if until := time.Until(poll.At()); until > 0 && until < waitFor {
				waitFor = until
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), waitFor)
		payload, srcAddr, err := udp.Receive(ctx)
		cancel()

		if err != nil {
			resolveFinished(log, out, sock, pending)
			continue
		}

		if !limiter.Allow(srcAddr.IP.String()) {
			log.WithField("source", srcAddr.IP.String()).Warn("dropping response: rate limited")
			continue
		}

		if !sock.Accepts(srcAddr.IP, uint16(srcAddr.Port)) {
			continue
		}

		localPort, err := udp.LocalPort()
		if err != nil {
			continue
		}

		if err := sock.Process(cx, localPort, payload); err != nil {
			log.WithError(err).Debug("dropping malformed response")
		}

		resolveFinished(log, out, sock, pending)
	}

	if len(pending) > 0 {
		for name := range pending {
			fmt.Fprintf(out, "%s: timed out waiting for a response\n", name)
		}
		return errors.New("one or more queries timed out")
	}
	return nil
}

// resolveFinished prints and removes from pending any query whose handle
// has reached a terminal (completed or failed) state.
func resolveFinished(log *logrus.Logger, out io.Writer, sock *dns.Socket, pending map[string]dns.QueryHandle) {
	for name, h := range pending {
		addrs, err := sock.GetQueryResult(h)
		switch {
		case err == nil:
			fmt.Fprintf(out, "%s:\n", name)
			for _, addr := range addrs {
				fmt.Fprintf(out, "  %s\n", addr)
			}
			delete(pending, name)
		case isPending(err):
			// still waiting, leave it in pending
		default:
			fmt.Fprintf(out, "%s: %v\n", name, err)
			delete(pending, name)
			log.WithError(err).WithField("name", name).Debug("query failed")
		}
	}
}

func isPending(err error) bool {
	var exhausted *dns.ExhaustedError
	return errors.As(err, &exhausted)
}

package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Optional CUCM discovery over mDNS, resolving a
 *		"_sccp._tcp" service to a host:port a caller can use
 *		instead of a statically configured server (SPEC_FULL.md
 *		§6 "CUCM discovery").
 *
 * Grounded on src/dns_sd.go's browse-for-a-service-type pattern
 * (there: iGate-adjacent service discovery), adapted to
 * github.com/brutella/dnssd's Go API instead of the teacher's cgo
 * Avahi bindings.
 *
 *-----------------------------------------------------------------*/

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
)

const sccpServiceType = "_sccp._tcp"

// DiscoverCUCM browses the local network for a CUCM node advertising
// _sccp._tcp and returns the first answer found before ctx is done. It is
// a pure convenience layer: nothing downstream depends on it, and a
// caller not finding anything should fall back to a configured server.
func DiscoverCUCM(ctx context.Context) (server string, port int, err error) {
	var found = make(chan dnssd.BrowseEntry, 1)

	var addFn = func(e dnssd.BrowseEntry) {
		select {
		case found <- e:
		default:
		}
	}
	var rmvFn = func(dnssd.BrowseEntry) {}

	var browseCtx, cancel = context.WithCancel(ctx)
	defer cancel()

	go func() {
		if browseErr := dnssd.LookupType(browseCtx, sccpServiceType, addFn, rmvFn); browseErr != nil {
			cancel()
		}
	}()

	select {
	case e := <-found:
		if len(e.IPs) == 0 {
			return "", 0, fmt.Errorf("skinny: discovered %s with no address", e.Name)
		}
		return e.IPs[0].String(), e.Port, nil
	case <-browseCtx.Done():
		return "", 0, fmt.Errorf("skinny: no CUCM found advertising %s: %w", sccpServiceType, browseCtx.Err())
	}
}

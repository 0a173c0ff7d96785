/*
Package resilience provides a small circuit breaker.

The panel uses it around calls that need the WAN, such as fetching the
opkg feed list. While the uplink is down those calls would otherwise block
every request for the full command timeout.

# Usage

	feed := resilience.New("opkg-feed", resilience.Settings{
		Threshold: 3,
		Cooldown:  time.Minute,
	})
	err := feed.Call(func() error {
		_, err := runner.Run(ctx, "opkg", "list")
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		// serve what is known locally
	}
*/
package resilience

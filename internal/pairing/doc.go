// Package pairing implements device-code login.
//
// Each installation shows an eight-character device code. The account
// owner assigns panel credentials to that code on the pairing service, and
// the client collects them from device.php:
//
//	c := pairing.NewClient()
//	c.FetchConfig(ctx) // optional; falls back to the default endpoints
//	creds, err := c.CheckDevice(ctx, code)
//
// Register sends credentials typed on the device for manual activation.
// A RejectedError carries the service's own message for display.
package pairing

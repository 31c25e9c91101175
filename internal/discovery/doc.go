// Package discovery advertises and finds polfun remote bridges with
// multicast DNS.
//
// A running bridge registers itself as a "_polfun-remote._tcp" service.
// Its TXT records carry the device code and platform so a companion app can
// tell several boxes on the same network apart:
//
//	stop, err := discovery.Advertise(ctx, "Salon", 8765, map[string]string{
//	    discovery.TXTDeviceCode: "ABCD2345",
//	    discovery.TXTPlatform:   "vega",
//	})
//
// The Scanner browses for those services:
//
//	bridges, err := discovery.NewScanner().Scan(ctx)
//	for _, b := range bridges {
//	    fmt.Println(b.Name, b.URL())
//	}
//
// mDNS needs multicast on the interface and UDP 5353 through the firewall.
package discovery

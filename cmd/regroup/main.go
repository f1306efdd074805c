// Regroup rewrites Clash proxy configurations.
//
// It sorts the proxies of a configuration by region and rate, adds one
// url-test group per region, adds selector groups listing every group and
// prepends a rule list that routes to them. The same conversion is served
// over HTTP and available on the command line.
//
// Usage:
//
//	# Serve the conversion endpoint on :5555
//	regroup run
//
//	# Serve with a configuration file
//	regroup run --config /etc/regroup/config.yaml
//
//	# Convert a local file
//	regroup convert clash.yaml > clash.converted.yaml
//
//	# Print the active rule list
//	regroup rules print
//
//	# Show version information
//	regroup version
package main

func main() {
	Execute()
}

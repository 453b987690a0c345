// Package main provides the entry point for the waveload CLI.
//
// waveload sends waves of concurrent HTTP GET requests at a single target
// until interrupted, and can point a Route 53 CNAME at the target first.
//
// Usage:
//
//	waveload run http://my-lb.example.com
//	waveload dns upsert --name app.example.com --value my-lb.example.com --zone Z123
//	waveload history
//
// See --help for all available options.
package main

func main() {
	Execute()
}

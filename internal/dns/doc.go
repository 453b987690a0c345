// Package dns points a DNS name at a load target by upserting a CNAME
// record in Amazon Route 53.
//
// Credentials come from a named shared-config profile that is loaded for
// the call alone, so the caller's default AWS profile is never touched.
package dns

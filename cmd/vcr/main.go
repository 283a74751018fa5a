// vcr is a small tool for working with cassette files.
//
// Usage:
//
//	# List the exchanges recorded in a cassette
//	vcr inspect testdata/fixtures.yml
//
//	# Redact sensitive data from an existing cassette
//	vcr scrub testdata/fixtures.yml --header Authorization --query api_key
package main

func main() {
	Execute()
}

// Package metrics holds the Prometheus collectors exported by MiniMart binaries.
package metrics

const namespace = "minimart"

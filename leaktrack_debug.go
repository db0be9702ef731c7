//go:build debugtrack

package malloc

const trackingEnabled = true
